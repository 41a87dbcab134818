package textmetrics

// simplexAdvances are the horizontal advances of the simplex stroke font in
// font units. Other families scale this table by their width factor.
var simplexAdvances = map[rune]int{
	' ': 16, '!': 10, '"': 16, '#': 21, '$': 20, '%': 24, '&': 26, '\'': 10,
	'(': 14, ')': 14, '*': 16, '+': 26, ',': 10, '-': 26, '.': 10, '/': 22,

	'0': 20, '1': 20, '2': 20, '3': 20, '4': 20,
	'5': 20, '6': 20, '7': 20, '8': 20, '9': 20,

	':': 10, ';': 10, '<': 24, '=': 26, '>': 24, '?': 18, '@': 27,

	'A': 18, 'B': 21, 'C': 21, 'D': 21, 'E': 19, 'F': 18, 'G': 21, 'H': 22,
	'I': 8, 'J': 16, 'K': 21, 'L': 17, 'M': 24, 'N': 22, 'O': 22, 'P': 21,
	'Q': 22, 'R': 21, 'S': 20, 'T': 16, 'U': 22, 'V': 18, 'W': 24, 'X': 20,
	'Y': 18, 'Z': 20,

	'[': 14, '\\': 14, ']': 14, '^': 16, '_': 16, '`': 10,

	'a': 19, 'b': 19, 'c': 18, 'd': 19, 'e': 18, 'f': 12, 'g': 19, 'h': 19,
	'i': 8, 'j': 10, 'k': 17, 'l': 8, 'm': 30, 'n': 19, 'o': 19, 'p': 19,
	'q': 19, 'r': 13, 's': 17, 't': 12, 'u': 19, 'v': 16, 'w': 22, 'x': 17,
	'y': 16, 'z': 17,

	'{': 14, '|': 8, '}': 14, '~': 24,
}
