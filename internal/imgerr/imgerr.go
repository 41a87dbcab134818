// Package imgerr defines the typed failures returned by the image-processing
// packages.
//
// Every failure carries a Kind so callers (and the MCP boundary) can react to
// the category of the problem without parsing messages:
//
//	_, err := raster.New(0, 10, 1, raster.Uint8)
//	if errors.Is(err, imgerr.ErrInvalidDimensions) {
//	    // ...
//	}
package imgerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind int

const (
	// Unknown is the kind of errors that did not originate in this module.
	Unknown Kind = iota
	// InvalidArgument reports a wrong type, shape or a missing required field.
	InvalidArgument
	// InvalidDimensions reports a non-positive size.
	InvalidDimensions
	// DimensionMismatch reports a map/image shape mismatch.
	DimensionMismatch
	// UnsupportedMode reports an unrecognized enumeration value.
	UnsupportedMode
	// ComputationError reports numerically degenerate input.
	ComputationError
	// OutOfRange reports a bounds-checked access outside a buffer.
	OutOfRange
)

var kindNames = map[Kind]string{
	Unknown:           "Unknown",
	InvalidArgument:   "InvalidArgument",
	InvalidDimensions: "InvalidDimensions",
	DimensionMismatch: "DimensionMismatch",
	UnsupportedMode:   "UnsupportedMode",
	ComputationError:  "ComputationError",
	OutOfRange:        "OutOfRange",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a failure of a single operation.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "remap".
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument   = &Error{Kind: InvalidArgument}
	ErrInvalidDimensions = &Error{Kind: InvalidDimensions}
	ErrDimensionMismatch = &Error{Kind: DimensionMismatch}
	ErrUnsupportedMode   = &Error{Kind: UnsupportedMode}
	ErrComputation       = &Error{Kind: ComputationError}
	ErrOutOfRange        = &Error{Kind: OutOfRange}
)

// New returns an error of the given kind with a formatted message.
func New(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// Wrap attaches a kind and operation to an existing error. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

// KindOf returns the first known kind in err's chain, or Unknown.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return Unknown
		}
		if e.Kind != Unknown {
			return e.Kind
		}
		err = e.Err
	}
	return Unknown
}
