// Package textmetrics measures strings set in the Hershey stroke font
// families without rasterizing them.
//
// Each family is described by a table of per-glyph advances plus a cap height
// and descent in font units. A string's width is the sum of its advances;
// there is no kerning.
package textmetrics
