// Package raster provides the numeric grid shared by every image operation.
//
// A Buffer holds rows x cols pixels of one or more channels with an explicit
// element type (integer widths or floating point). Reads and writes through At
// and Set are bounds-checked and fail with imgerr.OutOfRange.
//
// # Ownership
//
// Operations never mutate their inputs. Each result is either a freshly
// allocated buffer owned by the caller or an immutable View sharing the
// caller's storage. Two live results never alias the same mutable storage.
//
// # Element Conversion
//
// Values written to integer buffers are rounded half to even and clamped to
// the type's range; values written to Float32 buffers are rounded to single
// precision.
//
// # Parallelism
//
// ParallelRows partitions a row range into contiguous bands processed by a
// bounded number of goroutines. Workers write disjoint output regions and
// read shared inputs only, so no locking is needed beyond the final barrier.
package raster
