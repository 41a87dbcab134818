// Package remap resamples a raster at arbitrary, possibly fractional source
// coordinates supplied by a coordinate map.
//
// A CoordinateMap has one of three storage forms (see MapType): two float32
// planes, one interleaved float32 plane, or a fixed-point form with an int16
// integer base plus a 5-bit-per-axis sub-pixel index. All forms decode to the
// same coordinates up to the fixed-point quantization of 1/32 pixel, so
// remapping through any of them gives equivalent results.
//
// # Sampling
//
// Nearest rounds each coordinate to the closest pixel (half to even). Linear
// computes the bilinear blend of the four surrounding pixels, weighting each
// by the product of the fractional offsets along both axes.
//
// # Borders
//
// Coordinates outside the source are resolved by a Border policy:
//   - Constant: fill with a per-channel value (default 0)
//   - Replicate: clamp to the nearest edge pixel
//   - Reflect: mirror across the edge (the edge pixel is repeated)
//   - Skip: leave the destination pixel at zero
//
// Under Linear, Constant/Replicate/Reflect are applied to each of the four
// neighbors individually, so pixels straddling the edge blend toward the
// border value.
package remap
