// Package server implements the MCP (Model Context Protocol) server for the
// geometric image processing tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Lens Correction:
//   - image_undistort: Remove lens distortion from an image
//   - image_init_undistort_rectify_map: Build undistort/rectify maps
//   - image_undistort_points: Undistort pixel coordinates
//
// Remapping:
//   - image_remap: Resample an image through coordinate maps
//   - image_convert_maps: Change the storage form of maps
//
// Morphology:
//   - image_distance_transform: Distance to the nearest feature pixel
//   - image_structuring_element: Rect, cross or ellipse kernel
//
// Text:
//   - text_size: Bounding box of a Hershey-font string
//
// Buffers:
//   - buffer_release: Drop buffers kept between calls
//
// # Errors
//
// A failed tool call is a JSON-RPC error with code -32000 whose data is an
// ErrorData carrying the failure kind (InvalidArgument, DimensionMismatch,
// UnsupportedMode, ...).
//
// # State
//
// Decoded images are cached by path for the lifetime of the process. Map
// buffers and kept distance buffers live in a handle store until released
// with buffer_release.
package server
