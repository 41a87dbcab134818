// Package imaging moves pixels between files, clients and raster buffers for
// the MCP server.
//
// It owns everything the numerical packages deliberately leave out: decoding
// images from disk (ImageCache), rendering buffers as PNG (EncodeBuffer),
// reducing images to the binary masks a distance transform expects (Binarize,
// EdgeMask), parsing border colours (BorderValue) and keeping buffers alive
// between requests (BufferStore).
//
// # Coordinate System
//
// Image coordinates are 0-based with the origin at the top-left corner:
// X grows rightward and is a buffer column, Y grows downward and is a buffer
// row.
//
// # Thread Safety
//
// ImageCache and BufferStore are safe for concurrent use. The remaining
// functions are stateless.
package imaging
