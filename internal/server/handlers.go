package server

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/imgproc-mcp/internal/imaging"
	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_undistort").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data carries the error kind (see ErrorData).
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", ErrorData{
			Kind:   imgerr.InvalidArgument.String(),
			Detail: err.Error(),
		})
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		kind := imgerr.KindOf(err)
		s.logger.Warnw("tool failed", "tool", params.Name, "kind", kind.String(), "error", err,
			"duration", time.Since(start))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", ErrorData{
			Kind:   kind.String(),
			Detail: err.Error(),
		})
	}
	s.logger.Debugw("tool done", "tool", params.Name, "duration", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Decodes its arguments, applying defaults for optional ones
//  2. Loads images from the cache and buffers from the store as needed
//  3. Calls into lens, remap, morphology or textmetrics
//  4. Encodes image outputs as PNG, stores reusable buffers, returns a result
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Lens Correction
	case "image_undistort":
		return s.handleImageUndistort(args)
	case "image_init_undistort_rectify_map":
		return s.handleInitUndistortRectifyMap(args)
	case "image_undistort_points":
		return s.handleUndistortPoints(args)

	// Remapping
	case "image_remap":
		return s.handleImageRemap(args)
	case "image_convert_maps":
		return s.handleConvertMaps(args)

	// Morphology
	case "image_distance_transform":
		return s.handleDistanceTransform(args)
	case "image_structuring_element":
		return s.handleStructuringElement(args)

	// Text
	case "text_size":
		return s.handleTextSize(args)

	// Buffers
	case "buffer_release":
		return s.handleBufferRelease(args)

	default:
		return nil, imgerr.New(imgerr.InvalidArgument, "server", "unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Malformed JSON is an InvalidArgument.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return imgerr.Wrap(imgerr.InvalidArgument, "server", errors.Wrap(err, "invalid arguments"))
	}
	return nil
}

func requirePath(path string) error {
	if path == "" {
		return imgerr.New(imgerr.InvalidArgument, "server", "path is required")
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Buffer Handlers ===

type bufferReleaseArgs struct {
	Handles []string `json:"handles"`
	All     bool     `json:"all"`
}

type bufferReleaseResult struct {
	Released  int      `json:"released"`
	Remaining []string `json:"remaining"`
}

func (s *Server) handleBufferRelease(args json.RawMessage) (interface{}, error) {
	var a bufferReleaseArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	var n int
	if a.All {
		n = s.store.Clear()
	} else {
		n = s.store.Release(a.Handles...)
	}
	s.logger.Debugw("released buffers", "count", n)
	return &bufferReleaseResult{Released: n, Remaining: s.store.Handles()}, nil
}
