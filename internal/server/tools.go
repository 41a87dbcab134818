package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type schema = map[string]interface{}

func prop(typ, description string) schema {
	return schema{"type": typ, "description": description}
}

func propDefault(typ, description string, def interface{}) schema {
	p := prop(typ, description)
	p["default"] = def
	return p
}

func enumProp(description string, def string, values ...string) schema {
	p := propDefault("string", description, def)
	p["enum"] = values
	return p
}

// matrixProp describes a row-major 3x3 matrix.
func matrixProp(description string) schema {
	return schema{
		"type":        "array",
		"description": description,
		"minItems":    3,
		"maxItems":    3,
		"items": schema{
			"type":     "array",
			"items":    schema{"type": "number"},
			"minItems": 3,
			"maxItems": 3,
		},
	}
}

func object(required []string, props schema) schema {
	s := schema{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	pathProp       = prop("string", "Absolute path to the image file")
	outputPathProp = prop("string", "Optional path to also save the result; format follows the extension")
	cameraProp     = matrixProp("Camera intrinsic matrix [[fx,0,cx],[0,fy,cy],[0,0,1]]")
	distProp       = schema{
		"type":        "array",
		"items":       schema{"type": "number"},
		"description": "Distortion coefficients (k1,k2,p1,p2[,k3[,k4,k5,k6]]); 0, 4, 5 or 8 values. Omit for none",
	}
	mapTypeValues = []string{"float32", "float32c2", "fixed16"}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, channel layout and format.",
			InputSchema: object([]string{"path"}, schema{"path": pathProp}),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, also reported as rows and cols.",
			InputSchema: object([]string{"path"}, schema{"path": pathProp}),
		},

		// Lens Correction
		{
			Name: "image_undistort",
			Description: "Remove lens distortion from an image given its camera matrix and distortion coefficients. " +
				"Returns the corrected image as base64-encoded PNG of the same size.",
			InputSchema: object([]string{"path", "camera_matrix"}, schema{
				"path":          pathProp,
				"camera_matrix": cameraProp,
				"dist_coeffs":   distProp,
				"output_path":   outputPathProp,
			}),
		},
		{
			Name: "image_init_undistort_rectify_map",
			Description: "Compute the coordinate maps that undistort and rectify images of the given size. " +
				"The maps are kept on the server; pass the returned handles to image_remap or image_convert_maps.",
			InputSchema: object([]string{"camera_matrix", "size"}, schema{
				"camera_matrix":     cameraProp,
				"dist_coeffs":       distProp,
				"rotation":          matrixProp("Optional rectification rotation. Default identity"),
				"new_camera_matrix": matrixProp("Optional camera matrix of the output. Default camera_matrix"),
				"size": schema{
					"type":        "array",
					"items":       schema{"type": "integer"},
					"minItems":    2,
					"maxItems":    2,
					"description": "Output size as [rows, cols]",
				},
				"map_type": enumProp("Storage form of the maps", "float32", mapTypeValues...),
			}),
		},
		{
			Name:        "image_undistort_points",
			Description: "Map distorted pixel coordinates to their undistorted pixel positions.",
			InputSchema: object([]string{"points", "camera_matrix"}, schema{
				"points": schema{
					"type":        "array",
					"description": "Pixel coordinates as [[x,y], ...]",
					"items": schema{
						"type":     "array",
						"items":    schema{"type": "number"},
						"minItems": 2,
						"maxItems": 2,
					},
				},
				"camera_matrix": cameraProp,
				"dist_coeffs":   distProp,
			}),
		},

		// Remapping
		{
			Name: "image_remap",
			Description: "Resample an image through stored coordinate maps: each output pixel (x,y) takes the source " +
				"value at map(x,y). Returns the result as base64-encoded PNG.",
			InputSchema: object([]string{"path", "map1"}, schema{
				"path":          pathProp,
				"map1":          prop("string", "Handle of the first map buffer"),
				"map2":          prop("string", "Handle of the second map buffer, when the map type has one"),
				"interpolation": enumProp("Sampling kernel", "linear", "nearest", "linear"),
				"border_mode":   enumProp("Handling of coordinates outside the source", "constant", "constant", "replicate", "reflect", "skip", "transparent"),
				"border_value": schema{
					"type":        "array",
					"items":       schema{"type": "number"},
					"description": "Per-channel fill for border_mode constant. Default 0",
				},
				"border_color": prop("string", "Fill color as hex (e.g. \"#ff8800\"); overrides border_value"),
				"output_path":  outputPathProp,
			}),
		},
		{
			Name:        "image_convert_maps",
			Description: "Convert stored coordinate maps to another storage form and return the new handles.",
			InputSchema: object([]string{"map1", "map_type"}, schema{
				"map1":     prop("string", "Handle of the first map buffer"),
				"map2":     prop("string", "Handle of the second map buffer, when the map type has one"),
				"map_type": enumProp("Target storage form", "float32", mapTypeValues...),
			}),
		},

		// Morphology
		{
			Name: "image_distance_transform",
			Description: "Compute, for every pixel, the distance to the nearest feature pixel. Features are pixels darker " +
				"than threshold, or Canny edges when source is \"edges\". Returns a normalized PNG plus min/max statistics.",
			InputSchema: object([]string{"path"}, schema{
				"path":           pathProp,
				"distance_type":  enumProp("Distance metric", "L2", "L1", "L2", "C"),
				"mask_size":      enumProp("3 for the 3x3 chamfer approximation, precise for exact Euclidean", "3", "3", "precise"),
				"source":         enumProp("How features are found", "threshold", "threshold", "edges"),
				"threshold":      propDefault("integer", "Luminance below which a pixel is a feature (0-255)", 128),
				"low_threshold":  propDefault("integer", "Canny low threshold for source edges", 50),
				"high_threshold": propDefault("integer", "Canny high threshold for source edges", 150),
				"output_path":    outputPathProp,
				"keep":           propDefault("boolean", "Keep the float distance buffer on the server and return its handle", false),
			}),
		},
		{
			Name:        "image_structuring_element",
			Description: "Build a rect, cross or ellipse structuring element and return it as a 0/1 matrix.",
			InputSchema: object([]string{"shape", "rows", "cols"}, schema{
				"shape":    enumProp("Element shape", "rect", "rect", "cross", "ellipse"),
				"rows":     prop("integer", "Element height"),
				"cols":     prop("integer", "Element width"),
				"anchor_x": propDefault("integer", "Anchor column; -1 or omitted centers it", -1),
				"anchor_y": propDefault("integer", "Anchor row; -1 or omitted centers it", -1),
			}),
		},

		// Text
		{
			Name:        "text_size",
			Description: "Measure the bounding box of a text string drawn in a Hershey font.",
			InputSchema: object([]string{"text"}, schema{
				"text":      prop("string", "Text to measure"),
				"font":      propDefault("string", "Font family, e.g. HERSHEY_SIMPLEX. Unknown names fall back to it", "HERSHEY_SIMPLEX"),
				"scale":     propDefault("number", "Font scale factor", 1.0),
				"thickness": propDefault("integer", "Stroke thickness in pixels", 1),
			}),
		},

		// Buffers
		{
			Name:        "buffer_release",
			Description: "Release buffers kept on the server by earlier calls.",
			InputSchema: object(nil, schema{
				"handles": schema{
					"type":        "array",
					"items":       schema{"type": "string"},
					"description": "Handles to release",
				},
				"all": propDefault("boolean", "Release every stored buffer", false),
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
