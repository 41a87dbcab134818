package server

import (
	"encoding/json"
	"strings"
	"testing"
)

var expectedTools = []string{
	"image_load",
	"image_dimensions",
	"image_undistort",
	"image_init_undistort_rectify_map",
	"image_undistort_points",
	"image_remap",
	"image_convert_maps",
	"image_distance_transform",
	"image_structuring_element",
	"text_size",
	"buffer_release",
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

// Every defined tool must be dispatched; an unknown name fails with a
// message naming it, anything else reached a handler.
func TestToolDefinitions_Dispatched(t *testing.T) {
	s := New()
	for _, tool := range GetToolDefinitions() {
		_, err := s.executeTool(tool.Name, json.RawMessage(`{}`))
		if err != nil && strings.Contains(err.Error(), "unknown tool") {
			t.Errorf("tool %s has no handler", tool.Name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(schema)
			if !ok {
				t.Fatal("InputSchema missing 'properties'")
			}

			// Required fields must be declared properties.
			if req, ok := tool.InputSchema["required"]; ok {
				for _, r := range req.([]string) {
					if _, ok := props[r]; !ok {
						t.Errorf("required field %s is not a property", r)
					}
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := []string{
		"image_load",
		"image_dimensions",
		"image_undistort",
		"image_remap",
		"image_distance_transform",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range toolsRequiringPath {
		t.Run(name, func(t *testing.T) {
			tool, ok := toolMap[name]
			if !ok {
				t.Fatalf("tool %s not found", name)
			}
			requiredList, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			hasPath := false
			for _, r := range requiredList {
				if r == "path" {
					hasPath = true
				}
			}
			if !hasPath {
				t.Error("'path' should be required")
			}
		})
	}
}

func TestToolDefinitions_Serializable(t *testing.T) {
	data, err := json.Marshal(GetToolDefinitions())
	if err != nil {
		t.Fatalf("tool definitions do not marshal: %v", err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("tool definitions do not unmarshal: %v", err)
	}
	for _, d := range decoded {
		if _, ok := d["inputSchema"]; !ok {
			t.Errorf("%v: missing inputSchema key", d["name"])
		}
	}
}
