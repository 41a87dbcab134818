package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	s := New()
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil || s.store == nil {
		t.Fatal("New() did not initialize cache and store")
	}
	if s.version != "dev" {
		t.Errorf("default version: got %q, want dev", s.version)
	}
}

func TestNew_Options(t *testing.T) {
	logger := zap.NewNop().Sugar()
	s := New(WithLogger(logger), WithWorkers(3), WithVersion("1.2.3"))
	if s.logger != logger || s.workers != 3 || s.version != "1.2.3" {
		t.Errorf("options not applied: %+v", s)
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := New(WithVersion("0.9.0"))
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != ServerName || info["version"] != "0.9.0" {
		t.Errorf("serverInfo: got %v", info)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := New()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("ping failed: %+v", resp)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_InitializedNotification(t *testing.T) {
	s := New()
	if resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Errorf("notification should not get a response, got %+v", resp)
	}
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	s := New()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error.Code: got %d, want -32601", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "resources/list") {
		t.Errorf("message should name the method: %s", resp.Error.Message)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := New()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools: got %T", result["tools"])
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("got %d tools, want %d", len(tools), len(GetToolDefinitions()))
	}
}

// decodeLines splits newline-delimited JSON responses.
func decodeLines(t *testing.T, out string) []MCPResponse {
	t.Helper()
	var resps []MCPResponse
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var r MCPResponse
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("bad response line %q: %v", line, err)
		}
		resps = append(resps, r)
	}
	return resps
}

func TestRun(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	}, "\n")
	var out bytes.Buffer

	core, logs := observer.New(zap.InfoLevel)
	s := New(WithIO(strings.NewReader(in), &out), WithLogger(zap.New(core).Sugar()))
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	resps := decodeLines(t, out.String())
	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3:\n%s", len(resps), out.String())
	}
	if resps[0].Error != nil {
		t.Errorf("initialize failed: %+v", resps[0].Error)
	}
	if resps[1].Error == nil || resps[1].Error.Code != -32700 {
		t.Errorf("parse error: got %+v", resps[1].Error)
	}
	if resps[2].ID != float64(2) || resps[2].Error != nil {
		t.Errorf("ping: got %+v", resps[2])
	}

	if logs.FilterMessage("server started").Len() != 1 {
		t.Error("missing start log entry")
	}
	if logs.FilterMessage("failed to parse request").Len() != 1 {
		t.Error("missing parse failure log entry")
	}
}
