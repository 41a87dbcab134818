package server

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/imgproc-mcp/internal/imaging"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// ServerName is reported to clients during initialize.
const ServerName = "imgproc-mcp"

// Server handles MCP protocol communication
type Server struct {
	cache   *imaging.ImageCache
	store   *imaging.BufferStore
	logger  *zap.SugaredLogger
	workers int
	version string

	in  io.Reader
	out io.Writer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.logger = l }
}

// WithWorkers bounds the goroutines a single tool call may use. Zero or less
// selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorData is the data member of a tool failure. Kind is one of the
// imgerr kinds, e.g. "DimensionMismatch".
type ErrorData struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:   imaging.NewImageCache(),
		store:   imaging.NewBufferStore(),
		logger:  zap.NewNop().Sugar(),
		version: "dev",
		in:      os.Stdin,
		out:     os.Stdout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// exec returns the execution options of a tool call.
func (s *Server) exec() raster.ExecOption {
	return raster.WithWorkers(s.workers)
}

// Run reads newline-delimited requests until the input closes.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	// Camera matrices and point lists are small, but leave room for long paths.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.out)
	s.logger.Infow("server started", "version", s.version, "workers", raster.Workers(s.exec()))

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warnw("failed to parse request", "error", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.logger.Errorw("failed to encode response", "error", err)
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Errorw("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scanner error")
	}
	s.logger.Infow("input closed, shutting down", "stored_buffers", len(s.store.Handles()))
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debugw("request", "method", req.Method, "id", req.ID)
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, -32601, "Method not found: "+req.Method, nil)
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
