// Package httpserver serves the skill tools over HTTP: the MCP SSE transport
// for MCP clients and a plain JSON endpoint for scripts that just want to
// call a tool.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
	skillserver "github.com/jingkaihe/skills-mcp/pkg/mcp/server"
	"github.com/jingkaihe/skills-mcp/pkg/version"
)

const (
	sseEndpoint     = "/sse"
	messageEndpoint = "/message"
	shutdownTimeout = 5 * time.Second
)

// Config holds the listen address of the HTTP transport
type Config struct {
	Host string
	Port int
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port must be between 0 and 65535, got %d", c.Port)
	}
	return nil
}

// Address returns host:port
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// Server is the HTTP transport for the skill tools
type Server struct {
	router   *mux.Router
	tools    *skillserver.Server
	sse      *mcpserver.SSEServer
	config   *Config
	server   *http.Server
	listener net.Listener
}

// RPCRequest is the body of POST /rpc
type RPCRequest struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// RPCContent is one content item of an RPC reply
type RPCContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// RPCResponse is the reply of POST /rpc
type RPCResponse struct {
	Content []RPCContent `json:"content"`
	IsError bool         `json:"isError"`
}

// HealthResponse is the reply of GET /healthz
type HealthResponse struct {
	Status  string   `json:"status"`
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Tools   []string `json:"tools"`
}

// NewServer creates the HTTP transport for the given tool server
func NewServer(tools *skillserver.Server, config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router: mux.NewRouter(),
		tools:  tools,
		config: config,
		sse: mcpserver.NewSSEServer(
			tools.MCPServer(),
			mcpserver.WithBaseURL("http://"+config.Address()),
			mcpserver.WithSSEEndpoint(sseEndpoint),
			mcpserver.WithMessageEndpoint(messageEndpoint),
		),
	}
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/rpc", s.handleRPC).Methods(http.MethodPost)
	s.router.Handle(sseEndpoint, s.sse.SSEHandler()).Methods(http.MethodGet)
	s.router.Handle(messageEndpoint, s.sse.MessageHandler()).Methods(http.MethodPost)

	s.router.Use(loggingMiddleware)
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Name:    version.Name,
		Version: version.Version,
		Tools:   s.tools.ToolNames(),
	})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.G(ctx).WithError(err).Warn("failed to decode RPC request")
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	logger.G(ctx).WithField("tool", req.Tool).Debug("handling RPC call")

	result, err := s.tools.CallTool(ctx, req.Tool, req.Arguments)
	if err != nil {
		if errors.Is(err, skillserver.ErrToolNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.G(ctx).WithError(err).Error("RPC call failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusOK, toRPCResponse(result))
}

func toRPCResponse(result *mcp.CallToolResult) RPCResponse {
	resp := RPCResponse{
		Content: make([]RPCContent, 0, len(result.Content)),
		IsError: result.IsError,
	}
	for _, c := range result.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			resp.Content = append(resp.Content, RPCContent{Type: "text", Text: text.Text})
		}
	}
	return resp
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.G(ctx).WithError(err).Error("failed to encode response")
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.config.Address())
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.G(ctx).WithField("address", listener.Addr().String()).Info("serving MCP over HTTP")

	serveErr := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "HTTP server failed")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Addr returns the bound listen address once Start is running
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting requests and waits for in-flight ones. Open SSE
// streams are closed once ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	logger.G(ctx).Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		s.server.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return errors.Wrap(err, "failed to shutdown HTTP server")
	}
	return nil
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
