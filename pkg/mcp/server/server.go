// Package server exposes the skill catalog as MCP tools. The tools are
// declared in a static table; each entry carries its input schema, which is
// both advertised to clients and enforced on every call.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jingkaihe/skills-mcp/pkg/catalog"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/version"
)

// Server serves the catalog tools over MCP
type Server struct {
	svc         *catalog.Service
	mcp         *mcpserver.MCPServer
	tools       map[string]*registeredTool
	names       []string
	keywordTool bool
}

type registeredTool struct {
	toolDefinition
	validator *argumentValidator
}

// Option is a function that configures a Server
type Option func(*Server)

// WithKeywordTool registers get_skill_by_keyword in addition to the three
// catalog tools
func WithKeywordTool(enabled bool) Option {
	return func(s *Server) {
		s.keywordTool = enabled
	}
}

// New builds an MCP server whose tools answer from svc
func New(svc *catalog.Service, opts ...Option) (*Server, error) {
	s := &Server{
		svc:   svc,
		tools: make(map[string]*registeredTool),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcpserver.NewMCPServer(
		version.Name,
		version.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	for _, def := range enabledTools(s.keywordTool) {
		schemaJSON, err := json.Marshal(def.schema)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal schema of %s", def.name)
		}
		validator, err := newArgumentValidator(def.name, schemaJSON)
		if err != nil {
			return nil, err
		}

		tool := &registeredTool{toolDefinition: def, validator: validator}
		s.tools[def.name] = tool
		s.names = append(s.names, def.name)

		s.mcp.AddTool(mcp.NewToolWithRawSchema(def.name, def.description, schemaJSON), s.handler(tool))
	}

	return s, nil
}

// MCPServer returns the underlying protocol server
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// ToolNames returns the registered tool names in table order
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.names...)
}

func (s *Server) handler(tool *registeredTool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.call(ctx, tool, request.Params.Arguments), nil
	}
}

// ErrToolNotFound is returned by CallTool for names that are not registered
var ErrToolNotFound = errors.New("tool not found")

// CallTool invokes a registered tool directly, bypassing the MCP session layer
func (s *Server) CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	tool, ok := s.tools[name]
	if !ok {
		return nil, errors.Wrapf(ErrToolNotFound, "unknown tool %q", name)
	}
	return s.call(ctx, tool, arguments), nil
}

// call validates the arguments and runs the tool. Failures become error
// results so that the client always receives a reply.
func (s *Server) call(ctx context.Context, tool *registeredTool, arguments any) *mcp.CallToolResult {
	ctx = logger.WithFields(ctx, logrus.Fields{
		"tool":       tool.name,
		"request_id": uuid.NewString(),
	})
	entry := logger.G(ctx)

	args, err := marshalArguments(arguments)
	if err == nil {
		err = tool.validator.Validate(args)
	}
	if err != nil {
		entry.WithError(err).Warn("rejected tool call")
		return errorResult(err)
	}

	start := time.Now()
	text, err := tool.handler(ctx, s.svc, args)
	if err != nil {
		entry.WithError(err).Error("tool call failed")
		return errorResult(err)
	}

	entry.WithField("duration", time.Since(start)).Debug("tool call completed")
	return mcp.NewToolResultText(text)
}

func marshalArguments(arguments any) (json.RawMessage, error) {
	if arguments == nil {
		return json.RawMessage("{}"), nil
	}
	if m, ok := arguments.(map[string]any); ok && m == nil {
		return json.RawMessage("{}"), nil
	}

	raw, err := json.Marshal(arguments)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode arguments")
	}
	return raw, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}

// ServeStdio runs the MCP session over the given streams until ctx is
// cancelled or stdin is closed
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(logger.G(ctx).WriterLevel(logrus.ErrorLevel), "", 0))

	logger.G(ctx).WithField("tools", s.names).Info("serving MCP over stdio")
	if err := stdio.Listen(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "stdio transport failed")
	}
	return nil
}
