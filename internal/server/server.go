// MCP server assembly and HTTP lifecycle management.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/haobosang/datax-mcp-server/internal/api"
	"github.com/haobosang/datax-mcp-server/internal/domain/tool"
	"github.com/haobosang/datax-mcp-server/internal/infra/eventbus"
	"github.com/haobosang/datax-mcp-server/internal/version"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr         string
	JWTSecret    []byte
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server binds the tool registry to an MCP server and owns the transport
// lifecycles (stdio, streamable HTTP, SSE).
type Server struct {
	config   Config
	registry *tool.Registry
	mcp      *mcp.Server
	http     *http.Server
	logger   *log.Logger
}

// New assembles the MCP server from the registry's enabled tool definitions.
// logger receives transport diagnostics and may be nil.
func New(config Config, registry *tool.Registry, logger *log.Logger) (*Server, error) {
	s := &Server{
		config:   config,
		registry: registry,
		logger:   logger,
	}

	impl := &mcp.Implementation{Name: "datax", Version: version.Version}
	s.mcp = mcp.NewServer(impl, nil)

	for _, def := range registry.Definitions() {
		schema := new(jsonschema.Schema)
		if err := json.Unmarshal(def.InputSchema, schema); err != nil {
			return nil, fmt.Errorf("tool %s: decode input schema: %w", def.Name, err)
		}
		s.mcp.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
		}, s.toolHandler(def.Name))
	}

	router := api.NewRouter(api.RouterDeps{
		JWTSecret:  config.JWTSecret,
		Streamable: mcp.NewStreamableHTTPHandler(s.mcpForRequest, nil),
		SSE:        mcp.NewSSEHandler(s.mcpForRequest, nil),
	})
	s.http = &http.Server{
		Addr:         config.Addr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s, nil
}

func (s *Server) mcpForRequest(*http.Request) *mcp.Server { return s.mcp }

// toolHandler adapts one registry dispatch into an MCP tool handler.
func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logCaller(ctx, name)
		out, err := s.registry.Dispatch(ctx, name, req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: renderResult(out)}},
		}, nil
	}
}

// renderResult turns an executor's raw JSON result into the text content
// body. A bare JSON string (the weather report) is rendered verbatim;
// everything else passes through as compact JSON.
func renderResult(out json.RawMessage) string {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}

// RunStdio serves the MCP protocol over stdin/stdout and blocks until the
// client disconnects or ctx is canceled.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Start starts the HTTP server and blocks until an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.logf("starting HTTP server on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logf("shutting down server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logf("server shutdown complete")
	return nil
}

// Handler exposes the configured router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// logCaller records the authenticated subject behind a tool call. On stdio,
// or on HTTP without the bearer guard, no subject exists and nothing is
// logged.
func (s *Server) logCaller(ctx context.Context, name string) {
	subject, err := api.GetSubject(ctx)
	if err != nil {
		return
	}
	s.logf("tool=%s subject=%s", name, subject)
}

func (s *Server) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// LogInvocations consumes tool-invocation events from bus and writes one
// line per call to logger until ctx is canceled. Run it on its own goroutine.
func LogInvocations(ctx context.Context, bus eventbus.EventBus, logger *log.Logger) {
	if bus == nil || logger == nil {
		return
	}
	ch := bus.Subscribe(eventbus.TopicToolInvoked)
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			inv, ok := evt.Payload.(eventbus.Invocation)
			if !ok {
				continue
			}
			if inv.Outcome == "error" {
				logger.Printf("tool=%s id=%s duration_ms=%d outcome=%s detail=%q",
					inv.Tool, inv.ID, inv.DurationMS, inv.Outcome, inv.Detail)
				continue
			}
			logger.Printf("tool=%s id=%s duration_ms=%d outcome=%s",
				inv.Tool, inv.ID, inv.DurationMS, inv.Outcome)
		}
	}
}
