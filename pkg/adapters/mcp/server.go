// Package mcp exposes onboarding guidance to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/concord"
	"github.com/aretw0/concord/internal/logging"
	httpadapter "github.com/aretw0/concord/pkg/adapters/http"
	"github.com/aretw0/concord/pkg/coordinator"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MediatorsURI is the resource listing the mediator styles.
const MediatorsURI = "concord://mediators"

// Server runs one coordinator submit per request_guidance call.
type Server struct {
	client    ports.GuidanceClient
	hooks     []domain.LifecycleHooks
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithHooks observes the submits made on behalf of MCP clients.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = append(s.hooks, h)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(client ports.GuidanceClient, opts ...Option) *Server {
	s := &Server{
		client: client,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("concord-mcp", strings.TrimSpace(concord.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", httpadapter.CORS(sseServer.SSEHandler()))
	mux.Handle("/message", httpadapter.CORS(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Submit onboarding answers to the guidance service and return its advice. Every field is optional."),
	}
	for _, name := range editor.FieldNames("contextual") {
		opts = append(opts, mcp.WithString(name, mcp.Description(fieldDescription(name))))
	}
	opts = append(opts, mcp.WithString("mediatorPreference",
		mcp.Description("Mediator style"),
		mcp.Enum(mediatorIDs()...),
	))
	for _, name := range editor.FieldNames("goals") {
		opts = append(opts, mcp.WithString(name, mcp.Description(fieldDescription(name))))
	}
	s.mcpServer.AddTool(mcp.NewTool("request_guidance", opts...), s.handleRequestGuidance)

	s.mcpServer.AddTool(mcp.NewTool("list_mediator_styles",
		mcp.WithDescription("List the mediator styles that request_guidance accepts."),
	), s.handleListMediatorStyles)
}

func (s *Server) handleListMediatorStyles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(domain.MediatorOptions())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleRequestGuidance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	coord := coordinator.New(s.client,
		coordinator.WithLogger(s.logger),
		coordinator.WithHooks(domain.ChainHooks(s.hooks...)),
	)

	for _, name := range editor.FieldNames("contextual") {
		if err := s.apply(request, name, coord.EditContextual); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	for _, name := range editor.FieldNames("goals") {
		if err := s.apply(request, name, coord.EditGoals); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if m := request.GetString("mediatorPreference", ""); m != "" {
		if err := coord.SelectMediator(domain.MediatorPreference(m)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	state := coord.Submit(ctx)
	if state.Status == domain.StatusError {
		return mcp.NewToolResultError(state.Text()), nil
	}
	return mcp.NewToolResultText(state.Text()), nil
}

func (s *Server) apply(request mcp.CallToolRequest, name string, edit func(field, value string) error) error {
	raw := request.GetString(name, "")
	if raw == "" {
		return nil
	}
	clean, err := editor.SanitizeField(name, raw)
	if err != nil {
		s.logger.Warn("MCP request_guidance: Input rejected", "error", err, "field", name, "size", len(raw))
		return fmt.Errorf("input rejected: %w", err)
	}
	return edit(name, clean)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(MediatorsURI, "Mediator Styles",
		mcp.WithResourceDescription("The closed set of mediator styles"),
		mcp.WithMIMEType("application/json"),
	), s.readMediators)
}

func (s *Server) readMediators(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(domain.MediatorOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to encode mediator styles: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      MediatorsURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mediatorIDs() []string {
	opts := domain.MediatorOptions()
	ids := make([]string, len(opts))
	for i, o := range opts {
		ids[i] = string(o.ID)
	}
	return ids
}

func fieldDescription(name string) string {
	for _, f := range append(
		editor.ContextualEditor{}.Fields(),
		editor.GoalEditor{}.Fields()...,
	) {
		if f.Name == name {
			return f.Label
		}
	}
	return name
}
