package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ScriptURI names the script resource.
const ScriptURI = "parley://script"

// Engine defines what the MCP server needs from the responder.
type Engine interface {
	NewSession(id string) *domain.Session
	Greeting() string
	Reply(ctx context.Context, sess *domain.Session, input string) (domain.Reply, error)
	Keywords(input string) []string
	Inspect() *domain.Script
}

// NewSessionArgs are the arguments of the new_session tool.
type NewSessionArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

// NewSessionResult is returned by the new_session tool.
type NewSessionResult struct {
	SessionID string `json:"session_id" jsonschema_description:"ID to pass to respond"`
	Greeting  string `json:"greeting,omitempty" jsonschema_description:"Opening line of the script"`
}

// RespondArgs are the arguments of the respond tool.
type RespondArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// KeywordsArgs are the arguments of the keywords tool.
type KeywordsArgs struct {
	Text string `json:"text"`
}

// KeywordsResult is returned by the keywords tool.
type KeywordsResult struct {
	Keywords []string `json:"keywords" jsonschema_description:"Rule keywords in the order they would be tried"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("new_session",
		mcp.WithDescription("Start (or resume) a conversation and get the script's greeting."),
		mcp.WithString("session_id", mcp.Description("Session ID to use (optional, a UUID is generated when omitted)")),
		mcp.WithOutputSchema[NewSessionResult](),
	), mcp.NewStructuredToolHandler(s.handleNewSession))

	s.mcpServer.AddTool(mcp.NewTool("respond",
		mcp.WithDescription("Send one utterance to a session and get the reply."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by new_session")),
		mcp.WithString("text", mcp.Required(), mcp.Description("What the user says")),
		mcp.WithOutputSchema[domain.Reply](),
	), mcp.NewStructuredToolHandler(s.handleRespond))

	s.mcpServer.AddTool(mcp.NewTool("keywords",
		mcp.WithDescription("List the rule keywords an utterance would trigger, highest priority first."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Utterance to analyse")),
		mcp.WithOutputSchema[KeywordsResult](),
	), mcp.NewStructuredToolHandler(s.handleKeywords))

	s.mcpServer.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("Forget a session and its memory."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID to delete")),
	), s.handleEndSession)

	s.mcpServer.AddTool(mcp.NewTool("inspect_script",
		mcp.WithDescription("Get the full rule table for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := s.scriptJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		return mcp.NewToolResultText(data), nil
	})
}

func (s *Server) handleNewSession(ctx context.Context, request mcp.CallToolRequest, args NewSessionArgs) (NewSessionResult, error) {
	id := s.engine.NewSession(args.SessionID).ID
	sess, err := s.sessions.LoadOrCreate(ctx, id)
	if err != nil {
		return NewSessionResult{}, fmt.Errorf("failed to start session: %w", err)
	}
	return NewSessionResult{SessionID: sess.ID, Greeting: s.engine.Greeting()}, nil
}

func (s *Server) handleRespond(ctx context.Context, request mcp.CallToolRequest, args RespondArgs) (domain.Reply, error) {
	if args.SessionID == "" {
		return domain.Reply{}, errors.New("session_id is required")
	}

	clean, err := runner.SanitizeInput(args.Text)
	if err != nil {
		s.logger.Warn("MCP respond: Input rejected", "err", err, "size", len(args.Text))
		return domain.Reply{}, fmt.Errorf("input rejected: %w", err)
	}

	reply, err := s.sessions.Respond(ctx, s.engine, args.SessionID, clean)
	if err != nil {
		s.logger.Error("MCP respond failed", "session_id", args.SessionID, "err", err)
		return domain.Reply{}, fmt.Errorf("respond failed: %w", err)
	}
	return reply, nil
}

func (s *Server) handleKeywords(ctx context.Context, request mcp.CallToolRequest, args KeywordsArgs) (KeywordsResult, error) {
	kws := s.engine.Keywords(args.Text)
	if kws == nil {
		kws = []string{}
	}
	return KeywordsResult{Keywords: kws}, nil
}

func (s *Server) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText("session " + id + " deleted"), nil
}

func (s *Server) scriptJSON() (string, error) {
	data, err := json.Marshal(s.engine.Inspect())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ScriptURI, "Current Script Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.scriptJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to inspect script: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ScriptURI,
				MIMEType: "application/json",
				Text:     data,
			},
		}, nil
	})
}
