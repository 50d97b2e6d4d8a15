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

	"github.com/aretw0/racketbot"
	"github.com/aretw0/racketbot/internal/logging"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/runner"
	"github.com/aretw0/racketbot/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ScriptURI is the resource listing the questionnaire prompts.
const ScriptURI = "racketbot://script"

// SessionView is the structured result of every session tool.
type SessionView struct {
	State    *domain.State `json:"state" jsonschema_description:"The full conversation state"`
	Prompt   string        `json:"prompt,omitempty" jsonschema_description:"The question awaiting an answer, if any"`
	Terminal bool          `json:"terminal" jsonschema_description:"True once the conversation is done or failed"`
}

// Server exposes conversations as MCP tools.
type Server struct {
	engine    *racketbot.Engine
	sessions  *session.Manager
	sanitizer runner.Sanitizer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *racketbot.Engine, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		sanitizer: runner.NewSanitizer(),
		logger:    logger,
		mcpServer: server.NewMCPServer("racketbot-mcp", strings.TrimSpace(racketbot.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// SSEHandler returns the SSE transport mounted at /sse and /message.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	return mux
}

// ServeSSE listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.SSEHandler(baseURL),
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

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a racket questionnaire. Returns the greeting and the first question. An existing session ID is resumed."),
		mcp.WithString("session_id", mcp.Description("Session ID to use (optional, generated when omitted)")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("submit_answer",
		mcp.WithDescription("Answer the current question. After the last answer the recommendation service is called and the cards are returned."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The answer text")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleSubmitAnswer))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get the current state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleGetSession))
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	state, loaded, err := s.sessions.LoadOrStart(ctx, id, func() *domain.State {
		return s.engine.Start(ctx, id)
	})
	if err != nil {
		return SessionView{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Info("MCP session started", "session_id", id, "resumed", loaded)
	return s.view(state), nil
}

func (s *Server) handleSubmitAnswer(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, _ := args["session_id"].(string)
	text, _ := args["text"].(string)
	if id == "" {
		return SessionView{}, errors.New("session_id is required")
	}

	clean, err := s.sanitizer.Clean(text)
	if err != nil {
		s.logger.Warn("MCP SubmitAnswer: input rejected", "err", err, "size", len(text))
		return SessionView{}, fmt.Errorf("input rejected: %w", err)
	}

	state, err := s.sessions.Answer(ctx, s.engine, id, clean, nil)
	if err != nil {
		return SessionView{}, fmt.Errorf("submit failed: %w", err)
	}
	return s.view(state), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	id, _ := args["session_id"].(string)
	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return SessionView{}, fmt.Errorf("load failed: %w", err)
	}
	return s.view(state), nil
}

func (s *Server) view(state *domain.State) SessionView {
	v := SessionView{State: state, Terminal: state.Terminal()}
	script := s.engine.Script()
	if state.Phase == domain.PhaseAsking && state.CurrentIndex < len(script) {
		v.Prompt = script[state.CurrentIndex].Text
	}
	return v
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ScriptURI, "Questionnaire Script",
		mcp.WithResourceDescription("The ordered prompts a session asks"),
		mcp.WithMIMEType("application/json"),
	), s.readScript)
}

func (s *Server) readScript(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.engine.Script())
	if err != nil {
		return nil, fmt.Errorf("failed to encode script: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ScriptURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
