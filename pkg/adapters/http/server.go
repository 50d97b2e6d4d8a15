package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/racketbot"
	"github.com/aretw0/racketbot/internal/logging"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/runner"
	"github.com/aretw0/racketbot/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// Server exposes conversations over HTTP.
type Server struct {
	Engine    *racketbot.Engine
	Sessions  *session.Manager
	Streams   *StreamManager
	Sanitizer runner.Sanitizer

	logger  *slog.Logger
	metrics http.Handler
	newID   func() string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithSanitizer overrides the answer sanitizer.
func WithSanitizer(san runner.Sanitizer) Option {
	return func(s *Server) {
		s.Sanitizer = san
	}
}

// WithIDGenerator replaces the random session ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Server) {
		s.newID = gen
	}
}

// NewHandler builds the router. The embedded OpenAPI document is validated first
// and then used to validate every request it describes.
func NewHandler(engine *racketbot.Engine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	_, h, err := newServer(engine, sessions, opts...)
	return h, err
}

func newServer(engine *racketbot.Engine, sessions *session.Manager, opts ...Option) (*Server, http.Handler, error) {
	s := &Server{
		Engine:    engine,
		Sessions:  sessions,
		Sanitizer: runner.NewSanitizer(),
		logger:    logging.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, nil, err
	}
	validator, err := requestValidator(doc)
	if err != nil {
		return nil, nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validator)
		r.Get("/health", s.GetHealth)
		r.Get("/script", s.GetScript)
		r.Get("/sessions", s.ListSessions)
		r.Post("/sessions", s.StartSession)
		r.Get("/sessions/{id}", s.GetSession)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Post("/sessions/{id}/answers", s.SubmitAnswer)
		r.Get("/sessions/{id}/events", s.SubscribeEvents)
	})

	return s, r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetScript handles GET /script.
func (s *Server) GetScript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Script())
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

type startRequest struct {
	SessionID string `json:"session_id"`
}

// StartSession handles POST /sessions. An existing session with the requested ID is returned as-is.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	id := body.SessionID
	if id == "" {
		id = s.newID()
	}

	ctx := r.Context()
	state, loaded, err := s.Sessions.LoadOrStart(ctx, id, func() *domain.State {
		return s.Engine.Start(ctx, id)
	})
	if err != nil {
		s.fail(w, "StartSession", err)
		return
	}

	status := http.StatusCreated
	if loaded {
		status = http.StatusOK
	}
	s.logger.Info("session started", "session_id", id, "resumed", loaded)
	writeJSON(w, status, state)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	Text string `json:"text"`
}

// SubmitAnswer handles POST /sessions/{id}/answers.
// The awaiting state is persisted before the recommendation call so that
// concurrent answers for the same session are rejected with 409.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body answerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	text, err := s.Sanitizer.Clean(body.Text)
	if err != nil {
		s.logger.Warn("SubmitAnswer: input rejected", "err", err, "size", len(body.Text))
		writeError(w, http.StatusBadRequest, err)
		return
	}

	next, err := s.Sessions.Answer(r.Context(), s.Engine, id, text, s.broadcast)
	if err != nil {
		s.fail(w, "SubmitAnswer", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// Each event carries a JSON state diff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	events, unsubscribe := s.Streams.Subscribe(id)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcast(prev, next *domain.State) {
	diff := domain.Diff(prev, next)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("diff encode failed", "err", err)
		return
	}
	s.Streams.Broadcast(next.SessionID, string(data))
}

// sessionID binds the {id} path parameter.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter id: %w", err))
		return "", false
	}
	return id, true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAwaitingService), errors.Is(err, domain.ErrConversationClosed),
		errors.Is(err, session.ErrSessionReplaced):
		status = http.StatusConflict
	case errors.Is(err, runner.ErrInputTooLarge), errors.Is(err, runner.ErrInvalidUTF8):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
