package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/racketbot/pkg/domain"
)

// Engine is the core conversation reducer.
// All methods are pure with respect to their input state: they return a new state and
// never mutate the one they receive.
type Engine struct {
	script   domain.Script
	messages domain.Messages
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithMessages overrides the stock system texts. Empty fields keep their default.
func WithMessages(m domain.Messages) EngineOption {
	return func(e *Engine) {
		e.messages = m.WithDefaults()
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a reducer for the given script.
// The script must already be valid (see domain.Script.Validate).
func NewEngine(script domain.Script, opts ...EngineOption) *Engine {
	e := &Engine{
		script:   append(domain.Script(nil), script...),
		messages: domain.DefaultMessages(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Script returns a copy of the prompts driving the conversation.
func (e *Engine) Script() domain.Script {
	return append(domain.Script(nil), e.script...)
}

// Messages returns the system texts in use.
func (e *Engine) Messages() domain.Messages {
	return e.messages
}

// Start creates the initial state: greeting followed by the first prompt.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	state := domain.NewState(sessionID)
	state.Transcript = append(state.Transcript,
		domain.SystemMessage(e.messages.Greeting),
		domain.SystemMessage(e.script[0].Text),
	)

	e.logger.Debug("session started", "session_id", sessionID, "prompts", len(e.script))
	if e.hooks.OnSessionStart != nil {
		e.hooks.OnSessionStart(ctx, &domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventSessionStart,
			SessionID: sessionID,
		})
	}
	return state
}
