package racketbot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/racketbot/internal/runtime"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/ports"
)

// Engine is the high-level entry point for the racketbot library.
// It wraps the internal reducer and executes the effects it requests.
type Engine struct {
	runtime     *runtime.Engine
	recommender ports.Recommender
	script      domain.Script
	messages    domain.Messages
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithScript replaces the default four-question script.
func WithScript(script domain.Script) Option {
	return func(e *Engine) {
		e.script = script
	}
}

// WithRecommender injects the recommendation service adapter.
func WithRecommender(r ports.Recommender) Option {
	return func(e *Engine) {
		e.recommender = r
	}
}

// WithMessages overrides the system chat texts.
func WithMessages(m domain.Messages) Option {
	return func(e *Engine) {
		e.messages = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine.
// A Recommender is required; the script defaults to domain.DefaultScript.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		script:   domain.DefaultScript(),
		messages: domain.DefaultMessages(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.recommender == nil {
		return nil, fmt.Errorf("a recommender is required (use WithRecommender)")
	}
	if err := eng.script.Validate(); err != nil {
		return nil, err
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(eng.script,
		runtime.WithMessages(eng.messages),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Start creates the initial state for a session: greeting plus the first prompt.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	return e.runtime.Start(ctx, sessionID)
}

// Submit applies a user answer without performing any I/O.
// The returned effects must be passed to Execute to complete the conversation.
func (e *Engine) Submit(ctx context.Context, state *domain.State, raw string) (*domain.State, []domain.Effect, error) {
	return e.runtime.Submit(ctx, state, raw)
}

// Execute performs the effects returned by Submit and folds their outcome into the state.
// The recommendation service is called exactly once per FETCH_RECOMMENDATIONS effect;
// its failures never surface as errors, they become the generic chat message.
func (e *Engine) Execute(ctx context.Context, state *domain.State, effects []domain.Effect) (*domain.State, error) {
	for _, eff := range effects {
		switch eff.Type {
		case domain.EffectFetchRecommendations:
			answers, ok := eff.Payload.(domain.Answers)
			if !ok {
				return state, fmt.Errorf("effect %s: unexpected payload %T", eff.Type, eff.Payload)
			}
			started := time.Now()
			resp, err := e.recommender.Recommend(ctx, answers)
			state = e.runtime.Resolve(ctx, state, resp, err, time.Since(started))
		default:
			return state, fmt.Errorf("unknown effect type %q", eff.Type)
		}
	}
	return state, nil
}

// Script returns the prompts in use.
func (e *Engine) Script() domain.Script {
	return e.runtime.Script()
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
