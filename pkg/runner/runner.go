package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/racketbot"
	"github.com/aretw0/racketbot/internal/logging"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/ports"
)

// Runner drives one conversation against an IOHandler.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Store is the persistence adapter. If nil, sessions are ephemeral.
	Store ports.StateStore

	// SessionID names new conversations and keys persistence.
	SessionID string
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run executes the conversation loop until a terminal phase, EOF, "exit"/"quit"
// or context cancellation. If state is nil, engine.Start is called.
// A state resumed while awaiting the service re-issues the recommendation call.
// The last state reached is always returned.
func (r *Runner) Run(ctx context.Context, engine *racketbot.Engine, state *domain.State) (*domain.State, error) {
	if state == nil {
		state = engine.Start(ctx, r.SessionID)
		if err := r.save(ctx, state); err != nil {
			return state, err
		}
	}

	var shown *domain.State
	present := func(next *domain.State) error {
		defer func() { shown = next }()
		diff := domain.Diff(shown, next)
		if diff == nil {
			return nil
		}
		if len(diff.Appended) > 0 {
			if err := r.Handler.Output(ctx, diff.Appended); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
		if len(diff.Recommendations) > 0 {
			if err := r.Handler.Recommendations(ctx, diff.Recommendations); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
		return nil
	}

	if err := present(state); err != nil {
		return state, err
	}

	for !state.Terminal() {
		var effects []domain.Effect

		if state.Phase == domain.PhaseAwaitingService {
			r.Logger.Debug("resuming pending recommendation", "session_id", state.SessionID)
			effects = []domain.Effect{{Type: domain.EffectFetchRecommendations, Payload: state.Answers.Clone()}}
		} else {
			raw, err := r.Handler.Input(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return state, nil
				}
				if ctx.Err() != nil {
					return state, ctx.Err()
				}
				if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
					if err := r.Handler.SystemOutput(ctx, err.Error()); err != nil {
						return state, err
					}
					continue
				}
				return state, fmt.Errorf("input error: %w", err)
			}
			if cmd := strings.ToLower(raw); cmd == "exit" || cmd == "quit" {
				return state, nil
			}

			next, effs, err := engine.Submit(ctx, state, raw)
			if err != nil {
				return state, fmt.Errorf("submit: %w", err)
			}
			state, effects = next, effs
			if err := r.save(ctx, state); err != nil {
				return state, err
			}
			// The wait message is shown before the service is called.
			if err := present(state); err != nil {
				return state, err
			}
		}

		if len(effects) == 0 {
			continue
		}
		next, err := engine.Execute(ctx, state, effects)
		if err != nil {
			return state, fmt.Errorf("execute: %w", err)
		}
		state = next
		if err := r.save(ctx, state); err != nil {
			return state, err
		}
		if err := present(state); err != nil {
			return state, err
		}
	}
	return state, nil
}

func (r *Runner) save(ctx context.Context, state *domain.State) error {
	if r.Store == nil || state.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, state.SessionID, state); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	r.Logger.Debug("state saved", "session_id", state.SessionID, "phase", state.Phase)
	return nil
}
