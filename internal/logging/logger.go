package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/racketbot/pkg/domain"
)

// Options selects the logger output.
type Options struct {
	Level  slog.Level
	JSON   bool      // JSON lines instead of key=value text
	Writer io.Writer // defaults to os.Stderr
}

// New creates a configured application logger.
// It writes to Stderr (to keep Stdout for the chat UI or JSON events).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a logger with an explicit format and destination.
func NewWithOptions(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{
		Level: opts.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.EventBase) {
			logger.DebugContext(ctx, "session_start", "session_id", e.SessionID)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.DebugContext(ctx, "answer",
				"session_id", e.SessionID,
				"key", e.Key,
				"index", e.Index,
				"valid", e.Valid,
			)
		},
		OnRecommend: func(ctx context.Context, e *domain.RecommendEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"outcome", e.Outcome,
				"count", e.Count,
				"duration", e.Duration,
			}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.DebugContext(ctx, "recommend", attrs...)
		},
	}
}

// ChainHooks calls each hook set in order.
func ChainHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.EventBase) {
			for _, s := range sets {
				if s.OnSessionStart != nil {
					s.OnSessionStart(ctx, e)
				}
			}
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			for _, s := range sets {
				if s.OnAnswer != nil {
					s.OnAnswer(ctx, e)
				}
			}
		},
		OnRecommend: func(ctx context.Context, e *domain.RecommendEvent) {
			for _, s := range sets {
				if s.OnRecommend != nil {
					s.OnRecommend(ctx, e)
				}
			}
		},
	}
}
