package runner

import (
	"context"

	"github.com/aretw0/racketbot/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents newly appended transcript messages.
	Output(ctx context.Context, messages []domain.Message) error

	// Recommendations presents the product cards once they are installed.
	Recommendations(ctx context.Context, items []domain.RecommendationItem) error

	// Input reads the next answer from the user.
	// It returns io.EOF when the input stream is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (status, rejected input) distinct from chat content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms a system message before it is printed.
// This allows terminal rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// CardFormatter turns a recommendation into printable text.
type CardFormatter func(domain.RecommendationItem) string
