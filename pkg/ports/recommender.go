package ports

import (
	"context"

	"github.com/aretw0/racketbot/pkg/domain"
)

// Recommender is the driven port to the external recommendation service.
// Implementations perform exactly one attempt per call.
type Recommender interface {
	// Recommend sends the collected answers and returns the service response.
	// Any transport failure, non-success status or malformed body is an error.
	Recommend(ctx context.Context, answers domain.Answers) (*domain.RecommendResponse, error)
}

// RecommenderFunc adapts a function to the Recommender interface.
type RecommenderFunc func(ctx context.Context, answers domain.Answers) (*domain.RecommendResponse, error)

// Recommend calls f.
func (f RecommenderFunc) Recommend(ctx context.Context, answers domain.Answers) (*domain.RecommendResponse, error) {
	return f(ctx, answers)
}
