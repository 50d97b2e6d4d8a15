package racketbot_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/racketbot"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/ports"
)

// ExampleController demonstrates a full session against an in-process recommender.
func ExampleController() {
	rec := ports.RecommenderFunc(func(ctx context.Context, answers domain.Answers) (*domain.RecommendResponse, error) {
		return &domain.RecommendResponse{
			Recommendations: []domain.RecommendationItem{{ID: "1", Brand: "Yonex", Model: "X1", Price: 480}},
			Explanation:     "匹配你的预算与打法",
		}, nil
	})

	eng, err := racketbot.New(racketbot.WithRecommender(rec))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	ctl := racketbot.NewController(eng, "example")
	if err := ctl.Initialize(ctx); err != nil {
		log.Fatal(err)
	}
	for _, answer := range []string{"初学", "控制型", "中硬", "500"} {
		if err := ctl.SubmitAnswer(ctx, answer); err != nil {
			log.Fatal(err)
		}
	}

	state := ctl.State()
	fmt.Println(state.Phase)
	fmt.Println(state.Transcript[len(state.Transcript)-1].Text)
	fmt.Println(state.Recommendations[0].Brand, state.Recommendations[0].Model)
	// Output:
	// done
	// 匹配你的预算与打法
	// Yonex X1
}
