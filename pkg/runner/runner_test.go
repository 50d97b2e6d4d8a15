package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aretw0/racketbot"
	"github.com/aretw0/racketbot/pkg/adapters/memory"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/ports"
	"github.com/aretw0/racketbot/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func x1Response() *domain.RecommendResponse {
	return &domain.RecommendResponse{
		Recommendations: []domain.RecommendationItem{{
			ID: "1", Brand: "Yonex", Model: "X1", Level: "初学", Style: "控制型",
			Stiffness: "中硬", Price: 480, ImageRef: "x1.png",
		}},
		Explanation: "匹配你的预算与打法",
	}
}

func newEngine(t *testing.T, calls *atomic.Int32, resp *domain.RecommendResponse, err error) *racketbot.Engine {
	t.Helper()
	eng, e := racketbot.New(racketbot.WithRecommender(ports.RecommenderFunc(
		func(ctx context.Context, answers domain.Answers) (*domain.RecommendResponse, error) {
			if calls != nil {
				calls.Add(1)
			}
			return resp, err
		})))
	require.NoError(t, e)
	return eng
}

func TestRunner_TextScenario(t *testing.T) {
	var calls atomic.Int32
	eng := newEngine(t, &calls, x1Response(), nil)

	in := strings.NewReader("初学\n控制型\n中硬\n500\n")
	out := &bytes.Buffer{}
	r := runner.NewRunner(
		runner.WithSessionID("s1"),
		runner.WithInputHandler(runner.NewTextHandler(in, out)),
	)

	final, err := r.Run(context.Background(), eng, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseDone, final.Phase)
	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, final.Recommendations, 1)

	text := out.String()
	msgs := domain.DefaultMessages()
	assert.Contains(t, text, msgs.Greeting)
	assert.Contains(t, text, msgs.Waiting)
	assert.Contains(t, text, "匹配你的预算与打法")
	assert.Contains(t, text, "Yonex X1")
	assert.Contains(t, text, "价格：¥480")
	assert.Less(t, strings.Index(text, msgs.Waiting), strings.Index(text, "Yonex X1"))
	assert.NotContains(t, text, "\n初学\n", "user answers are not echoed")
}

func TestRunner_StopsOnEOF(t *testing.T) {
	eng := newEngine(t, nil, x1Response(), nil)
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("初学\n"), &bytes.Buffer{})))

	final, err := r.Run(context.Background(), eng, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAsking, final.Phase)
	assert.Equal(t, 1, final.CurrentIndex)
}

func TestRunner_ExitCommand(t *testing.T) {
	var calls atomic.Int32
	eng := newEngine(t, &calls, x1Response(), nil)
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("初学\nQUIT\n中硬\n"), &bytes.Buffer{})))

	final, err := r.Run(context.Background(), eng, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, final.CurrentIndex)
	assert.Zero(t, calls.Load())
}

func TestRunner_EmptyLinesIgnored(t *testing.T) {
	eng := newEngine(t, nil, x1Response(), nil)
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("\n   \n初学\n"), &bytes.Buffer{})))

	final, err := r.Run(context.Background(), eng, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, final.CurrentIndex)
	assert.Len(t, final.Transcript, 4)
}

func TestRunner_ServiceFailure(t *testing.T) {
	eng := newEngine(t, nil, nil, errors.New("connection refused"))
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("初学\n控制型\n中硬\n500\n"), out)))

	final, err := r.Run(context.Background(), eng, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFailed, final.Phase)
	assert.Contains(t, out.String(), domain.DefaultMessages().Failure)
}

func TestRunner_PersistsEveryStep(t *testing.T) {
	store := memory.NewStore()
	eng := newEngine(t, nil, x1Response(), nil)
	r := runner.NewRunner(
		runner.WithSessionID("persist"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("初学\n控制型\n"), &bytes.Buffer{})),
	)

	_, err := r.Run(context.Background(), eng, nil)
	require.NoError(t, err)

	saved, err := store.Load(context.Background(), "persist")
	require.NoError(t, err)
	assert.Equal(t, 2, saved.CurrentIndex)
	assert.Equal(t, "控制型", saved.Answers[domain.KeyStyle].String())
}

func TestRunner_ResumesAwaitingSession(t *testing.T) {
	var calls atomic.Int32
	eng := newEngine(t, &calls, x1Response(), nil)

	state := eng.Start(context.Background(), "resume")
	var err error
	for _, in := range []string{"初学", "控制型", "中硬", "500"} {
		state, _, err = eng.Submit(context.Background(), state, in)
		require.NoError(t, err)
	}
	require.Equal(t, domain.PhaseAwaitingService, state.Phase)

	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(""), &bytes.Buffer{})))
	final, err := r.Run(context.Background(), eng, state)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseDone, final.Phase)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunner_ContextCancelled(t *testing.T) {
	eng := newEngine(t, nil, x1Response(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The reader never yields, so only cancellation can end the loop.
	pr := blockingReader{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(pr, &bytes.Buffer{})))

	_, err := r.Run(ctx, eng, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_OversizedInputReported(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "8")
	eng := newEngine(t, nil, x1Response(), nil)

	in := strings.NewReader("\"" + strings.Repeat("x", 20) + "\"\n\"初学\"\n")
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithInputHandler(runner.NewJSONHandler(in, out)))

	final, err := r.Run(context.Background(), eng, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, final.CurrentIndex)
	assert.Contains(t, out.String(), `"type":"system"`)
}

type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
