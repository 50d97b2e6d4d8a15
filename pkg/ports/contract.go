package ports

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.CurrentIndex = 4
		state.Phase = domain.PhaseDone
		state.Transcript = append(state.Transcript, domain.SystemMessage("hi"), domain.UserMessage("初学"))
		state.Answers[domain.KeyLevel] = domain.TextAnswer("初学")
		state.Answers[domain.KeyBudget] = domain.NumberAnswer(500)
		state.Recommendations = []domain.RecommendationItem{{ID: "1", Brand: "Yonex", Price: 480}}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Phase, loaded.Phase)
		assert.Equal(t, state.CurrentIndex, loaded.CurrentIndex)
		assert.Equal(t, state.Transcript, loaded.Transcript)
		assert.Equal(t, state.Recommendations, loaded.Recommendations)
		// Typed answers must survive persistence: budget stays a number.
		assert.Equal(t, domain.NumberAnswer(500), loaded.Answers[domain.KeyBudget])
		assert.Equal(t, domain.TextAnswer("初学"), loaded.Answers[domain.KeyLevel])
	})

	t.Run("Sentinel Budget", func(t *testing.T) {
		id := sessionID + "-nan"
		state := domain.NewState(id)
		state.Answers[domain.KeyBudget] = domain.NumberAnswer(math.NaN())
		require.NoError(t, store.Save(ctx, id, state))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.True(t, loaded.Answers[domain.KeyBudget].Numeric)
		assert.False(t, loaded.Answers[domain.KeyBudget].Valid())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
