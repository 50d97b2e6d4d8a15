package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/racketbot/pkg/adapters/memory"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.NewState("s1")
	state.Transcript = append(state.Transcript, domain.SystemMessage("hi"))
	require.NoError(t, store.Save(ctx, "s1", state))

	state.Transcript[0].Text = "mutated"
	state.Answers[domain.KeyLevel] = domain.TextAnswer("x")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hi", loaded.Transcript[0].Text)
	assert.Empty(t, loaded.Answers)

	loaded.Transcript[0].Text = "again"
	reloaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hi", reloaded.Transcript[0].Text)
}
