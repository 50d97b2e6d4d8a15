package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/racketbot/pkg/adapters/memory"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/persistence/middleware"
	"github.com/aretw0/racketbot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sealedStore(t *testing.T, backend ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(backend, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := sealedStore(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, store)
}

func TestEncryptionMiddleware_HidesAnswers(t *testing.T) {
	backend := memory.NewStore()
	store := sealedStore(t, backend, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	state := domain.NewState("s1")
	state.Transcript = append(state.Transcript, domain.UserMessage("专业"))
	state.Answers[domain.KeyLevel] = domain.TextAnswer("专业")
	state.Phase = domain.PhaseAwaitingService
	require.NoError(t, store.Save(ctx, "s1", state))

	raw, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Answers)
	assert.Empty(t, raw.Transcript)
	assert.Equal(t, domain.PhaseAwaitingService, raw.Phase)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Sealed)
	assert.Equal(t, domain.TextAnswer("专业"), loaded.Answers[domain.KeyLevel])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	backend := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	old := sealedStore(t, backend, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, old.Save(ctx, "s1", domain.NewState("s1")))

	rotated := sealedStore(t, backend, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.SessionID)

	wrong := sealedStore(t, backend, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = wrong.Load(ctx, "s1")
	assert.ErrorContains(t, err, "failed to decrypt state")
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	backend := memory.NewStore()
	require.NoError(t, backend.Save(context.Background(), "plain", domain.NewState("plain")))

	store := sealedStore(t, backend, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestNewEncryptionMiddleware_KeyLength(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("!!!")
	assert.Error(t, err)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
