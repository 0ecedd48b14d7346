package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "test-session"
	original := domain.NewSession(sessionID)
	original.Memory = []string{"lets discuss further why your sister hates me"}
	original.Usage["my#1"] = 2

	require.NoError(t, secureStore.Save(ctx, sessionID, original))

	// The underlying store only sees the envelope.
	stored, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Sealed)
	assert.Empty(t, stored.Memory)
	assert.Empty(t, stored.Usage)
	assert.NotContains(t, stored.Sealed, "sister")

	loaded, err := secureStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, original.Memory, loaded.Memory)
	assert.Equal(t, 2, loaded.Usage["my#1"])
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	sessionID := "rotation-session"
	original := domain.NewSession(sessionID)
	original.Memory = []string{"encrypted-with-old-key"}

	require.NoError(t, secureStoreOld.Save(ctx, sessionID, original))

	// Load with NEW key (Active) + OLD key (Fallback)
	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"encrypted-with-old-key"}, loaded.Memory)

	// Saving again re-encrypts with the new key.
	loaded.Memory = []string{"encrypted-with-new-key"}
	require.NoError(t, secureStoreNew.Save(ctx, sessionID, loaded))

	_, err = secureStoreOld.Load(ctx, sessionID)
	assert.Error(t, err, "old key alone must not open a new-key envelope")
}

func TestEncryptionMiddleware_RejectsPlainSession(t *testing.T) {
	underlyingStore := NewMockStore()
	require.NoError(t, underlyingStore.Save(context.Background(), "plain", domain.NewSession("plain")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(context.Background(), "plain")
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	ports.RunSessionStoreContract(t, store)
}
