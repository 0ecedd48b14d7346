package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlyingStore)

	ctx := context.Background()
	sessionID := "pii-session"
	sess := domain.NewSession(sessionID)
	sess.Memory = []string{
		"Earlier you said your email is jane.doe@example.com.",
		"But your number is +1 555 123 4567.",
		"Lets discuss further why your boyfriend made you come here.",
	}

	require.NoError(t, secureStore.Save(ctx, sessionID, sess))

	// The engine's in-memory session is untouched.
	assert.Contains(t, sess.Memory[0], "jane.doe@example.com")

	stored, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Earlier you said your email is ***.",
		"But your number is ***.",
		"Lets discuss further why your boyfriend made you come here.",
	}, stored.Memory)
}

func TestPIIMiddleware_CustomPatterns(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware([]string{`(?i)\bpassword \S+`})(underlyingStore)

	sess := domain.NewSession("custom")
	sess.Memory = []string{"Your password hunter2 leaked?"}
	require.NoError(t, secureStore.Save(context.Background(), "custom", sess))

	stored, err := underlyingStore.Load(context.Background(), "custom")
	require.NoError(t, err)
	assert.Equal(t, []string{"Your *** leaked?"}, stored.Memory)
}
