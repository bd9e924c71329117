package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewInMemoryTokenBlacklist()

	t.Run("revoked token until ttl passes", func(t *testing.T) {
		require.NoError(t, b.Revoke(ctx, "jti-1", time.Hour))
		require.NoError(t, b.Revoke(ctx, "jti-2", -time.Second))

		revoked, err := b.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = b.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)

		revoked, err = b.IsRevoked(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("actor revocation cuts off earlier tokens", func(t *testing.T) {
		before := time.Now().Add(-time.Minute)
		require.NoError(t, b.RevokeActor(ctx, "actor-1", time.Hour))

		revoked, err := b.IsActorRevoked(ctx, "actor-1", before)
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = b.IsActorRevoked(ctx, "actor-1", time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, revoked)

		revoked, err = b.IsActorRevoked(ctx, "actor-2", before)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
