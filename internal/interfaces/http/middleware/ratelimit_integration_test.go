//go:build integration

package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisRateLimiter(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisRateLimiter(client, "", 2, time.Hour)

	for want := 1; want >= 0; want-- {
		allowed, remaining, err := limiter.Allow(ctx, "store:a")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, want, remaining)
	}

	allowed, remaining, err := limiter.Allow(ctx, "store:a")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	allowed, _, err = limiter.Allow(ctx, "store:b")
	require.NoError(t, err)
	assert.True(t, allowed)
}
