//go:build integration

package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestOrderNumberGenerator_Redis(t *testing.T) {
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

	gen := NewOrderNumberGenerator("ORD", client)
	storeID := uuid.New()
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	var (
		mu      sync.Mutex
		numbers = map[string]bool{}
		wg      sync.WaitGroup
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := gen.Next(ctx, nil, storeID, now)
			assert.NoError(t, err)
			mu.Lock()
			numbers[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, 25)
	assert.True(t, numbers["ORD-20261019-00001"])
	assert.True(t, numbers[fmt.Sprintf("ORD-20261019-%05d", 25)])

	ttl, err := client.TTL(ctx, fmt.Sprintf("order:number:%s:20261019", storeID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 24*time.Hour)

	other, err := gen.Next(ctx, nil, uuid.New(), now)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20261019-00001", other)
}
