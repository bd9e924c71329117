package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before they expire
type TokenBlacklist interface {
	// Revoke blocks one token until ttl elapses
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeActor blocks every token the actor was issued up to now
	RevokeActor(ctx context.Context, actorID string, ttl time.Duration) error
	IsActorRevoked(ctx context.Context, actorID string, issuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist keeps revocations in Redis so every instance sees them
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenBlacklist creates a blacklist on an existing client
func NewRedisTokenBlacklist(client *redis.Client, keyPrefix string) *RedisTokenBlacklist {
	if keyPrefix == "" {
		keyPrefix = "token:blacklist:"
	}
	return &RedisTokenBlacklist{client: client, keyPrefix: keyPrefix}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) actorKey(actorID string) string {
	return b.keyPrefix + "actor:" + actorID
}

// Revoke adds the token id with ttl
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks the token id
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// RevokeActor stores the current unix time as the actor's cut-off
func (b *RedisTokenBlacklist) RevokeActor(ctx context.Context, actorID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.actorKey(actorID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke actor tokens: %w", err)
	}
	return nil
}

// IsActorRevoked reports whether issuedAt is at or before the actor's cut-off
func (b *RedisTokenBlacklist) IsActorRevoked(ctx context.Context, actorID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.actorKey(actorID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check actor revocation: %w", err)
	}
	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= cutoff, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is a single-process blacklist for tests and for
// running without Redis
type InMemoryTokenBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	actors map[string]time.Time
}

// NewInMemoryTokenBlacklist creates an empty blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens: make(map[string]time.Time),
		actors: make(map[string]time.Time),
	}
}

func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) RevokeActor(_ context.Context, actorID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actors[actorID] = time.Now()
	return nil
}

func (b *InMemoryTokenBlacklist) IsActorRevoked(_ context.Context, actorID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff, ok := b.actors[actorID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(cutoff), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
