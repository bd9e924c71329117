package cache

import (
	"context"
	"sync"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps idempotency keys in process memory.
// Keys are not shared between instances, so it only fits single-node
// deployments and tests.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	expiries  map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// InMemoryOption configures an InMemoryIdempotencyStore
type InMemoryOption func(*inMemoryOptions)

type inMemoryOptions struct {
	cleanupInterval time.Duration
	now             func() time.Time
}

// WithCleanupInterval sets how often expired keys are purged
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(o *inMemoryOptions) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) InMemoryOption {
	return func(o *inMemoryOptions) {
		o.now = now
	}
}

// NewInMemoryIdempotencyStore creates the store and starts its cleanup goroutine
func NewInMemoryIdempotencyStore(opts ...InMemoryOption) *InMemoryIdempotencyStore {
	o := inMemoryOptions{cleanupInterval: 5 * time.Minute, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	store := &InMemoryIdempotencyStore{
		expiries: make(map[string]time.Time),
		now:      o.now,
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.cleanupLoop(o.cleanupInterval)
	return store
}

// MarkProcessed records key until ttl elapses; false means it was already recorded
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, ok := s.expiries[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.expiries[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key is recorded and not expired
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.expiries[key]
	return ok && s.now().Before(expiresAt), nil
}

// Release forgets key
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expiries, key)
	return nil
}

// Close stops the cleanup goroutine; safe to call more than once
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored keys, expired ones included until the next cleanup
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiries)
}

func (s *InMemoryIdempotencyStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, expiresAt := range s.expiries {
		if !now.Before(expiresAt) {
			delete(s.expiries, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
