package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter admits at most Limit() requests per key and window
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// RedisRateLimiter is a fixed-window counter shared by every API instance
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter keyed under prefix ("ratelimit:" when empty)
func NewRedisRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

func (l *RedisRateLimiter) Limit() int { return l.limit }

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := l.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, l.limit, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	return count <= l.limit, max(l.limit-count, 0), nil
}

// MemoryRateLimiter is a per-process fixed-window limiter
type MemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
}

type window struct {
	used  int
	start time.Time
}

// NewMemoryRateLimiter creates a per-process limiter
func NewMemoryRateLimiter(limit int, w time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     time.Now,
	}
}

func (l *MemoryRateLimiter) Limit() int { return l.limit }

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.clients[key] = w
	}
	if w.used >= l.limit {
		return false, 0, nil
	}
	w.used++
	return true, l.limit - w.used, nil
}

// evict drops windows idle for two periods; caller holds mu
func (l *MemoryRateLimiter) evict(now time.Time) {
	for key, w := range l.clients {
		if now.Sub(w.start) > 2*l.window {
			delete(l.clients, key)
		}
	}
}

// RateLimit limits requests per authenticated store, or per client IP before
// authentication. Limiter errors let the request through.
func RateLimit(limiter RateLimiter, log *zap.Logger) gin.HandlerFunc {
	if limiter == nil || limiter.Limit() <= 0 {
		return passThrough
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if storeID := c.GetString(logger.GinStoreIDKey); storeID != "" {
			key = "store:" + storeID
		}

		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil && log != nil {
			log.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			abortWithError(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
