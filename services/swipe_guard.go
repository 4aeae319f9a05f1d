package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SwipeGuard rejects a second submission for the same directed pair while the
// first one is still being written
type SwipeGuard interface {
	// Acquire returns ErrSwipeInFlight if key is already held. release must be called once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func swipeGuardKey(swiper, swiped string) string {
	return "swipe:inflight:" + swiper + ":" + swiped
}

// MemorySwipeGuard holds keys in process memory
type MemorySwipeGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemorySwipeGuard creates an empty guard
func NewMemorySwipeGuard() *MemorySwipeGuard {
	return &MemorySwipeGuard{held: make(map[string]struct{})}
}

func (g *MemorySwipeGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return nil, ErrSwipeInFlight
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

// only delete the key if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSwipeGuard shares in-flight keys across server instances. Keys expire after
// TTL so a crashed request cannot block a pair forever. When Redis is unreachable
// it falls back to a process-local guard.
type RedisSwipeGuard struct {
	Client   redis.UniversalClient
	TTL      time.Duration
	Log      *zap.Logger
	fallback *MemorySwipeGuard
}

// NewRedisSwipeGuard creates a guard backed by client
func NewRedisSwipeGuard(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *RedisSwipeGuard {
	return &RedisSwipeGuard{Client: client, TTL: ttl, Log: log, fallback: NewMemorySwipeGuard()}
}

func (g *RedisSwipeGuard) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.Client.SetNX(ctx, key, token, g.TTL).Result()
	if err != nil {
		g.Log.Warn("⚠️ redis swipe guard unavailable, using local guard", zap.String("key", key), zap.Error(err))
		return g.fallback.Acquire(ctx, key)
	}
	if !ok {
		return nil, ErrSwipeInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, g.Client, []string{key}, token).Err(); err != nil {
				g.Log.Warn("⚠️ failed to release swipe guard", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}
