package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunGuard admits at most one active run per pipeline.
type RunGuard interface {
	// TryAcquire marks pipeline as running. It reports false when a run is
	// already active.
	TryAcquire(ctx context.Context, pipeline string) (bool, error)

	// Release ends the active run of pipeline.
	Release(ctx context.Context, pipeline string) error
}

// MemoryGuard is a single-process RunGuard.
type MemoryGuard struct {
	mu      sync.Mutex
	running map[string]bool
}

var _ RunGuard = (*MemoryGuard)(nil)

// NewMemoryGuard creates a guard with no active runs.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{running: make(map[string]bool)}
}

func (g *MemoryGuard) TryAcquire(ctx context.Context, pipeline string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[pipeline] {
		return false, nil
	}
	g.running[pipeline] = true
	return true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, pipeline string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, pipeline)
	return nil
}

// redisLocker is the subset of *redis.Client used by RedisGuard.
type redisLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// releaseScript deletes the lock only if this process still owns it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// RedisGuard is a RunGuard shared by every replica pointing at the same Redis.
// The TTL bounds how long a crashed holder blocks the pipeline.
type RedisGuard struct {
	rdb    redisLocker
	prefix string
	ttl    time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

var _ RunGuard = (*RedisGuard)(nil)

// NewRedisGuard creates a guard storing locks under prefix+pipeline.
func NewRedisGuard(rdb redisLocker, prefix string, ttl time.Duration) *RedisGuard {
	if prefix == "" {
		prefix = "billing:run:"
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisGuard{rdb: rdb, prefix: prefix, ttl: ttl, tokens: make(map[string]string)}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (g *RedisGuard) TryAcquire(ctx context.Context, pipeline string) (bool, error) {
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, g.prefix+pipeline, token, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire %s run lock: %w", pipeline, err)
	}
	if !ok {
		return false, nil
	}

	g.mu.Lock()
	g.tokens[pipeline] = token
	g.mu.Unlock()
	return true, nil
}

func (g *RedisGuard) Release(ctx context.Context, pipeline string) error {
	g.mu.Lock()
	token, ok := g.tokens[pipeline]
	delete(g.tokens, pipeline)
	g.mu.Unlock()
	if !ok {
		return nil
	}

	if err := g.rdb.Eval(ctx, releaseScript, []string{g.prefix + pipeline}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release %s run lock: %w", pipeline, err)
	}
	return nil
}
