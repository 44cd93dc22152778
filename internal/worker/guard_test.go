package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGuard()

	ok, err := g.TryAcquire(ctx, "daily")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.TryAcquire(ctx, "daily")
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must be refused while running")

	// Pipelines are guarded independently.
	ok, err = g.TryAcquire(ctx, "weekly")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, "daily"))
	assert.NotContains(t, g.running, "daily")

	ok, err = g.TryAcquire(ctx, "daily")
	require.NoError(t, err)
	assert.True(t, ok)
}

type fakeRedis struct {
	held     map[string]string
	setErr   error
	evalKeys []string
	evalArgs []interface{}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.held[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.held[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.evalKeys = keys
	f.evalArgs = args
	if f.held[keys[0]] == args[0] {
		delete(f.held, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisGuard(t *testing.T) {
	ctx := context.Background()
	rdb := &fakeRedis{held: map[string]string{}}
	g := NewRedisGuard(rdb, "", time.Minute)

	ok, err := g.TryAcquire(ctx, "weekly")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, rdb.held, "billing:run:weekly")

	other := NewRedisGuard(rdb, "", time.Minute)
	ok, err = other.TryAcquire(ctx, "weekly")
	require.NoError(t, err)
	assert.False(t, ok, "another replica must not acquire a held lock")

	// Releasing a lock this guard never held leaves it in place.
	require.NoError(t, other.Release(ctx, "weekly"))
	assert.Contains(t, rdb.held, "billing:run:weekly")

	require.NoError(t, g.Release(ctx, "weekly"))
	assert.NotContains(t, rdb.held, "billing:run:weekly")
	assert.Equal(t, []string{"billing:run:weekly"}, rdb.evalKeys)
}

func TestRedisGuard_Error(t *testing.T) {
	g := NewRedisGuard(&fakeRedis{held: map[string]string{}, setErr: errors.New("dial tcp: refused")}, "x:", 0)
	ok, err := g.TryAcquire(context.Background(), "daily")
	require.Error(t, err)
	assert.False(t, ok)
}
