package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KEV_BACKEND", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Backend)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "kev", cfg.MinIO.Bucket)
	require.Equal(t, "kev", cfg.MongoDB.Database)
	require.Zero(t, cfg.RateLimit.RPS)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KEV_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KEV_RATE_LIMIT_RPS", "25")
	t.Setenv("KEV_RATE_LIMIT_BURST", "5")
	t.Setenv("KEV_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendRedis, cfg.Backend)
	require.Equal(t, "redis:6380", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, 25.0, cfg.RateLimit.RPS)
	require.Equal(t, 5, cfg.RateLimit.Burst)
	require.True(t, cfg.Debug)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("KEV_BACKEND", "cassandra")
	_, err := Load()
	require.EqualError(t, err, `unknown backend "cassandra"`)
}

func TestOpenHandlerMemory(t *testing.T) {
	cfg := &Config{Backend: BackendMemory}
	h, closeFn, err := OpenHandler(context.Background(), cfg, "testdocument", nil)
	require.NoError(t, err)
	defer closeFn(context.Background())

	ctx := context.Background()
	require.NoError(t, h.Put(ctx, "a1", map[string]any{"name": "Goo and Sons"}))
	got, err := h.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "Goo and Sons", got["name"])
}

func TestOpenHandlerAppliesRateLimit(t *testing.T) {
	cfg := &Config{
		Backend:   BackendMemory,
		RateLimit: RateLimitConfig{RPS: 100, Burst: 10},
	}
	h, closeFn, err := OpenHandler(context.Background(), cfg, "testdocument", nil)
	require.NoError(t, err)
	defer closeFn(context.Background())
	require.True(t, h.SupportsWildcard())
}

func TestOpenHandlerUnknownBackend(t *testing.T) {
	cfg := &Config{Backend: "dynamo"}
	_, _, err := OpenHandler(context.Background(), cfg, "testdocument", nil)
	require.EqualError(t, err, `unknown backend "dynamo"`)
}
