package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/grimmjow8/kev/backend"
	"github.com/grimmjow8/kev/backend/hybriddb"
	"github.com/grimmjow8/kev/backend/memorydb"
	"github.com/grimmjow8/kev/backend/mongodb"
	"github.com/grimmjow8/kev/backend/objectdb"
	"github.com/grimmjow8/kev/backend/ratelimit"
	"github.com/grimmjow8/kev/backend/redisdb"
)

// CloseFunc releases whatever clients a handler was built on.
type CloseFunc func(ctx context.Context) error

func noClose(ctx context.Context) error { return nil }

// OpenHandler builds the configured backend variant for one schema.
// indexedFields is the schema's indexed field list; only the managed
// wide-column variant uses it (to create native secondary indexes).
func OpenHandler(ctx context.Context, cfg *Config, schema string, indexedFields []string) (backend.Handler, CloseFunc, error) {
	h, closeFn, err := openRaw(ctx, cfg, schema, indexedFields)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RateLimit.RPS > 0 {
		h = ratelimit.Wrap(h, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	return h, closeFn, nil
}

func openRaw(ctx context.Context, cfg *Config, schema string, indexedFields []string) (backend.Handler, CloseFunc, error) {
	switch cfg.Backend {
	case BackendMemory:
		return memorydb.New(), noClose, nil

	case BackendRedis:
		client := newRedisClient(cfg)
		return redisdb.New(client, schema), func(context.Context) error { return client.Close() }, nil

	case BackendObject:
		store, err := newMinIOStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return objectdb.New(store, schema), noClose, nil

	case BackendHybrid:
		store, err := newMinIOStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		client := newRedisClient(cfg)
		return hybriddb.New(store, client, schema), func(context.Context) error { return client.Close() }, nil

	case BackendMongoDB:
		client, err := mongodb.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(schema)
		h, err := mongodb.New(col, indexedFields)
		if err != nil {
			client.Disconnect(ctx)
			return nil, nil, err
		}
		return h, client.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func newRedisClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func newMinIOStore(cfg *Config) (objectdb.Store, error) {
	return objectdb.NewMinIOStore(&objectdb.MinIOConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		UseSSL:    cfg.MinIO.UseSSL,
		Bucket:    cfg.MinIO.Bucket,
	})
}
