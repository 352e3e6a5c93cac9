// Package hybriddb combines the object-store and key-value families: raw
// documents live in an object medium while every index operation is
// delegated to Redis. The composition inherits the wildcard capability the
// pure object-store handler lacks.
package hybriddb

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/grimmjow8/kev/backend"
	"github.com/grimmjow8/kev/backend/objectdb"
	"github.com/grimmjow8/kev/backend/redisdb"
)

// Handler routes document bytes to the object medium and index sets to Redis.
type Handler struct {
	docs *objectdb.Handler
	idx  *redisdb.Handler
}

func New(store objectdb.Store, client *redis.Client, schema string) *Handler {
	return &Handler{
		docs: objectdb.New(store, schema),
		idx:  redisdb.New(client, schema),
	}
}

func (h *Handler) Put(ctx context.Context, id string, fields map[string]any) error {
	return h.docs.Put(ctx, id, fields)
}

func (h *Handler) Get(ctx context.Context, id string) (map[string]any, error) {
	return h.docs.Get(ctx, id)
}

func (h *Handler) Delete(ctx context.Context, id string) error {
	return h.docs.Delete(ctx, id)
}

func (h *Handler) ScanAll(ctx context.Context) ([]string, error) {
	return h.docs.ScanAll(ctx)
}

func (h *Handler) IndexAdd(ctx context.Context, field, value, id string) error {
	return h.idx.IndexAdd(ctx, field, value, id)
}

func (h *Handler) IndexRemove(ctx context.Context, field, value, id string) error {
	return h.idx.IndexRemove(ctx, field, value, id)
}

func (h *Handler) IndexLookup(ctx context.Context, field, value string) ([]string, error) {
	return h.idx.IndexLookup(ctx, field, value)
}

func (h *Handler) IndexScan(ctx context.Context, field, pattern string) ([]string, error) {
	return h.idx.IndexScan(ctx, field, pattern)
}

func (h *Handler) IsWildcard(value string) bool { return h.idx.IsWildcard(value) }

func (h *Handler) SupportsWildcard() bool { return true }

func (h *Handler) FlushDB(ctx context.Context) error {
	if err := h.docs.FlushDB(ctx); err != nil {
		return err
	}
	return h.idx.FlushDB(ctx)
}

var _ backend.Handler = (*Handler)(nil)
