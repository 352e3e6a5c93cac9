// Package redisdb implements the key-value Handler on Redis. Documents are
// stored as JSON under "<schema>:id:<id>"; each index entry is a Redis set
// under "<schema>:indexes:<field>:<value>", so membership add/remove is a
// single atomic command. Wildcard lookups walk the index keyspace with SCAN
// MATCH, which understands the same glob marker callers use.
package redisdb

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/grimmjow8/kev/backend"
)

// Handler binds one schema's documents and indexes to a Redis client.
type Handler struct {
	client *redis.Client
	schema string
}

// New creates a Redis-backed handler for the named schema. The schema name
// becomes the key prefix and is lowercased to keep the keyspace uniform.
func New(client *redis.Client, schema string) *Handler {
	return &Handler{client: client, schema: strings.ToLower(schema)}
}

func (h *Handler) docKey(id string) string {
	return h.schema + ":id:" + id
}

func (h *Handler) indexKey(field, value string) string {
	return h.schema + ":indexes:" + field + ":" + value
}

func (h *Handler) Put(ctx context.Context, id string, fields map[string]any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return h.client.Set(ctx, h.docKey(id), b, 0).Err()
}

func (h *Handler) Get(ctx context.Context, id string) (map[string]any, error) {
	b, err := h.client.Get(ctx, h.docKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (h *Handler) Delete(ctx context.Context, id string) error {
	n, err := h.client.Del(ctx, h.docKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func (h *Handler) ScanAll(ctx context.Context) ([]string, error) {
	prefix := h.schema + ":id:"
	keys, err := h.scanKeys(ctx, prefix+"*")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IndexAdd(ctx context.Context, field, value, id string) error {
	return h.client.SAdd(ctx, h.indexKey(field, value), id).Err()
}

func (h *Handler) IndexRemove(ctx context.Context, field, value, id string) error {
	return h.client.SRem(ctx, h.indexKey(field, value), id).Err()
}

func (h *Handler) IndexLookup(ctx context.Context, field, value string) ([]string, error) {
	ids, err := h.client.SMembers(ctx, h.indexKey(field, value)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IndexScan(ctx context.Context, field, pattern string) ([]string, error) {
	keys, err := h.scanKeys(ctx, h.indexKey(field, pattern))
	if err != nil {
		return nil, err
	}
	merged := make(map[string]struct{})
	for _, k := range keys {
		members, err := h.client.SMembers(ctx, k).Result()
		if err != nil {
			return nil, err
		}
		for _, id := range members {
			merged[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IsWildcard(value string) bool { return strings.Contains(value, "*") }

func (h *Handler) SupportsWildcard() bool { return true }

func (h *Handler) FlushDB(ctx context.Context) error {
	keys, err := h.scanKeys(ctx, h.schema+":*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return h.client.Del(ctx, keys...).Err()
}

func (h *Handler) scanKeys(ctx context.Context, match string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := h.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
