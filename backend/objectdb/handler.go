package objectdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/grimmjow8/kev/backend"
)

// Handler persists one schema through a Store. Layout:
//
//	<schema>/id/<id>.json                     raw document
//	<schema>/index/<field>/<escaped value>.json  JSON array of ids
//
// Index values are path-escaped so any normalized value is a legal key.
type Handler struct {
	store  Store
	schema string
}

func New(store Store, schema string) *Handler {
	return &Handler{store: store, schema: strings.ToLower(schema)}
}

func (h *Handler) docKey(id string) string {
	return h.schema + "/id/" + id + ".json"
}

func (h *Handler) indexKey(field, value string) string {
	return h.schema + "/index/" + field + "/" + url.PathEscape(value) + ".json"
}

func (h *Handler) Put(ctx context.Context, id string, fields map[string]any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return h.store.Put(ctx, h.docKey(id), b)
}

func (h *Handler) Get(ctx context.Context, id string) (map[string]any, error) {
	b, err := h.store.Get(ctx, h.docKey(id))
	if err != nil {
		if errors.Is(err, ErrNoObject) {
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
	if _, err := h.store.Get(ctx, h.docKey(id)); err != nil {
		if errors.Is(err, ErrNoObject) {
			return backend.ErrNotFound
		}
		return err
	}
	return h.store.Delete(ctx, h.docKey(id))
}

func (h *Handler) ScanAll(ctx context.Context) ([]string, error) {
	prefix := h.schema + "/id/"
	keys, err := h.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id := strings.TrimSuffix(strings.TrimPrefix(k, prefix), ".json")
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IndexAdd(ctx context.Context, field, value, id string) error {
	ids, err := h.readEntry(ctx, field, value)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)
	sort.Strings(ids)
	return h.writeEntry(ctx, field, value, ids)
}

func (h *Handler) IndexRemove(ctx context.Context, field, value, id string) error {
	ids, err := h.readEntry(ctx, field, value)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		return h.store.Delete(ctx, h.indexKey(field, value))
	}
	return h.writeEntry(ctx, field, value, kept)
}

func (h *Handler) IndexLookup(ctx context.Context, field, value string) ([]string, error) {
	return h.readEntry(ctx, field, value)
}

func (h *Handler) IndexScan(ctx context.Context, field, pattern string) ([]string, error) {
	return nil, &backend.CapabilityError{Backend: "object", Op: "wildcard filtering"}
}

func (h *Handler) IsWildcard(value string) bool { return strings.Contains(value, "*") }

func (h *Handler) SupportsWildcard() bool { return false }

func (h *Handler) FlushDB(ctx context.Context) error {
	keys, err := h.store.List(ctx, h.schema+"/")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := h.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) readEntry(ctx context.Context, field, value string) ([]string, error) {
	b, err := h.store.Get(ctx, h.indexKey(field, value))
	if err != nil {
		if errors.Is(err, ErrNoObject) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (h *Handler) writeEntry(ctx context.Context, field, value string, ids []string) error {
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return h.store.Put(ctx, h.indexKey(field, value), b)
}
