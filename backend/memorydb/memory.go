// Package memorydb provides an in-memory Handler used for local development
// and unit tests. It models the key-value family, including glob wildcard
// lookups.
package memorydb

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/grimmjow8/kev/backend"
)

// Handler keeps documents and index entries in process memory.
type Handler struct {
	mu      sync.RWMutex
	docs    map[string]map[string]any
	indexes map[string]map[string]map[string]struct{} // field -> value -> id set
}

func New() *Handler {
	return &Handler{
		docs:    make(map[string]map[string]any),
		indexes: make(map[string]map[string]map[string]struct{}),
	}
}

func (h *Handler) Put(ctx context.Context, id string, fields map[string]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	h.docs[id] = cp
	return nil
}

func (h *Handler) Get(ctx context.Context, id string) (map[string]any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.docs[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	cp := make(map[string]any, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp, nil
}

func (h *Handler) Delete(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.docs[id]; !ok {
		return backend.ErrNotFound
	}
	delete(h.docs, id)
	return nil
}

func (h *Handler) ScanAll(ctx context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.docs))
	for id := range h.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *Handler) IndexAdd(ctx context.Context, field, value, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	byValue, ok := h.indexes[field]
	if !ok {
		byValue = make(map[string]map[string]struct{})
		h.indexes[field] = byValue
	}
	set, ok := byValue[value]
	if !ok {
		set = make(map[string]struct{})
		byValue[value] = set
	}
	set[id] = struct{}{}
	return nil
}

func (h *Handler) IndexRemove(ctx context.Context, field, value, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.indexes[field][value]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(h.indexes[field], value)
		}
	}
	return nil
}

func (h *Handler) IndexLookup(ctx context.Context, field, value string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return setToSlice(h.indexes[field][value]), nil
}

func (h *Handler) IndexScan(ctx context.Context, field, pattern string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	merged := make(map[string]struct{})
	for value, set := range h.indexes[field] {
		ok, err := path.Match(pattern, value)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for id := range set {
			merged[id] = struct{}{}
		}
	}
	return setToSlice(merged), nil
}

func (h *Handler) IsWildcard(value string) bool { return strings.Contains(value, "*") }

func (h *Handler) SupportsWildcard() bool { return true }

func (h *Handler) FlushDB(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.docs = make(map[string]map[string]any)
	h.indexes = make(map[string]map[string]map[string]struct{})
	return nil
}

func setToSlice(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
