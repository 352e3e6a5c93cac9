// Package ratelimit wraps any Handler with a token-bucket limiter, pacing
// calls against managed stores that bill or throttle per request. It paces
// only; it never retries.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/grimmjow8/kev/backend"
)

// Handler delegates every operation to the inner handler after the limiter
// grants a token. Capability flags pass through untouched.
type Handler struct {
	inner backend.Handler
	lim   *rate.Limiter
}

// Wrap creates a paced handler. rps is the sustained rate, burst the bucket
// size.
func Wrap(inner backend.Handler, rps float64, burst int) *Handler {
	return &Handler{inner: inner, lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (h *Handler) Put(ctx context.Context, id string, fields map[string]any) error {
	if err := h.lim.Wait(ctx); err != nil {
		return err
	}
	return h.inner.Put(ctx, id, fields)
}

func (h *Handler) Get(ctx context.Context, id string) (map[string]any, error) {
	if err := h.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return h.inner.Get(ctx, id)
}

func (h *Handler) Delete(ctx context.Context, id string) error {
	if err := h.lim.Wait(ctx); err != nil {
		return err
	}
	return h.inner.Delete(ctx, id)
}

func (h *Handler) ScanAll(ctx context.Context) ([]string, error) {
	if err := h.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return h.inner.ScanAll(ctx)
}

func (h *Handler) IndexAdd(ctx context.Context, field, value, id string) error {
	if err := h.lim.Wait(ctx); err != nil {
		return err
	}
	return h.inner.IndexAdd(ctx, field, value, id)
}

func (h *Handler) IndexRemove(ctx context.Context, field, value, id string) error {
	if err := h.lim.Wait(ctx); err != nil {
		return err
	}
	return h.inner.IndexRemove(ctx, field, value, id)
}

func (h *Handler) IndexLookup(ctx context.Context, field, value string) ([]string, error) {
	if err := h.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return h.inner.IndexLookup(ctx, field, value)
}

func (h *Handler) IndexScan(ctx context.Context, field, pattern string) ([]string, error) {
	if err := h.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return h.inner.IndexScan(ctx, field, pattern)
}

func (h *Handler) IsWildcard(value string) bool { return h.inner.IsWildcard(value) }

func (h *Handler) SupportsWildcard() bool { return h.inner.SupportsWildcard() }

func (h *Handler) FlushDB(ctx context.Context) error {
	if err := h.lim.Wait(ctx); err != nil {
		return err
	}
	return h.inner.FlushDB(ctx)
}

var _ backend.Handler = (*Handler)(nil)
