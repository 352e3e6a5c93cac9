// Package backend defines the capability contract storage handlers
// implement. A handler performs raw document reads/writes and raw index-set
// operations for exactly one schema; which operations it can do natively is
// declared through capability flags rather than assumed.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when no document exists under the id.
var ErrNotFound = errors.New("document not found")

// CapabilityError reports an operation the active backend cannot perform.
// It signals a caller/configuration mistake, not a transient failure.
type CapabilityError struct {
	Backend string
	Op      string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s is not supported by the %s backend", e.Op, e.Backend)
}

// Handler is the storage interface one schema is bound to. Index values are
// always pre-normalized strings (see Normalize); document ids are opaque
// strings assigned by the caller on first save.
type Handler interface {
	Put(ctx context.Context, id string, fields map[string]any) error
	Get(ctx context.Context, id string) (map[string]any, error)
	Delete(ctx context.Context, id string) error
	ScanAll(ctx context.Context) ([]string, error)

	IndexAdd(ctx context.Context, field, value, id string) error
	IndexRemove(ctx context.Context, field, value, id string) error
	IndexLookup(ctx context.Context, field, value string) ([]string, error)
	// IndexScan resolves a wildcard pattern against the field's index,
	// unioning the identity sets of every matching entry. Handlers whose
	// SupportsWildcard is false return a CapabilityError.
	IndexScan(ctx context.Context, field, pattern string) ([]string, error)

	// IsWildcard reports whether the handler treats value as a pattern.
	// The marker syntax is handler-specific: glob for key-value stores,
	// regular expressions for the managed wide-column store.
	IsWildcard(value string) bool
	SupportsWildcard() bool

	FlushDB(ctx context.Context) error
}

// Normalize renders a field value as an index-key string. Text values are
// case-folded when fold is set so lookups are case-insensitive. Every
// handler and the index engine must agree on this rendering.
func Normalize(v any, fold bool) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if fold {
			return strings.ToLower(t)
		}
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}
