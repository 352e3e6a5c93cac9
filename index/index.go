// Package index computes and applies the index-key deltas that keep
// secondary indexes consistent with document state. The delta is the same
// for every backend; the handler decides how an add or remove is physically
// realized.
package index

import (
	"context"

	"github.com/grimmjow8/kev/backend"
	"github.com/grimmjow8/kev/field"
)

// Change is one indexed field whose normalized value moved. A nil Old means
// the document had no prior entry for the field; a nil New means the field
// is now unset and only the removal is issued.
type Change struct {
	Field string
	Old   *string
	New   *string
}

// Diff compares the last-persisted snapshot against the current values and
// returns a change per indexed field whose normalized value differs.
func Diff(specs []*field.Spec, snapshot, current map[string]any) []Change {
	var changes []Change
	for _, s := range specs {
		if !s.Indexed() {
			continue
		}
		oldNorm := normalize(s, snapshot[s.Name])
		newNorm := normalize(s, current[s.Name])
		if equal(oldNorm, newNorm) {
			continue
		}
		changes = append(changes, Change{Field: s.Name, Old: oldNorm, New: newNorm})
	}
	return changes
}

// Apply issues the removals and additions for the document through the
// handler, removals first so a value move never leaves a window with two
// live entries for the same field.
func Apply(ctx context.Context, h backend.Handler, id string, changes []Change) error {
	for _, c := range changes {
		if c.Old != nil {
			if err := h.IndexRemove(ctx, c.Field, *c.Old, id); err != nil {
				return err
			}
		}
		if c.New != nil {
			if err := h.IndexAdd(ctx, c.Field, *c.New, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func normalize(s *field.Spec, v any) *string {
	if v == nil {
		return nil
	}
	n := backend.Normalize(v, s.Fold())
	return &n
}

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
