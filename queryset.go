package kev

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/grimmjow8/kev/pkg/metrics"
)

type filterTerm struct {
	field string
	value string
}

// QuerySet is a lazy, chainable filter accumulator over one collection.
// Filter layers a predicate and returns a new set; nothing touches the
// backend until Count, Documents, At or Get force resolution, and the
// resolved identity set is cached for the life of this instance. Predicates
// combine with AND: an identity survives only if every predicate's resolved
// set contains it.
type QuerySet struct {
	coll  *Collection
	terms []filterTerm

	ids      []string
	resolved bool
}

// Objects starts an empty query over the collection.
func (c *Collection) Objects() *QuerySet {
	return &QuerySet{coll: c}
}

// Filter returns a new QuerySet layering the given field/value predicates.
// The receiver is never mutated, so partially built sets can be shared.
// Values containing the handler's wildcard marker resolve by pattern scan.
func (q *QuerySet) Filter(pred map[string]string) *QuerySet {
	terms := make([]filterTerm, len(q.terms), len(q.terms)+len(pred))
	copy(terms, q.terms)
	names := make([]string, 0, len(pred))
	for name := range pred {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		terms = append(terms, filterTerm{field: name, value: pred[name]})
	}
	return &QuerySet{coll: q.coll, terms: terms}
}

// Count resolves the set and returns the number of matching identities.
func (q *QuerySet) Count(ctx context.Context) (int, error) {
	ids, err := q.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// IDs resolves the set and returns the matching identities in stable order.
func (q *QuerySet) IDs(ctx context.Context) ([]string, error) {
	ids, err := q.resolve(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Documents resolves the set and materializes every matching document.
func (q *QuerySet) Documents(ctx context.Context) ([]*Document, error) {
	ids, err := q.resolve(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(ids))
	for _, id := range ids {
		doc, err := q.coll.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// At resolves the set and materializes the i-th matching document.
func (q *QuerySet) At(ctx context.Context, i int) (*Document, error) {
	ids, err := q.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(ids) {
		return nil, fmt.Errorf("query index %d out of range (%d results)", i, len(ids))
	}
	return q.coll.Get(ctx, ids[i])
}

// Get layers pred, resolves, and demands exactly one result.
func (q *QuerySet) Get(ctx context.Context, pred map[string]string) (*Document, error) {
	qs := q
	if len(pred) > 0 {
		qs = q.Filter(pred)
	}
	ids, err := qs.resolve(ctx)
	if err != nil {
		return nil, err
	}
	switch len(ids) {
	case 0:
		return nil, errNoResult()
	case 1:
		return qs.coll.Get(ctx, ids[0])
	default:
		return nil, errMultipleResults(len(ids))
	}
}

func (q *QuerySet) resolve(ctx context.Context) ([]string, error) {
	if q.resolved {
		return q.ids, nil
	}

	var result map[string]struct{}
	h := q.coll.handler
	for _, term := range q.terms {
		spec := q.coll.schema.Field(term.field)
		value := term.value
		// query patterns and exact values are case-folded like index keys;
		// fields the schema does not know still fold, they just resolve to
		// an empty entry set
		if spec == nil || spec.Fold() {
			value = strings.ToLower(value)
		}

		var (
			ids []string
			err error
		)
		if h.IsWildcard(term.value) {
			ids, err = h.IndexScan(ctx, term.field, value)
		} else {
			ids, err = h.IndexLookup(ctx, term.field, value)
		}
		if err != nil {
			return nil, err
		}

		if result == nil {
			result = make(map[string]struct{}, len(ids))
			for _, id := range ids {
				result[id] = struct{}{}
			}
			continue
		}
		kept := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := result[id]; ok {
				kept[id] = struct{}{}
			}
		}
		result = kept
	}

	q.ids = make([]string, 0, len(result))
	for id := range result {
		q.ids = append(q.ids, id)
	}
	sort.Strings(q.ids)
	q.resolved = true
	metrics.QueryResolutions.WithLabelValues(q.coll.schema.name).Inc()
	return q.ids, nil
}
