package kev

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grimmjow8/kev/backend"
	"github.com/grimmjow8/kev/backend/memorydb"
	"github.com/grimmjow8/kev/backend/objectdb"
)

func TestQueryNonUniqueFilter(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	n, err := coll.Objects().Filter(map[string]string{"city": "durham"}).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestQueryNonUniqueWildcardFilter(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	exact, err := coll.Objects().Filter(map[string]string{"city": "durham"}).IDs(ctx)
	require.NoError(t, err)
	wild, err := coll.Objects().Filter(map[string]string{"city": "du*ham"}).IDs(ctx)
	require.NoError(t, err)
	require.Equal(t, exact, wild)
	require.Len(t, wild, 2)
}

func TestQueryGetSingleIndexedField(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	t1, _, _ := seedSlugDocs(t, coll)

	obj, err := coll.Objects().Get(ctx, map[string]string{"name": t1.String("name")})
	require.NoError(t, err)
	require.Equal(t, t1.String("slug"), obj.String("slug"))
}

func TestQueryChaining(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	t1, _, _ := seedSlugDocs(t, coll)

	qs := coll.Objects().
		Filter(map[string]string{"name": "Goo and Sons"}).
		Filter(map[string]string{"city": "Durham"})
	n, err := qs.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	doc, err := qs.At(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, t1.String("name"), doc.String("name"))
}

func TestQueryWildcardChaining(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	t1, _, _ := seedSlugDocs(t, coll)

	qs := coll.Objects().
		Filter(map[string]string{"name": "Goo*"}).
		Filter(map[string]string{"city": "Du*ham"})
	n, err := qs.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	doc, err := qs.At(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, t1.String("name"), doc.String("name"))
}

func TestQueryChainingMatchesManualIntersection(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	left, err := coll.Objects().Filter(map[string]string{"city": "durham"}).IDs(ctx)
	require.NoError(t, err)
	right, err := coll.Objects().Filter(map[string]string{"name": "goo and sons"}).IDs(ctx)
	require.NoError(t, err)
	both, err := coll.Objects().
		Filter(map[string]string{"city": "durham"}).
		Filter(map[string]string{"name": "goo and sons"}).IDs(ctx)
	require.NoError(t, err)

	want := intersect(left, right)
	require.Equal(t, want, both)
}

func TestQueryFilterDoesNotMutateReceiver(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	base := coll.Objects().Filter(map[string]string{"city": "durham"})
	narrowed := base.Filter(map[string]string{"name": "Goo and Sons"})

	n, err := base.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = narrowed.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestQueryIteration(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	docs, err := coll.Objects().Filter(map[string]string{"city": "durham"}).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		require.NotEmpty(t, d.ID())
	}

	docs, err = coll.Objects().Filter(map[string]string{"city": "du*ham"}).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		require.NotEmpty(t, d.ID())
	}
}

func TestQueryGetNoResult(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	_, err := coll.Objects().Get(ctx, map[string]string{"username": "affsdfadsf"})
	require.EqualError(t, err, "This query did not return a result.")

	_, err = coll.Objects().Get(ctx, map[string]string{"username": "affsd*adsf"})
	require.EqualError(t, err, "This query did not return a result.")

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
}

func TestQueryGetMultipleResults(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	_, err := coll.Objects().Get(ctx, map[string]string{"city": "durham"})
	require.EqualError(t, err,
		"This query should return exactly one result. Your query returned 2")
}

func TestQueryAllAndFlush(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	docs, err := coll.All(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	require.NoError(t, coll.FlushDB(ctx))

	docs, err = coll.All(ctx)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestQueryDeleteShrinksFilter(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), memorydb.New())
	seedSlugDocs(t, coll)

	qs := coll.Objects().Filter(map[string]string{"city": "durham"})
	n, err := qs.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	victim, err := qs.At(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, coll.Delete(ctx, victim))

	// a resolved set is cached for its own lifetime; re-query to observe
	n, err = coll.Objects().Filter(map[string]string{"city": "durham"}).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestQueryWildcardOnIncapableBackend(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection(slugSchema(t), objectdb.New(objectdb.NewMemoryStore(), "testdocumentslug"))
	seedSlugDocs(t, coll)

	// exact filters work fine on the object store
	n, err := coll.Objects().Filter(map[string]string{"city": "durham"}).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// chaining a wildcard filter raises a capability error, not an empty set
	_, err = coll.Objects().
		Filter(map[string]string{"name": "Goo and Sons"}).
		Filter(map[string]string{"city": "Du*ham"}).Count(ctx)
	var cerr *backend.CapabilityError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "object", cerr.Backend)
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	out := []string{}
	for _, id := range b {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
