package kev

// End-to-end query coverage against the real backend families: pure
// key-value (Redis via miniredis) and hybrid (object medium for documents,
// Redis for indexes). The same suite runs against both so query semantics
// cannot drift between stores.

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/grimmjow8/kev/backend/hybriddb"
	"github.com/grimmjow8/kev/backend/objectdb"
	"github.com/grimmjow8/kev/backend/redisdb"
)

func newRedisCollection(t *testing.T) *Collection {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCollection(slugSchema(t), redisdb.New(client, "testdocumentslug"))
}

func newHybridCollection(t *testing.T) *Collection {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	h := hybriddb.New(objectdb.NewMemoryStore(), client, "testdocumentslug")
	return NewCollection(slugSchema(t), h)
}

func runQuerySuite(t *testing.T, coll *Collection) {
	ctx := context.Background()
	t1, _, _ := seedSlugDocs(t, coll)

	t.Run("non unique filter", func(t *testing.T) {
		n, err := coll.Objects().Filter(map[string]string{"city": "durham"}).Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("wildcard filter matches exact set", func(t *testing.T) {
		exact, err := coll.Objects().Filter(map[string]string{"city": "durham"}).IDs(ctx)
		require.NoError(t, err)
		wild, err := coll.Objects().Filter(map[string]string{"city": "du*ham"}).IDs(ctx)
		require.NoError(t, err)
		require.Equal(t, exact, wild)
	})

	t.Run("get by unique field", func(t *testing.T) {
		obj, err := coll.Objects().Get(ctx, map[string]string{"name": t1.String("name")})
		require.NoError(t, err)
		require.Equal(t, t1.String("slug"), obj.String("slug"))
	})

	t.Run("chaining", func(t *testing.T) {
		qs := coll.Objects().
			Filter(map[string]string{"name": "Goo and Sons"}).
			Filter(map[string]string{"city": "Durham"})
		n, err := qs.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("wildcard chaining", func(t *testing.T) {
		qs := coll.Objects().
			Filter(map[string]string{"name": "Goo*"}).
			Filter(map[string]string{"city": "Du*ham"})
		n, err := qs.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		doc, err := qs.At(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, t1.String("name"), doc.String("name"))
	})

	t.Run("get errors", func(t *testing.T) {
		_, err := coll.Objects().Get(ctx, map[string]string{"username": "affsdfadsf"})
		require.EqualError(t, err, "This query did not return a result.")

		_, err = coll.Objects().Get(ctx, map[string]string{"city": "durham"})
		require.EqualError(t, err,
			"This query should return exactly one result. Your query returned 2")
	})

	t.Run("delete shrinks filter", func(t *testing.T) {
		victim, err := coll.Objects().Filter(map[string]string{"city": "durham"}).At(ctx, 0)
		require.NoError(t, err)
		require.NoError(t, coll.Delete(ctx, victim))

		n, err := coll.Objects().Filter(map[string]string{"city": "durham"}).Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("all and flush", func(t *testing.T) {
		docs, err := coll.All(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2) // one was deleted above

		require.NoError(t, coll.FlushDB(ctx))
		docs, err = coll.All(ctx)
		require.NoError(t, err)
		require.Empty(t, docs)
	})
}

func TestRedisBackendQueries(t *testing.T) {
	runQuerySuite(t, newRedisCollection(t))
}

func TestHybridBackendQueries(t *testing.T) {
	runQuerySuite(t, newHybridCollection(t))
}

func TestHybridStoresDocumentsInObjectMedium(t *testing.T) {
	ctx := context.Background()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })

	store := objectdb.NewMemoryStore()
	coll := NewCollection(slugSchema(t), hybriddb.New(store, client, "testdocumentslug"))
	t1, _, _ := seedSlugDocs(t, coll)

	// the raw document lives in the object medium
	keys, err := store.List(ctx, "testdocumentslug/id/")
	require.NoError(t, err)
	require.Len(t, keys, 3)

	// while the index entries live in redis
	members, err := client.SMembers(ctx, "testdocumentslug:indexes:city:durham").Result()
	require.NoError(t, err)
	require.Contains(t, members, t1.ID())
}

func TestRedisBackendUniqueness(t *testing.T) {
	ctx := context.Background()
	coll := newRedisCollection(t)
	seedSlugDocs(t, coll)

	dup := coll.New(map[string]any{
		"name": "Goo and Sons", "slug": "other-slug", "gpa": 3.0,
		"email": "other@sons.com", "city": "Raleigh",
	})
	err := coll.Save(ctx, dup)
	require.EqualError(t, err, "There is already a name with the value of Goo and Sons")
	var uerr *UniquenessError
	require.ErrorAs(t, err, &uerr)
}
