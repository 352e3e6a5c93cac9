package kev

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grimmjow8/kev/field"
)

// base fixture mirroring a small account-style document type
func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema("testdocument",
		field.Char("name", field.Opts{Required: true, Unique: true, MinLength: 5, MaxLength: 20}),
		field.DateTime("last_updated", field.Opts{AutoNow: true}),
		field.Date("date_created", field.Opts{AutoNowAdd: true}),
		field.Bool("is_active", field.Opts{Default: true}),
		field.Int("no_subscriptions", field.Opts{Default: 1, MinValue: field.Bound(1), MaxValue: field.Bound(20)}),
		field.Float("gpa", field.Opts{}),
	)
	require.NoError(t, err)
	return s
}

// slug fixture layering unique slug/email and an indexed city on the base
func slugSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Compose("testdocumentslug", testSchema(t),
		field.Char("slug", field.Opts{Required: true, Unique: true}),
		field.Char("email", field.Opts{Required: true, Unique: true}),
		field.Char("city", field.Opts{Required: true, Index: true}),
	)
	require.NoError(t, err)
	return s
}

// seedSlugDocs saves the three standard fixtures: two Durham, one Charlotte.
func seedSlugDocs(t *testing.T, coll *Collection) (t1, t2, t3 *Document) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, coll.FlushDB(ctx))

	t1 = coll.New(map[string]any{
		"name": "Goo and Sons", "slug": "goo-sons", "gpa": 3.2,
		"email": "goo@sons.com", "city": "Durham",
	})
	require.NoError(t, coll.Save(ctx, t1))

	t2 = coll.New(map[string]any{
		"name": "Great Mountain", "slug": "great-mountain", "gpa": 3.2,
		"email": "great@mountain.com", "city": "Charlotte",
	})
	require.NoError(t, coll.Save(ctx, t2))

	t3 = coll.New(map[string]any{
		"name": "Lakewoood YMCA", "slug": "lakewood-ymca", "gpa": 3.2,
		"email": "lakewood@ymca.com", "city": "Durham",
	})
	require.NoError(t, coll.Save(ctx, t3))
	return t1, t2, t3
}

// collectIDs is shared by the query tests to assert identity sets.
func collectIDs(docs []*Document) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID())
	}
	return ids
}
