package kev

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombineLists(t *testing.T) {
	a := []any{1, 2, 3}
	b := []any{"a", "b", "c"}
	require.Equal(t, []any{1, 2, 3, "a", "b", "c"}, CombineLists(a, b))
}

func TestCombineDicts(t *testing.T) {
	a := map[string]any{"username": "boywonder", "doc_type": "goo"}
	b := map[string]any{"email": "boywonder@superteam.com", "doc_type": "foo"}
	require.Equal(t, map[string]any{
		"username": "boywonder",
		"email":    "boywonder@superteam.com",
		"doc_type": []any{"goo", "foo"},
	}, CombineDicts(a, b))
}

func TestCombineDictsDisjoint(t *testing.T) {
	a := map[string]any{"username": "x"}
	b := map[string]any{"email": "y"}
	require.Equal(t, map[string]any{"username": "x", "email": "y"}, CombineDicts(a, b))
}
