package kev

// CombineLists concatenates two ordered sequences, preserving order.
func CombineLists(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// CombineDicts merges two field mappings. Keys present in both become an
// ordered pair [value from a, value from b]; keys present in only one pass
// through unchanged.
func CombineDicts(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if av, ok := out[k]; ok {
			out[k] = []any{av, v}
			continue
		}
		out[k] = v
	}
	return out
}
