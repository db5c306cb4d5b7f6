// Package merge combines operation schema fragments from multiple sources
// into a single descriptor fragment.
//
// Fragments are plain JSON trees (map[string]any). Precedence is fixed:
// override beats explicit beats inferred beats base. The three lower
// sources merge structurally; the override source is destructive and may
// delete keys by setting them to null. Inputs are never mutated, and
// merging is idempotent: feeding a merged fragment back through Merge
// yields an equal fragment.
package merge

// Merge combines four fragments in ascending precedence. Any input may be
// nil. The result is always a fresh tree sharing no containers with the
// inputs.
func Merge(base, inferred, explicit, override map[string]any) map[string]any {
	out := cloneMap(base)
	out = apply(out, inferred, false)
	out = apply(out, explicit, false)
	out = apply(out, override, true)
	cleanupMap(out)
	return out
}

// Apply layers src over dst structurally: nested objects merge key by key,
// arrays replace wholesale, scalars from src win. Neither input is mutated.
func Apply(dst, src map[string]any) map[string]any {
	out := apply(cloneMap(dst), src, false)
	cleanupMap(out)
	return out
}

// ApplyOverride is Apply with delete semantics: a null value in src removes
// the key from the result instead of setting it.
func ApplyOverride(dst, src map[string]any) map[string]any {
	out := apply(cloneMap(dst), src, true)
	cleanupMap(out)
	return out
}

// apply merges src into dst in place. dst must be owned by the caller.
func apply(dst, src map[string]any, destructive bool) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if v == nil {
			if destructive {
				delete(dst, k)
			} else {
				dst[k] = nil
			}
			continue
		}
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				dst[k] = apply(dm, sm, destructive)
				continue
			}
			dst[k] = apply(make(map[string]any, len(sm)), sm, destructive)
			continue
		}
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// cleanupMap normalizes a merged tree in place: residual nulls are dropped
// and arrays of scalars are deduplicated, first occurrence winning. Arrays
// of objects are left alone.
func cleanupMap(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			cleanupMap(t)
		case []any:
			m[k] = cleanupSlice(t)
		}
	}
}

func cleanupSlice(s []any) []any {
	allScalar := true
	for i, e := range s {
		switch t := e.(type) {
		case map[string]any:
			cleanupMap(t)
			allScalar = false
		case []any:
			s[i] = cleanupSlice(t)
			allScalar = false
		}
	}
	if !allScalar {
		return s
	}
	seen := make(map[any]bool, len(s))
	out := s[:0]
	for _, e := range s {
		if e == nil || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
