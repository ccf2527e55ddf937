// Package attrs reads values back out of slog-style key/value argument lists.
package attrs

// ExtractString returns the string value paired with key in kv, laid out as
// [k1, v1, k2, v2, ...]. A missing key or a non-string value yields "".
// When a key repeats, the last pair wins, matching slog's rendering.
func ExtractString(kv []any, key string) string {
	var out string
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); !ok || k != key {
			continue
		}
		if v, ok := kv[i+1].(string); ok {
			out = v
		}
	}
	return out
}
