// Package casing rewrites map keys of document-like values between
// snake_case and camelCase.
package casing

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"
)

var (
	snakePattern = regexp.MustCompile(`^[a-z]+(_[a-z0-9]+)*$`)
	camelPattern = regexp.MustCompile(`^[a-z]+([A-Z][a-z0-9]*)*$`)
)

// SnakeKey converts a camelCase key to snake_case. Keys of any other shape
// are returned unchanged.
func SnakeKey(key string) string {
	if !camelPattern.MatchString(key) {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelKey converts a snake_case key to camelCase. Keys of any other shape
// are returned unchanged.
func CamelKey(key string) string {
	if !snakePattern.MatchString(key) {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.Grow(len(key))
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// ToSnake returns a copy of v with every map key converted to snake_case.
// When two keys of one map convert to the same key, as fooBar and foo_bar do,
// the value of the key that was already snake_case is kept.
func ToSnake(v any) any {
	return transform(v, SnakeKey)
}

// ToCamel returns a copy of v with every map key converted to camelCase.
// Colliding keys resolve as in ToSnake, in favour of the camelCase original.
func ToCamel(v any) any {
	return transform(v, CamelKey)
}

// transform walks maps and slices depth-first. String-keyed maps of any
// named type come back as map[string]any and slices as []any.
func transform(v any, key func(string) string) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			put(out, k, val, key)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = transform(val, key)
		}
		return out
	case string, bool, float64, float32, int, int32, int64, []byte:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			put(out, iter.Key().String(), iter.Value().Interface(), key)
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = transform(rv.Index(i).Interface(), key)
		}
		return out
	default:
		return v
	}
}

// put stores val under the converted key. A converted key never overwrites
// one that arrived in its final form.
func put(out map[string]any, k string, val any, key func(string) string) {
	nk := key(k)
	if _, taken := out[nk]; taken && nk != k {
		return
	}
	out[nk] = transform(val, key)
}
