package keys

import "reflect"

// Sequence is implemented by collection types that can list their elements
// without exposing a slice.
type Sequence interface {
	Elements() []any
}

// Elements returns the distinct elements of a set-membership key, in
// first-seen order. It accepts Sequence, []any, map[K]struct{}/map[K]bool
// style sets and any other slice or array. A non-collection key is treated as
// a collection of one. Nil and Null are empty collections; a nil element is
// reported as Null.
func Elements(key any) []any {
	var raw []any
	switch c := key.(type) {
	case nil, nullKey:
		return nil
	case Sequence:
		raw = c.Elements()
	case []any:
		raw = c
	case []string:
		raw = make([]any, len(c))
		for i, s := range c {
			raw[i] = s
		}
	case []int:
		raw = make([]any, len(c))
		for i, v := range c {
			raw[i] = v
		}
	default:
		raw = reflectElements(key)
	}
	return distinct(nullSafe(raw))
}

func nullSafe(raw []any) []any {
	for i, e := range raw {
		if e != nil {
			continue
		}
		out := make([]any, len(raw))
		copy(out, raw)
		for j := i; j < len(out); j++ {
			if out[j] == nil {
				out[j] = Null
			}
		}
		return out
	}
	return raw
}

func reflectElements(key any) []any {
	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = v.Index(i).Interface()
		}
		return out
	case reflect.Map:
		out := make([]any, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if iter.Value().Kind() == reflect.Bool && !iter.Value().Bool() {
				continue
			}
			out = append(out, iter.Key().Interface())
		}
		return out
	default:
		return []any{key}
	}
}

func distinct(raw []any) []any {
	switch len(raw) {
	case 0, 1:
		return raw
	case 2:
		if raw[0] == raw[1] {
			return raw[:1]
		}
		return raw
	}
	seen := make(map[any]struct{}, len(raw))
	out := make([]any, 0, len(raw))
	for _, e := range raw {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
