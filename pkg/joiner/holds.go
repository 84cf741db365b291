package joiner

import (
	"github.com/Aman-CERP/joinindex/pkg/keys"
)

// Holds evaluates "stored <t> query" without an index. A nil comparator means
// keys.Compare.
func (t Type) Holds(stored, query any, c keys.Comparator) bool {
	if c == nil {
		c = keys.Compare
	}
	switch t {
	case Equal:
		return normalize(stored) == normalize(query)
	case LessThan:
		return c(stored, query) < 0
	case LessOrEqual:
		return c(stored, query) <= 0
	case GreaterThan:
		return c(stored, query) > 0
	case GreaterOrEqual:
		return c(stored, query) >= 0
	case Containing:
		return contains(keys.Elements(stored), normalize(query))
	case ContainedIn:
		return contains(keys.Elements(query), normalize(stored))
	case ContainingAnyOf:
		for _, e := range keys.Elements(stored) {
			if contains(keys.Elements(query), normalize(e)) {
				return true
			}
		}
		return false
	}
	return false
}

func contains(elements []any, v any) bool {
	for _, e := range elements {
		if normalize(e) == v {
			return true
		}
	}
	return false
}

func normalize(v any) any {
	if v == nil {
		return keys.Null
	}
	return v
}
