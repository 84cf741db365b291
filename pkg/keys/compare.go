package keys

import (
	"cmp"
	"fmt"
	"reflect"
	"time"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

// Comparable lets domain types define their own order for comparison joins.
type Comparable interface {
	Compare(other any) int
}

// Comparator orders two sub-keys; negative means a sorts before b.
type Comparator func(a, b any) int

// Compare orders keys by their natural order. Null sorts before every value;
// composites compare element-wise. Values of different kinds, or of kinds
// without a natural order, panic with ERR_402.
func Compare(a, b any) int {
	if a == Null || a == nil {
		if b == Null || b == nil {
			return 0
		}
		return -1
	}
	if b == Null || b == nil {
		return 1
	}

	switch x := a.(type) {
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case int32:
		if y, ok := b.(int32); ok {
			return cmp.Compare(x, y)
		}
	case uint64:
		if y, ok := b.(uint64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBool(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return cmp.Compare(x, y)
		}
	case Comparable:
		return x.Compare(b)
	case Composite:
		if y, ok := b.(Composite); ok {
			return compareComposite(x, y)
		}
	}
	return compareReflect(a, b)
}

// Reverse flips a comparator.
func Reverse(c Comparator) Comparator {
	return func(a, b any) int { return c(b, a) }
}

func compareBool(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}

func compareComposite(x, y Composite) int {
	n := min(x.Len(), y.Len())
	for i := 0; i < n; i++ {
		if c := Compare(x.Get(i), y.Get(i)); c != 0 {
			return c
		}
	}
	return cmp.Compare(x.Len(), y.Len())
}

// compareReflect covers named numeric and string types (type Minute int).
func compareReflect(a, b any) int {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == vb.Kind() {
		switch va.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(va.Int(), vb.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(va.Uint(), vb.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(va.Float(), vb.Float())
		case reflect.String:
			return cmp.Compare(va.String(), vb.String())
		}
	}
	panic(errors.New(errors.ErrCodeUnorderedKey,
		fmt.Sprintf("cannot order %T against %T", a, b), nil).
		WithSuggestion("implement keys.Comparable or pass a comparator to the joiner"))
}
