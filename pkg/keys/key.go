package keys

import (
	"fmt"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

// Composite is implemented by every multi-value key shape.
type Composite interface {
	// Len returns the number of values held by the key.
	Len() int
	// Get returns the value at position i. It panics with ERR_504 when i is
	// outside [0, Len()).
	Get(i int) any
}

type noneKey struct{}

func (noneKey) String() string { return "None" }

type nullKey struct{}

func (nullKey) String() string { return "Null" }

var (
	// None is the key of a join that extracts no values.
	None any = noneKey{}

	// Null is the key of a join that extracts exactly one value which is nil.
	Null any = nullKey{}
)

// Pair is a two-value composite key.
type Pair struct {
	A, B any
}

func (k Pair) Len() int { return 2 }

func (k Pair) Get(i int) any {
	switch i {
	case 0:
		return k.A
	case 1:
		return k.B
	}
	outOfRange(i, 2)
	return nil
}

func (k Pair) String() string { return fmt.Sprintf("[%v, %v]", k.A, k.B) }

// Triple is a three-value composite key.
type Triple struct {
	A, B, C any
}

func (k Triple) Len() int { return 3 }

func (k Triple) Get(i int) any {
	switch i {
	case 0:
		return k.A
	case 1:
		return k.B
	case 2:
		return k.C
	}
	outOfRange(i, 3)
	return nil
}

func (k Triple) String() string { return fmt.Sprintf("[%v, %v, %v]", k.A, k.B, k.C) }

// Quad is a four-value composite key.
type Quad struct {
	A, B, C, D any
}

func (k Quad) Len() int { return 4 }

func (k Quad) Get(i int) any {
	switch i {
	case 0:
		return k.A
	case 1:
		return k.B
	case 2:
		return k.C
	case 3:
		return k.D
	}
	outOfRange(i, 4)
	return nil
}

func (k Quad) String() string { return fmt.Sprintf("[%v, %v, %v, %v]", k.A, k.B, k.C, k.D) }

// Many holds five or more values: the first four inline and the rest in a
// nested key built by [OfMany], so the struct stays comparable.
type Many struct {
	head Quad
	tail any
	n    int
}

func (k Many) Len() int { return k.n }

func (k Many) Get(i int) any {
	if i < 0 || i >= k.n {
		outOfRange(i, k.n)
	}
	if i < 4 {
		return k.head.Get(i)
	}
	if k.n == 5 {
		return Unwrap(k.tail)
	}
	return k.tail.(Composite).Get(i - 4)
}

func (k Many) String() string {
	s := "["
	for i := 0; i < k.n; i++ {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(k.Get(i))
	}
	return s + "]"
}

// Of builds the key for the given extracted values.
func Of(values ...any) any {
	return OfMany(values)
}

// OfMany builds the key for a slice of extracted values. The slice is not
// retained.
func OfMany(values []any) any {
	switch len(values) {
	case 0:
		return None
	case 1:
		if values[0] == nil {
			return Null
		}
		return values[0]
	case 2:
		return Pair{values[0], values[1]}
	case 3:
		return Triple{values[0], values[1], values[2]}
	case 4:
		return Quad{values[0], values[1], values[2], values[3]}
	default:
		return Many{
			head: Quad{values[0], values[1], values[2], values[3]},
			tail: OfMany(values[4:]),
			n:    len(values),
		}
	}
}

// Unwrap maps Null back to nil and returns every other key unchanged.
func Unwrap(key any) any {
	if key == Null {
		return nil
	}
	return key
}

// Len returns the number of values in key: 0 for None, 1 for a single value
// (including Null) and Composite.Len() otherwise.
func Len(key any) int {
	switch k := key.(type) {
	case noneKey:
		return 0
	case Composite:
		return k.Len()
	default:
		return 1
	}
}

func outOfRange(i, n int) {
	panic(errors.New(errors.ErrCodeKeyOutOfRange,
		fmt.Sprintf("key position %d out of range for arity %d", i, n), nil))
}
