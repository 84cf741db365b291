package joiner

import (
	"github.com/Aman-CERP/joinindex/pkg/keys"
)

// Predicate is the untyped part of a joiner: what it compares and how.
type Predicate struct {
	Type Type
	// Comparator orders comparison keys. Nil means keys.Compare.
	Comparator keys.Comparator
}

// Joiner is one predicate together with the key mapping of each side.
type Joiner[L, R any] struct {
	Predicate
	Left  func(L) any
	Right func(R) any
}

// Joiners is an ordered list of predicates between L and R facts.
type Joiners[L, R any] struct {
	joiners []Joiner[L, R]
}

// New starts an empty list.
func New[L, R any]() *Joiners[L, R] {
	return &Joiners[L, R]{}
}

func (j *Joiners[L, R]) add(t Type, left func(L) any, right func(R) any) *Joiners[L, R] {
	j.joiners = append(j.joiners, Joiner[L, R]{
		Predicate: Predicate{Type: t},
		Left:      left,
		Right:     right,
	})
	return j
}

func (j *Joiners[L, R]) Equal(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(Equal, left, right)
}

func (j *Joiners[L, R]) LessThan(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(LessThan, left, right)
}

func (j *Joiners[L, R]) LessOrEqual(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(LessOrEqual, left, right)
}

func (j *Joiners[L, R]) GreaterThan(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(GreaterThan, left, right)
}

func (j *Joiners[L, R]) GreaterOrEqual(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(GreaterOrEqual, left, right)
}

// Containing joins when the left collection contains the right value.
func (j *Joiners[L, R]) Containing(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(Containing, left, right)
}

// ContainedIn joins when the left value is an element of the right collection.
func (j *Joiners[L, R]) ContainedIn(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(ContainedIn, left, right)
}

// ContainingAnyOf joins when the left and right collections share an element.
func (j *Joiners[L, R]) ContainingAnyOf(left func(L) any, right func(R) any) *Joiners[L, R] {
	return j.add(ContainingAnyOf, left, right)
}

// WithComparator sets the comparator of the most recently added joiner.
func (j *Joiners[L, R]) WithComparator(c keys.Comparator) *Joiners[L, R] {
	if n := len(j.joiners); n > 0 {
		j.joiners[n-1].Comparator = c
	}
	return j
}

// Len returns the number of joiners.
func (j *Joiners[L, R]) Len() int {
	return len(j.joiners)
}

// Types returns the predicate types in declaration order.
func (j *Joiners[L, R]) Types() []Type {
	out := make([]Type, len(j.joiners))
	for i, jn := range j.joiners {
		out[i] = jn.Type
	}
	return out
}

// Comparators returns the per-joiner comparators; entries may be nil.
func (j *Joiners[L, R]) Comparators() []keys.Comparator {
	out := make([]keys.Comparator, len(j.joiners))
	for i, jn := range j.joiners {
		out[i] = jn.Comparator
	}
	return out
}

// LeftMappings returns the left key mappings in declaration order.
func (j *Joiners[L, R]) LeftMappings() []func(L) any {
	out := make([]func(L) any, len(j.joiners))
	for i, jn := range j.joiners {
		out[i] = jn.Left
	}
	return out
}

// RightMappings returns the right key mappings in declaration order.
func (j *Joiners[L, R]) RightMappings() []func(R) any {
	out := make([]func(R) any, len(j.joiners))
	for i, jn := range j.joiners {
		out[i] = jn.Right
	}
	return out
}

// Predicates returns the untyped predicate list an index factory compiles.
func (j *Joiners[L, R]) Predicates() []Predicate {
	out := make([]Predicate, len(j.joiners))
	for i, jn := range j.joiners {
		out[i] = jn.Predicate
	}
	return out
}

// Matches evaluates every joiner directly against a pair of facts. It is the
// brute-force reference that indexes are checked against.
func (j *Joiners[L, R]) Matches(left L, right R) bool {
	for _, jn := range j.joiners {
		if !jn.Type.Holds(jn.Left(left), jn.Right(right), jn.Comparator) {
			return false
		}
	}
	return true
}
