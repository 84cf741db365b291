package collection

import (
	"iter"
	"math/rand/v2"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

// Compaction thresholds. A read compacts opportunistically only while both hold.
const (
	// MinimumGapCount is the number of tombstones below which reads never compact.
	MinimumGapCount = 10
	// GapRatio is the tombstone to live-element ratio above which reads compact.
	GapRatio = 0.1
)

// IndexedSet is an array-backed set with O(1) removal through a
// PositionTracker. The zero value of T marks a tombstone, so the zero value
// cannot be stored; elements are usually pointers.
type IndexedSet[T comparable] struct {
	tracker  PositionTracker[T]
	elements []T
	gapCount int
}

// NewIndexedSet creates an empty set using tracker to record slots.
func NewIndexedSet[T comparable](tracker PositionTracker[T]) *IndexedSet[T] {
	return &IndexedSet[T]{tracker: tracker}
}

// Add appends element. Adding the zero value, or an element whose tracker
// already holds a position, panics.
func (s *IndexedSet[T]) Add(element T) {
	var zero T
	if element == zero {
		panic(errors.New(errors.ErrCodeInvalidInput, "indexed set cannot store the zero value", nil))
	}
	if previous := s.tracker.Set(element, len(s.elements)); previous >= 0 {
		s.tracker.Set(element, previous)
		errors.ImpossibleState("element already stored at position %d", previous)
	}
	s.elements = append(s.elements, element)
}

// Remove deletes element and reports whether it was present. A removed slot
// becomes a tombstone unless it was the last one.
func (s *IndexedSet[T]) Remove(element T) bool {
	position := s.tracker.Clear(element)
	if position < 0 {
		return false
	}
	if position >= len(s.elements) || s.elements[position] != element {
		errors.ImpossibleState("tracker position %d does not hold the element", position)
	}

	var zero T
	last := len(s.elements) - 1
	if position == last {
		s.elements[last] = zero
		s.elements = s.elements[:last]
	} else {
		s.elements[position] = zero
		s.gapCount++
	}
	if s.gapCount == len(s.elements) {
		s.reset()
	}
	return true
}

// Contains reports whether element is currently stored.
func (s *IndexedSet[T]) Contains(element T) bool {
	position := s.tracker.Get(element)
	return position >= 0 && position < len(s.elements) && s.elements[position] == element
}

// Size returns the number of live elements.
func (s *IndexedSet[T]) Size() int {
	return len(s.elements) - s.gapCount
}

// IsEmpty reports whether no live element remains.
func (s *IndexedSet[T]) IsEmpty() bool {
	return s.Size() == 0
}

// Gaps returns the current tombstone count.
func (s *IndexedSet[T]) Gaps() int {
	return s.gapCount
}

// ForEach visits every live element in no guaranteed order.
func (s *IndexedSet[T]) ForEach(fn func(T)) {
	if s.gapCount == 0 {
		for _, e := range s.elements {
			fn(e)
		}
		return
	}
	s.walk(func(e T) bool {
		fn(e)
		return true
	})
}

// All returns an iterator over the live elements.
func (s *IndexedSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s.gapCount == 0 {
			for _, e := range s.elements {
				if !yield(e) {
					return
				}
			}
			return
		}
		s.walk(yield)
	}
}

// FindFirst returns the first live element matching pred in back-to-front
// order, compacting opportunistically on the way.
func (s *IndexedSet[T]) FindFirst(pred func(T) bool) (T, bool) {
	var found T
	ok := false
	s.walk(func(e T) bool {
		if pred(e) {
			found, ok = e, true
			return false
		}
		return true
	})
	return found, ok
}

// AsList compacts every tombstone away and returns the backing slice. The
// slice is a view: it is valid until the next mutation and must not be
// modified.
func (s *IndexedSet[T]) AsList() []T {
	s.compact()
	return s.elements
}

// Get returns the live element at position i of the compacted list.
func (s *IndexedSet[T]) Get(i int) T {
	s.compact()
	if i < 0 || i >= len(s.elements) {
		panic(errors.New(errors.ErrCodeKeyOutOfRange, "indexed set position out of range", nil))
	}
	return s.elements[i]
}

// RandomSequence yields live elements in random order without repetition.
func (s *IndexedSet[T]) RandomSequence(rng *rand.Rand) iter.Seq[T] {
	return func(yield func(T) bool) {
		s.compact()
		for i := range RandomIndices(len(s.elements), rng) {
			if !yield(s.elements[i]) {
				return
			}
		}
	}
}

// Clear removes every element and resets their tracked positions.
func (s *IndexedSet[T]) Clear() {
	var zero T
	for _, e := range s.elements {
		if e != zero {
			s.tracker.Clear(e)
		}
	}
	s.reset()
}

// walk visits live elements back to front. While the gap thresholds hold, each
// tombstone met on the way is filled with the tail element, which has already
// been visited.
func (s *IndexedSet[T]) walk(visit func(T) bool) {
	var zero T
	for i := len(s.elements) - 1; i >= 0; i-- {
		if i >= len(s.elements) {
			continue
		}
		e := s.elements[i]
		if e == zero {
			if s.shouldCompact() {
				s.fillGap(i)
			}
			continue
		}
		if !visit(e) {
			return
		}
	}
}

func (s *IndexedSet[T]) shouldCompact() bool {
	if s.gapCount < MinimumGapCount {
		return false
	}
	live := s.Size()
	return live == 0 || float64(s.gapCount)/float64(live) > GapRatio
}

func (s *IndexedSet[T]) compact() {
	if s.gapCount == 0 {
		return
	}
	var zero T
	for i := len(s.elements) - 1; i >= 0 && s.gapCount > 0; i-- {
		if i < len(s.elements) && s.elements[i] == zero {
			s.fillGap(i)
		}
	}
}

// fillGap moves the last live element into the tombstone at i, dropping any
// trailing tombstones first. If i itself becomes the tail it is truncated.
func (s *IndexedSet[T]) fillGap(i int) {
	var zero T
	last := len(s.elements) - 1
	for last > i && s.elements[last] == zero {
		s.elements = s.elements[:last]
		s.gapCount--
		last--
	}
	if last == i {
		s.elements = s.elements[:i]
		s.gapCount--
		return
	}
	moved := s.elements[last]
	s.elements[i] = moved
	s.elements[last] = zero
	s.elements = s.elements[:last]
	s.gapCount--
	s.tracker.Set(moved, i)
}

func (s *IndexedSet[T]) reset() {
	clear(s.elements)
	s.elements = s.elements[:0]
	s.gapCount = 0
}
