package collection

// Unused is the position of an element that is not stored in any IndexedSet.
const Unused = -1

// PositionTracker stores the slot of each element of an IndexedSet, usually in
// a field of the element itself. Set and Clear are the only ways a position
// changes; both return the previous position or Unused.
type PositionTracker[T any] interface {
	Get(element T) int
	Set(element T, position int) (previous int)
	Clear(element T) (previous int)
}

// FieldTracker reads and writes a position field through accessor funcs.
type FieldTracker[T any] struct {
	get func(T) int
	set func(T, int)
}

// NewFieldTracker builds a tracker over a position field. New elements must
// start with the field set to Unused.
func NewFieldTracker[T any](get func(T) int, set func(T, int)) FieldTracker[T] {
	return FieldTracker[T]{get: get, set: set}
}

func (f FieldTracker[T]) Get(element T) int {
	return f.get(element)
}

func (f FieldTracker[T]) Set(element T, position int) int {
	previous := f.get(element)
	f.set(element, position)
	return previous
}

func (f FieldTracker[T]) Clear(element T) int {
	return f.Set(element, Unused)
}

// MapTracker keeps positions in a side table, for plain data elements that
// have no position field.
type MapTracker[T comparable] struct {
	positions map[T]int
}

// NewMapTracker creates an empty side-table tracker.
func NewMapTracker[T comparable]() *MapTracker[T] {
	return &MapTracker[T]{positions: make(map[T]int)}
}

func (m *MapTracker[T]) Get(element T) int {
	if p, ok := m.positions[element]; ok {
		return p
	}
	return Unused
}

func (m *MapTracker[T]) Set(element T, position int) int {
	previous := m.Get(element)
	m.positions[element] = position
	return previous
}

func (m *MapTracker[T]) Clear(element T) int {
	previous := m.Get(element)
	delete(m.positions, element)
	return previous
}
