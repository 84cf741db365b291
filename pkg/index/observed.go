package index

import (
	"iter"
	"time"
)

// Op names an indexer operation in an Event.
type Op string

const (
	OpPut      Op = "put"
	OpRemove   Op = "remove"
	OpSize     Op = "size"
	OpForEach  Op = "for_each"
	OpIterator Op = "iterator"
	OpGet      Op = "get"
)

// Event describes one completed operation on an observed chain.
type Event struct {
	Chain   string
	Op      Op
	Key     any
	Matches int
	Elapsed time.Duration
}

// Observer receives events from an observed chain. It runs on the chain's
// goroutine and must not call back into the chain.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type observed[T comparable] struct {
	inner    Indexer[T]
	name     string
	observer Observer
}

// Observe wraps a chain so that every operation is reported to o under name.
// Operations that panic are not reported.
func Observe[T comparable](inner Indexer[T], name string, o Observer) Indexer[T] {
	return &observed[T]{inner: inner, name: name, observer: o}
}

func (o *observed[T]) report(op Op, key any, matches int, start time.Time) {
	o.observer.Observe(Event{
		Chain:   o.name,
		Op:      op,
		Key:     key,
		Matches: matches,
		Elapsed: time.Since(start),
	})
}

func (o *observed[T]) Put(key any, tuple T) Entry {
	start := time.Now()
	entry := o.inner.Put(key, tuple)
	o.report(OpPut, key, 1, start)
	return entry
}

func (o *observed[T]) Remove(key any, entry Entry) {
	start := time.Now()
	o.inner.Remove(key, entry)
	o.report(OpRemove, key, 1, start)
}

func (o *observed[T]) Size(key any) int {
	start := time.Now()
	n := o.inner.Size(key)
	o.report(OpSize, key, n, start)
	return n
}

func (o *observed[T]) ForEach(key any, fn func(T)) {
	start := time.Now()
	n := 0
	o.inner.ForEach(key, func(t T) {
		n++
		fn(t)
	})
	o.report(OpForEach, key, n, start)
}

func (o *observed[T]) Iterator(key any) iter.Seq[T] {
	return func(yield func(T) bool) {
		start := time.Now()
		n := 0
		defer func() { o.report(OpIterator, key, n, start) }()
		for t := range o.inner.Iterator(key) {
			n++
			if !yield(t) {
				return
			}
		}
	}
}

func (o *observed[T]) Get(key any, i int) T {
	start := time.Now()
	t := o.inner.Get(key, i)
	o.report(OpGet, key, 1, start)
	return t
}

func (o *observed[T]) IsEmpty() bool     { return o.inner.IsEmpty() }
func (o *observed[T]) IsRemovable() bool { return o.inner.IsRemovable() }
func (o *observed[T]) String() string    { return o.inner.String() }
func (o *observed[T]) indexer()          {}
