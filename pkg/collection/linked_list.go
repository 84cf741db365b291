package collection

import (
	"iter"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

// Element is the handle returned by LinkedList.Add.
type Element[T any] struct {
	Value T

	prev, next *Element[T]
	list       *LinkedList[T]
}

// Next returns the following element, or nil at the end of the list.
func (e *Element[T]) Next() *Element[T] {
	return e.next
}

// LinkedList is a doubly-linked list of values.
type LinkedList[T any] struct {
	head, tail *Element[T]
	size       int
}

// NewLinkedList creates an empty list.
func NewLinkedList[T any]() *LinkedList[T] {
	return &LinkedList[T]{}
}

// Add appends v and returns its element handle.
func (l *LinkedList[T]) Add(v T) *Element[T] {
	e := &Element[T]{Value: v, prev: l.tail, list: l}
	if l.tail == nil {
		l.head = e
	} else {
		l.tail.next = e
	}
	l.tail = e
	l.size++
	return e
}

// Remove unlinks e. Removing an element that does not belong to this list,
// or removing it twice, panics with ERR_502.
func (l *LinkedList[T]) Remove(e *Element[T]) {
	if e == nil || e.list != l {
		errors.ImpossibleState("element is not in this list (already removed?)")
	}
	if e.prev == nil {
		l.head = e.next
	} else {
		e.prev.next = e.next
	}
	if e.next == nil {
		l.tail = e.prev
	} else {
		e.next.prev = e.prev
	}
	e.prev, e.next, e.list = nil, nil, nil
	l.size--
}

// Len returns the number of elements.
func (l *LinkedList[T]) Len() int {
	return l.size
}

// IsEmpty reports whether the list has no elements.
func (l *LinkedList[T]) IsEmpty() bool {
	return l.size == 0
}

// First returns the head element, or nil when empty.
func (l *LinkedList[T]) First() *Element[T] {
	return l.head
}

// ForEach visits every value in insertion order.
func (l *LinkedList[T]) ForEach(fn func(T)) {
	for e := l.head; e != nil; e = e.next {
		fn(e.Value)
	}
}

// All returns an iterator over the values in insertion order.
func (l *LinkedList[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for e := l.head; e != nil; {
			next := e.next
			if !yield(e.Value) {
				return
			}
			e = next
		}
	}
}
