// Package joiner describes join predicates between a left and a right fact
// type.
//
// A predicate always reads as "stored key <op> query key" from the point of
// view of the index that stores the left facts. The index for the right side
// uses [Type.Flip] so that the same join can be probed from either direction.
//
// # Usage
//
//	j := joiner.New[Lesson, Lesson]().
//	    Equal(room, room).
//	    LessThan(end, start)
//
//	factory, err := index.NewFactory(j.Predicates())
package joiner
