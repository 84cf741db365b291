package keys

import (
	"fmt"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

// Retriever returns the sub-key that belongs to one level of an index chain.
type Retriever func(key any) any

// Single is the retriever for a chain with exactly one level: the whole key is
// the sub-key.
func Single() Retriever {
	return func(key any) any { return key }
}

// At returns a retriever that unpacks position from a composite key.
func At(position int) Retriever {
	if position < 0 {
		panic(errors.New(errors.ErrCodeKeyOutOfRange,
			fmt.Sprintf("negative key position %d", position), nil))
	}
	return func(key any) any {
		c, ok := key.(Composite)
		if !ok {
			panic(errors.New(errors.ErrCodeKeyOutOfRange,
				fmt.Sprintf("key %v has arity %d, position %d requested", key, Len(key), position), nil))
		}
		return c.Get(position)
	}
}

// ForLevel picks Single when the chain has one level and At otherwise.
func ForLevel(position, levels int) Retriever {
	if levels == 1 && position == 0 {
		return Single()
	}
	return At(position)
}
