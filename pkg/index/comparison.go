package index

import (
	"iter"

	"github.com/google/btree"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/joiner"
	"github.com/Aman-CERP/joinindex/pkg/keys"
)

const btreeDegree = 16

type comparisonBucket[T comparable] struct {
	key        any
	downstream Indexer[T]
}

// comparisonIndexer keeps its buckets ordered so that every qualifying bucket
// comes before every non-qualifying one. For > and >= the order is reversed,
// which puts the large keys first.
type comparisonIndexer[T comparable] struct {
	retriever keys.Retriever
	next      func() Indexer[T]
	order     keys.Comparator
	orEqual   bool
	tree      *btree.BTreeG[*comparisonBucket[T]]
	probe     comparisonBucket[T]
	shape     string
}

func newComparisonIndexer[T comparable](
	t joiner.Type,
	comparator keys.Comparator,
	retriever keys.Retriever,
	next func() Indexer[T],
	shape string,
) *comparisonIndexer[T] {
	if comparator == nil {
		comparator = keys.Compare
	}
	order := comparator
	if t == joiner.GreaterThan || t == joiner.GreaterOrEqual {
		order = keys.Reverse(comparator)
	}
	c := &comparisonIndexer[T]{
		retriever: retriever,
		next:      next,
		order:     order,
		orEqual:   t == joiner.LessOrEqual || t == joiner.GreaterOrEqual,
		shape:     shape,
	}
	c.tree = btree.NewG(btreeDegree, func(a, b *comparisonBucket[T]) bool {
		return order(a.key, b.key) < 0
	})
	return c
}

// qualifies reports whether the bucket at stored matches the query key.
func (c *comparisonIndexer[T]) qualifies(stored, query any) bool {
	cmp := c.order(stored, query)
	return cmp < 0 || (cmp == 0 && c.orEqual)
}

func (c *comparisonIndexer[T]) find(subKey any) (*comparisonBucket[T], bool) {
	c.probe.key = subKey
	b, ok := c.tree.Get(&c.probe)
	c.probe.key = nil
	return b, ok
}

func (c *comparisonIndexer[T]) Put(key any, tuple T) Entry {
	subKey := c.retriever(key)
	b, ok := c.find(subKey)
	if !ok {
		b = &comparisonBucket[T]{key: subKey, downstream: c.next()}
	}
	entry := b.downstream.Put(key, tuple)
	if !ok && !b.downstream.IsRemovable() {
		c.tree.ReplaceOrInsert(b)
	}
	return entry
}

func (c *comparisonIndexer[T]) Remove(key any, entry Entry) {
	subKey := c.retriever(key)
	b, ok := c.find(subKey)
	if !ok {
		if release(entry) {
			return
		}
		errors.ImpossibleState("no bucket for key %v", subKey)
	}
	b.downstream.Remove(key, entry)
	if b.downstream.IsRemovable() {
		c.tree.Delete(b)
	}
}

// each visits qualifying buckets in order and stops at the first miss or when
// visit returns false.
func (c *comparisonIndexer[T]) each(key any, visit func(*comparisonBucket[T]) bool) {
	switch c.tree.Len() {
	case 0:
		return
	case 1:
		b, _ := c.tree.Min()
		if c.qualifies(b.key, c.retriever(key)) {
			visit(b)
		}
		return
	}
	query := c.retriever(key)
	c.tree.Ascend(func(b *comparisonBucket[T]) bool {
		if !c.qualifies(b.key, query) {
			return false
		}
		return visit(b)
	})
}

func (c *comparisonIndexer[T]) Size(key any) int {
	total := 0
	c.each(key, func(b *comparisonBucket[T]) bool {
		total += b.downstream.Size(key)
		return true
	})
	return total
}

func (c *comparisonIndexer[T]) ForEach(key any, fn func(T)) {
	c.each(key, func(b *comparisonBucket[T]) bool {
		b.downstream.ForEach(key, fn)
		return true
	})
}

func (c *comparisonIndexer[T]) Iterator(key any) iter.Seq[T] {
	return func(yield func(T) bool) {
		c.each(key, func(b *comparisonBucket[T]) bool {
			for t := range b.downstream.Iterator(key) {
				if !yield(t) {
					return false
				}
			}
			return true
		})
	}
}

func (c *comparisonIndexer[T]) Get(key any, i int) T {
	var (
		found T
		done  bool
	)
	offset := i
	seen := 0
	if i >= 0 {
		c.each(key, func(b *comparisonBucket[T]) bool {
			size := b.downstream.Size(key)
			if offset < size {
				found, done = b.downstream.Get(key, offset), true
				return false
			}
			offset -= size
			seen += size
			return true
		})
	}
	if !done {
		positionOutOfRange(i, seen)
	}
	return found
}

func (c *comparisonIndexer[T]) IsEmpty() bool     { return c.tree.Len() == 0 }
func (c *comparisonIndexer[T]) IsRemovable() bool { return c.tree.Len() == 0 }
func (c *comparisonIndexer[T]) String() string    { return c.shape }
func (c *comparisonIndexer[T]) indexer()          {}
