package index

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/joiner"
	"github.com/Aman-CERP/joinindex/pkg/keys"
)

// Predicate is one join predicate as the factory sees it.
type Predicate = joiner.Predicate

// Side selects which fact type of a join an index stores.
type Side int

const (
	// Left stores left facts and is queried with right keys.
	Left Side = iota
	// Right stores right facts and is queried with left keys. Its predicates
	// are flipped.
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Level is one node of a compiled chain. Consecutive Equal predicates merge
// into a single level whose Width is the run length.
type Level struct {
	Type       joiner.Type
	Width      int
	Comparator keys.Comparator
}

// Factory compiles a predicate list once and builds index chains from it.
//
// A Factory is immutable after NewFactory and may be shared between
// goroutines; the chains it builds may not.
type Factory struct {
	levels  []Level
	width   int
	backend Backend
	logger  *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithBackend selects the terminal store. The default is LinkedBackend.
func WithBackend(b Backend) Option {
	return func(f *Factory) {
		f.backend = b
	}
}

// WithLogger sets the logger used for the compiled plan.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFactory compiles preds into chain levels.
//
// Returns ERR_401 for an unknown predicate type or backend.
func NewFactory(preds []Predicate, opts ...Option) (*Factory, error) {
	f := &Factory{
		backend: LinkedBackend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.backend != LinkedBackend && f.backend != IndexedBackend {
		return nil, errors.ValidationError(fmt.Sprintf("unknown backend %d", int(f.backend)), nil)
	}

	for i, p := range preds {
		if !p.Type.Valid() {
			return nil, errors.ValidationError(fmt.Sprintf("predicate has unknown type %d", int(p.Type)), nil).
				WithDetail("position", strconv.Itoa(i))
		}
		if last := len(f.levels) - 1; p.Type == joiner.Equal && last >= 0 && f.levels[last].Type == joiner.Equal {
			f.levels[last].Width++
			continue
		}
		f.levels = append(f.levels, Level{Type: p.Type, Width: 1, Comparator: p.Comparator})
	}
	f.width = len(preds)

	f.logger.Debug("index_plan_compiled",
		slog.Int("predicates", f.width),
		slog.Int("levels", len(f.levels)),
		slog.String("backend", f.backend.String()),
		slog.String("shape", f.Shape(Left)))

	return f, nil
}

// Levels returns a copy of the compiled levels, outermost first.
func (f *Factory) Levels() []Level {
	out := make([]Level, len(f.levels))
	copy(out, f.levels)
	return out
}

// Backend returns the terminal store kind.
func (f *Factory) Backend() Backend {
	return f.backend
}

// Shape describes the chain Build would produce for side.
func (f *Factory) Shape(side Side) string {
	parts := make([]string, 0, len(f.levels)+1)
	for _, level := range f.levels {
		parts = append(parts, levelShape(level, side))
	}
	parts = append(parts, f.backend.String())
	return strings.Join(parts, " -> ")
}

// SupportsGet reports whether every node of the chain Build would produce for
// side answers Get. Fan-out nodes and the linked terminal do not.
func (f *Factory) SupportsGet(side Side) bool {
	if f.backend != IndexedBackend {
		return false
	}
	for _, level := range f.levels {
		t := level.Type
		if side == Right {
			t = t.Flip()
		}
		if t == joiner.Containing || t == joiner.ContainingAnyOf {
			return false
		}
	}
	return true
}

func levelShape(level Level, side Side) string {
	t := level.Type
	if side == Right {
		t = t.Flip()
	}
	if level.Width > 1 {
		return t.Symbol() + "[" + strconv.Itoa(level.Width) + "]"
	}
	return t.Symbol()
}

// Build creates an empty chain for side. Levels are wired innermost first so
// that each node's supplier closes over the next one.
func Build[T comparable](f *Factory, side Side) Indexer[T] {
	backend := f.backend
	next := func() Indexer[T] { return newTerminal[T](backend) }
	shape := backend.String()

	n := len(f.levels)
	for i := n - 1; i >= 0; i-- {
		level := f.levels[i]
		t := level.Type
		if side == Right {
			t = t.Flip()
		}
		retriever := keys.ForLevel(i, n)
		downstream := next
		shape = levelShape(level, side) + " -> " + shape
		s := shape

		switch {
		case t == joiner.Equal:
			next = func() Indexer[T] { return newEqualIndexer(retriever, downstream, s) }
		case t.IsComparison():
			comparator := level.Comparator
			next = func() Indexer[T] { return newComparisonIndexer(t, comparator, retriever, downstream, s) }
		case t == joiner.Containing:
			next = func() Indexer[T] { return newContainingIndexer(retriever, downstream, s) }
		case t == joiner.ContainedIn:
			next = func() Indexer[T] { return newContainedInIndexer(retriever, downstream, s) }
		case t == joiner.ContainingAnyOf:
			next = func() Indexer[T] { return newContainingAnyOfIndexer(retriever, downstream, s) }
		default:
			errors.ImpossibleState("no node for joiner type %v", t)
		}
	}
	return next()
}

// KeysExtractor returns the function that builds the composite key of a fact
// for this factory's chain. mappings are the per-predicate key functions of
// one side, in declaration order.
//
// Returns ERR_401 when the number of mappings does not match the predicates.
func KeysExtractor[F any](f *Factory, mappings []func(F) any) (func(F) any, error) {
	if len(mappings) != f.width {
		return nil, errors.ValidationError(
			fmt.Sprintf("expected %d key mappings, got %d", f.width, len(mappings)), nil)
	}
	levels := f.Levels()

	switch {
	case len(levels) == 0:
		return func(F) any { return keys.None }, nil
	case len(levels) == 1 && levels[0].Width == 1:
		m := mappings[0]
		return func(fact F) any { return keys.Of(m(fact)) }, nil
	}

	return func(fact F) any {
		levelKeys := make([]any, len(levels))
		j := 0
		for i, level := range levels {
			if level.Width == 1 {
				levelKeys[i] = mappings[j](fact)
				j++
				continue
			}
			values := make([]any, level.Width)
			for w := range values {
				values[w] = mappings[j](fact)
				j++
			}
			levelKeys[i] = keys.OfMany(values)
		}
		return keys.OfMany(levelKeys)
	}, nil
}
