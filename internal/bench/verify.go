package bench

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/Aman-CERP/joinindex/internal/errors"
	"github.com/Aman-CERP/joinindex/pkg/index"
)

// side is one chain of a job together with how it is queried.
type side struct {
	name     string
	idx      index.Indexer[*Lesson]
	storeKey func(*Lesson) any
	queryKey func(*Lesson) any
	// matches reports whether a stored lesson joins with a probe lesson.
	matches func(stored, probe *Lesson) bool
	// positional is set when the chain supports Get.
	positional bool
}

// verify compares the chain's answer for every probe against a scan of
// stored, returning ERR_505 on the first difference.
func (s *side) verify(stored []*Lesson, probes []*Lesson) error {
	for _, probe := range probes {
		key := s.queryKey(probe)

		var want []int
		for _, l := range stored {
			if s.matches(l, probe) {
				want = append(want, l.ID)
			}
		}

		seen := make(map[int]bool, len(want))
		var got []int
		var dup *Lesson
		s.idx.ForEach(key, func(l *Lesson) {
			if seen[l.ID] && dup == nil {
				dup = l
			}
			seen[l.ID] = true
			got = append(got, l.ID)
		})
		if dup != nil {
			return s.mismatch(probe, "tuple visited twice: "+dup.String())
		}

		slices.Sort(got)
		if !slices.Equal(want, got) {
			return s.mismatch(probe, fmt.Sprintf("expected %d matches, index returned %d", len(want), len(got))).
				WithDetail("missing", fmt.Sprint(difference(want, got))).
				WithDetail("unexpected", fmt.Sprint(difference(got, want)))
		}
		if size := s.idx.Size(key); size != len(got) {
			return s.mismatch(probe, fmt.Sprintf("size %d disagrees with %d visited tuples", size, len(got)))
		}

		if s.positional {
			byPosition := make([]int, 0, len(got))
			for i := range len(got) {
				byPosition = append(byPosition, s.idx.Get(key, i).ID)
			}
			slices.Sort(byPosition)
			if !slices.Equal(got, byPosition) {
				return s.mismatch(probe, "positional access disagrees with iteration")
			}
		}
	}
	return nil
}

func (s *side) mismatch(probe *Lesson, msg string) *errors.IndexError {
	return errors.New(errors.ErrCodeVerificationFailed, msg, nil).
		WithDetail("chain", s.name).
		WithDetail("shape", s.idx.String()).
		WithDetail("probe", probe.String()).
		WithDetail("probe_id", strconv.Itoa(probe.ID))
}

// difference returns the sorted elements of a missing from b; both sorted.
func difference(a, b []int) []int {
	var out []int
	for _, v := range a {
		if _, found := slices.BinarySearch(b, v); !found {
			out = append(out, v)
		}
	}
	return out
}
