package keys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/joinindex/internal/errors"
)

func TestOf_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   any
	}{
		{"none", nil, None},
		{"single value is unwrapped", []any{"R1"}, "R1"},
		{"single nil is Null", []any{nil}, Null},
		{"pair", []any{"R1", "Mon"}, Pair{"R1", "Mon"}},
		{"pair with nil", []any{nil, "Mon"}, Pair{nil, "Mon"}},
		{"triple", []any{1, 2, 3}, Triple{1, 2, 3}},
		{"quad", []any{1, 2, 3, 4}, Quad{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OfMany(tt.values))
		})
	}
}

func TestOf_StructuralEquality(t *testing.T) {
	// Given: keys built independently from equal values
	a := Of("R1", "Mon", 10, 20, 30, 40)
	b := Of("R1", "Mon", 10, 20, 30, 40)
	c := Of("R1", "Mon", 10, 20, 30, 41)

	// Then: equal values give == keys that collide in a map
	assert.True(t, a == b)
	assert.False(t, a == c)

	m := map[any]int{a: 1}
	m[b]++
	assert.Equal(t, 2, m[a])
	assert.Len(t, m, 1)
}

func TestOf_NullIsDistinctFromNoneAndNil(t *testing.T) {
	assert.NotEqual(t, None, Null)
	assert.True(t, Of(nil) == Of(nil))
	assert.Nil(t, Unwrap(Null))
	assert.Equal(t, "x", Unwrap("x"))
}

func TestMany_Get(t *testing.T) {
	// Given: keys with five and seven values
	five := Of(1, 2, 3, 4, nil).(Composite)
	seven := Of(1, 2, 3, 4, 5, 6, 7).(Composite)

	// Then: every position comes back, nil included
	assert.Equal(t, 5, five.Len())
	assert.Nil(t, five.Get(4))
	assert.Equal(t, 7, seven.Len())
	for i := 0; i < 7; i++ {
		assert.Equal(t, i+1, seven.Get(i))
	}
	assert.Equal(t, "[1, 2, 3, 4, 5, 6, 7]", seven.(Many).String())
}

func TestComposite_Get_OutOfRangePanics(t *testing.T) {
	err := errors.Capture(func() {
		Pair{"a", "b"}.Get(2)
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeKeyOutOfRange, errors.GetCode(err))

	err = errors.Capture(func() {
		Of(1, 2, 3, 4, 5).(Composite).Get(5)
	})
	assert.Equal(t, errors.ErrCodeKeyOutOfRange, errors.GetCode(err))
}

func TestLen(t *testing.T) {
	assert.Equal(t, 0, Len(None))
	assert.Equal(t, 1, Len(Null))
	assert.Equal(t, 1, Len("x"))
	assert.Equal(t, 3, Len(Of(1, 2, 3)))
	assert.Equal(t, 6, Len(Of(1, 2, 3, 4, 5, 6)))
}

func TestRetriever(t *testing.T) {
	key := Of("R1", Of("Mon", 10))

	assert.Equal(t, key, Single()(key))
	assert.Equal(t, "R1", At(0)(key))
	assert.Equal(t, Pair{"Mon", 10}, At(1)(key))

	// Single-level chains use the identity.
	assert.Equal(t, "R1", ForLevel(0, 1)("R1"))
	assert.Equal(t, "R1", ForLevel(0, 2)(key))
}

func TestRetriever_OnSingleValueKeyPanics(t *testing.T) {
	err := errors.Capture(func() {
		At(1)("R1")
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeKeyOutOfRange, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
}

type minute int

type version struct{ major, minor int }

func (v version) Compare(other any) int {
	o := other.(version)
	if v.major != o.major {
		return v.major - o.major
	}
	return v.minor - o.minor
}

func TestCompare(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"ints", 1, 2, -1},
		{"strings", "b", "a", 1},
		{"floats equal", 1.5, 1.5, 0},
		{"bools", false, true, -1},
		{"times", now, now.Add(time.Second), -1},
		{"durations", 2 * time.Second, time.Second, 1},
		{"named int", minute(30), minute(10), 1},
		{"null first", Null, 0, -1},
		{"null equal", Null, nil, 0},
		{"comparable", version{1, 2}, version{1, 10}, -1},
		{"composite", Pair{"R1", 10}, Pair{"R1", 5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestCompare_MixedKindsPanic(t *testing.T) {
	err := errors.Capture(func() {
		Compare(1, "1")
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnorderedKey, errors.GetCode(err))
}

func TestReverse(t *testing.T) {
	r := Reverse(Compare)
	assert.Positive(t, r(1, 2))
	assert.Negative(t, r(2, 1))
}
