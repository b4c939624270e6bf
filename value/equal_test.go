package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqual_Primitives(t *testing.T) {
	require.True(t, Equal(nil, nil))
	require.True(t, Equal(true, true))
	require.False(t, Equal(true, false))
	require.True(t, Equal("a", "a"))
	require.False(t, Equal("a", "b"))
	require.False(t, Equal(nil, false))
	require.False(t, Equal("1", int64(1)))
}

func TestEqual_NumericCrossType(t *testing.T) {
	require.True(t, Equal(int64(5), float64(5)))
	require.True(t, Equal(int64(5), 5))
	require.False(t, Equal(int64(5), 5.5))
	require.True(t, Equal(math.NaN(), math.NaN()))
	require.False(t, Equal(math.NaN(), 1.0))
	require.True(t, Equal(int64(math.MaxInt64), int64(math.MaxInt64)))
	require.False(t, Equal(int64(math.MaxInt64), int64(math.MaxInt64-1)))
}

func TestEqual_Tables(t *testing.T) {
	a := NewTable().MustSet("x", 1).MustSet("y", NewTable().Append("deep"))
	b := NewTable().MustSet("x", 1).MustSet("y", NewTable().Append("deep"))
	require.True(t, Equal(a, b))

	b.MustSet("x", 2)
	require.False(t, Equal(a, b))

	c := NewTable().MustSet("x", 1)
	require.False(t, Equal(a, c))
}

func TestEqual_TableMeta(t *testing.T) {
	id := &struct{ n string }{"id"}
	a := NewTable().MustSet("x", 1)
	b := NewTable().MustSet("x", 1)
	a.SetMeta(id)
	require.False(t, Equal(a, b))
	b.SetMeta(id)
	require.True(t, Equal(a, b))
}

func TestEqual_Cycles(t *testing.T) {
	a := NewTable().MustSet("v", 1)
	a.MustSet("self", a)
	b := NewTable().MustSet("v", 1)
	b.MustSet("self", b)
	require.True(t, Equal(a, b))

	b.MustSet("v", 2)
	require.False(t, Equal(a, b))
}

func TestEqual_SharedVsDuplicated(t *testing.T) {
	// structural equality does not distinguish shared from copied subtrees
	leaf := NewTable().MustSet("k", 1)
	shared := NewTable().MustSet("a", leaf).MustSet("b", leaf)
	copied := NewTable().
		MustSet("a", NewTable().MustSet("k", 1)).
		MustSet("b", NewTable().MustSet("k", 1))
	require.True(t, Equal(shared, copied))
}
