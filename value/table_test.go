package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable_KeyNormalization(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set(1, "one"))

	// every integral numeric addresses the same slot
	require.Equal(t, "one", tbl.Get(int64(1)))
	require.Equal(t, "one", tbl.Get(int32(1)))
	require.Equal(t, "one", tbl.Get(1.0))
	require.Equal(t, 1, tbl.Len())

	require.NoError(t, tbl.Set(1.0, "uno"))
	require.Equal(t, "uno", tbl.Get(1))
	require.Equal(t, 1, tbl.Len())

	// non-integral float keys stay floats
	require.NoError(t, tbl.Set(1.5, "half"))
	require.Equal(t, "half", tbl.Get(1.5))
	require.Equal(t, 2, tbl.Len())
}

func TestTable_RejectedKeys(t *testing.T) {
	tbl := NewTable()
	require.Error(t, tbl.Set(nil, "x"))
	require.Error(t, tbl.Set(math.NaN(), "x"))
}

func TestTable_SetNilDeletes(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set("a", 1))
	require.NoError(t, tbl.Set("b", 2))
	require.NoError(t, tbl.Set("a", nil))

	require.False(t, tbl.Has("a"))
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, []interface{}{"b"}, tbl.Keys())

	// deleting an absent key is a no-op
	require.NoError(t, tbl.Set("zzz", nil))
}

func TestTable_Append(t *testing.T) {
	tbl := NewTable()
	tbl.Append("a").Append("b").Append("c")
	require.Equal(t, 3, tbl.ArrayLen())
	require.Equal(t, "b", tbl.Get(2))
}

func TestTable_ArrayLenStopsAtGap(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set(1, "a"))
	require.NoError(t, tbl.Set(2, "b"))
	require.NoError(t, tbl.Set(4, "d"))
	require.Equal(t, 2, tbl.ArrayLen())

	// filling the gap extends the run
	require.NoError(t, tbl.Set(3, "c"))
	require.Equal(t, 4, tbl.ArrayLen())

	// deleting inside the run shortens it
	require.NoError(t, tbl.Set(2, nil))
	require.Equal(t, 1, tbl.ArrayLen())
}

func TestTable_KeysInsertionOrder(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set("z", 1))
	require.NoError(t, tbl.Set("a", 2))
	require.NoError(t, tbl.Set(5, 3))
	require.Equal(t, []interface{}{"z", "a", int64(5)}, tbl.Keys())
}

func TestTable_Meta(t *testing.T) {
	type token struct{ name string }
	id := &token{name: "t"}
	tbl := NewTable()
	require.Nil(t, tbl.Meta())
	tbl.SetMeta(id)
	require.Same(t, id, tbl.Meta())
}

func TestNormalize(t *testing.T) {
	require.Equal(t, int64(5), Normalize(5))
	require.Equal(t, int64(5), Normalize(uint8(5)))
	require.Equal(t, int64(-5), Normalize(int16(-5)))
	require.Equal(t, float64(2.5), Normalize(float32(2.5)))
	require.Equal(t, "s", Normalize("s"))

	// uint64 beyond int64 range degrades to float64
	require.Equal(t, float64(math.MaxUint64), Normalize(uint64(math.MaxUint64)))
}
