package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumbers_SmallIntCompactness(t *testing.T) {
	for n := int64(-100); n <= 100; n++ {
		data, err := New().Serialize(n)
		require.NoError(t, err)
		require.Len(t, data, 1)
		require.Equal(t, byte(n+101), data[0])
	}
}

func TestNumbers_SmallIntRoundTrip(t *testing.T) {
	c := New()
	for n := int64(-100); n <= 100; n++ {
		data, err := c.Serialize(n)
		require.NoError(t, err)
		vals, err := c.Deserialize(data)
		require.NoError(t, err)
		require.Len(t, vals, 1)
		require.Equal(t, n, vals[0])
	}
}

func TestNumbers_FloatBitExactness(t *testing.T) {
	cases := []float64{
		0,
		math.Copysign(0, -1),
		math.Inf(1),
		math.Inf(-1),
		math.Ldexp(0.5, -1022), // smallest normal
		math.Ldexp(0.5, -1021), // subnormal boundary
		math.Ldexp(0.985, 1023),
		math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		3.141592653589793,
		-1e300,
	}
	for exp := -1074; exp <= 1023; exp += 100 {
		cases = append(cases, math.Ldexp(1, exp))
	}

	c := New()
	for _, f := range cases {
		data, err := c.Serialize(f)
		require.NoError(t, err)
		vals, err := c.Deserialize(data)
		require.NoError(t, err)
		require.Len(t, vals, 1)
		got, ok := vals[0].(float64)
		require.True(t, ok, "expected float64 for %v, got %T", f, vals[0])
		require.Equal(t, math.Float64bits(f), math.Float64bits(got), "bit pattern mismatch for %v", f)
	}
}

func TestNumbers_NaNCanonicalizes(t *testing.T) {
	c := New()
	data, err := c.Serialize(math.NaN())
	require.NoError(t, err)
	require.Len(t, data, 9)
	require.Equal(t, []byte{tagFloat, 0x7F, 0xF8, 0, 0, 0, 0, 0, 0}, data)

	vals, err := c.Deserialize(data)
	require.NoError(t, err)
	got, ok := vals[0].(float64)
	require.True(t, ok)
	require.Equal(t, uint64(canonicalNaN), math.Float64bits(got))
}

func TestNumbers_BigIntRoundTrip(t *testing.T) {
	c := New()
	cases := []int64{
		math.MaxInt64,
		math.MinInt64,
		(1 << 53) + 1,
		-(1 << 53) - 1,
		1<<62 + 12345,
	}
	for _, n := range cases {
		data, err := c.Serialize(n)
		require.NoError(t, err)
		vals, err := c.Deserialize(data)
		require.NoError(t, err)
		require.Equal(t, n, vals[0])
	}
}

func TestNumbers_ExactIntTravelsAsDouble(t *testing.T) {
	c := New()
	data, err := c.Serialize(int64(1000))
	require.NoError(t, err)
	require.Len(t, data, 9)
	vals, err := c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, float64(1000), vals[0])
}

func TestNumbers_Legacy(t *testing.T) {
	c := New()
	c.SetLegacyNumbers(true)

	for _, v := range []interface{}{int64(1000), int64(-987654321), 3.5, -0.125, math.Inf(1)} {
		data, err := c.Serialize(v)
		require.NoError(t, err)
		vals, err := c.Deserialize(data)
		require.NoError(t, err)
		require.Equal(t, v, vals[0])
	}

	// small integers stay inline even in legacy mode
	data, err := c.Serialize(int64(45))
	require.NoError(t, err)
	require.Equal(t, []byte{146}, data)
}

func TestNumbers_LegacyMalformed(t *testing.T) {
	c := New()
	c.SetLegacyNumbers(true)

	_, err := c.Deserialize([]byte{tagFloat, 'x', 'y', tagFloat})
	require.Error(t, err)
	require.True(t, errorIs(err, ErrMalformedNumber))

	_, err = c.Deserialize([]byte{tagFloat, '1', '2'})
	require.Error(t, err)
	require.True(t, errorIs(err, ErrTruncated))
}
