package wire

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"bser/value"
)

func TestCodec_CyclicTableSharing(t *testing.T) {
	c := New()

	tbl := value.NewTable().
		MustSet("a", int64(90)).
		MustSet("b", int64(89)).
		MustSet("zz", "bser")
	tbl.MustSet("cycle", tbl)

	vals, err := roundTrip(c, tbl, tbl)
	require.NoError(t, err)
	require.Len(t, vals, 2)

	first, ok := vals[0].(*value.Table)
	require.True(t, ok)
	require.Same(t, vals[0], vals[1])
	require.Same(t, first, first.Get("cycle"))
	require.Equal(t, int64(90), first.Get("a"))
	require.Equal(t, int64(89), first.Get("b"))
	require.Equal(t, "bser", first.Get("zz"))
}

func TestCodec_SharedSubstructure(t *testing.T) {
	c := New()

	inner := value.NewTable().MustSet("x", int64(1))
	outer := value.NewTable().Append(inner).Append(inner)

	vals, err := roundTrip(c, outer)
	require.NoError(t, err)
	got := vals[0].(*value.Table)
	require.Same(t, got.Get(1), got.Get(2))
}

func TestCodec_DefaultCustomType(t *testing.T) {
	c := New()

	myCoolType := &registeredMeta{name: "MyCoolType"}
	require.NoError(t, c.Register(myCoolType, "MyCoolType", nil, nil, nil))

	tbl := newMetaTable(myCoolType, "a", "a", "b", "b", "c", "c")
	vals, err := roundTrip(c, tbl)
	require.NoError(t, err)

	got, ok := vals[0].(*value.Table)
	require.True(t, ok)
	require.Same(t, myCoolType, got.Meta())
	require.True(t, value.Equal(tbl, got))
}

func TestCodec_UnregisteredMetaEncodesAsPlainTable(t *testing.T) {
	c := New()

	tbl := newMetaTable(&registeredMeta{}, "k", int64(5))
	vals, err := roundTrip(c, tbl)
	require.NoError(t, err)
	got := vals[0].(*value.Table)
	require.Nil(t, got.Meta())
	require.Equal(t, int64(5), got.Get("k"))
}

type point struct {
	X int64
	Y int64
}

func registerPoint(t *testing.T, c *Codec) {
	t.Helper()
	enc := func(v interface{}) ([]interface{}, error) {
		p := v.(point)
		return []interface{}{p.X, p.Y}, nil
	}
	dec := func(args []interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errors.New("point requires two arguments")
		}
		x, ok := numericArg(args[0])
		if !ok {
			return nil, errors.New("point x must be a number")
		}
		y, ok := numericArg(args[1])
		if !ok {
			return nil, errors.New("point y must be a number")
		}
		return point{X: x, Y: y}, nil
	}
	require.NoError(t, c.Register(reflect.TypeOf(point{}), "point", enc, dec, nil))
}

func numericArg(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func TestCodec_CustomEncodeDecode(t *testing.T) {
	c := New()
	registerPoint(t, c)

	p := point{X: 3, Y: 400}
	vals, err := roundTrip(c, p, p)
	require.NoError(t, err)
	require.Equal(t, p, vals[0])
	require.Equal(t, p, vals[1])
}

func TestCodec_CustomObjectSharing(t *testing.T) {
	c := New()
	registerPoint(t, c)

	p := point{X: 1, Y: 2}
	data, err := c.Serialize(p, p)
	require.NoError(t, err)

	// the second occurrence must be a back-reference, not a second record
	require.Equal(t, byte(tagReference), data[len(data)-2])
}

func TestCodec_InfiniteConstructor(t *testing.T) {
	c := New()

	selfRef := &registeredMeta{name: "selfRef"}
	enc := func(v interface{}) ([]interface{}, error) {
		return []interface{}{v}, nil
	}
	dec := func(args []interface{}) (interface{}, error) {
		return args[0], nil
	}
	require.NoError(t, c.Register(selfRef, "selfRef", enc, dec, nil))

	tbl := value.NewTable()
	tbl.SetMeta(selfRef)
	_, err := c.Serialize(tbl)
	require.Error(t, err)
	require.True(t, errorIs(err, ErrInfiniteConstructor))
}

func TestCodec_ConstructorMayReferenceNumberedValues(t *testing.T) {
	c := New()

	wrapper := &registeredMeta{name: "wrapper"}
	inner := value.NewTable().MustSet("x", int64(1))
	enc := func(v interface{}) ([]interface{}, error) {
		return []interface{}{inner}, nil
	}
	dec := func(args []interface{}) (interface{}, error) {
		t := args[0].(*value.Table)
		out := value.NewTable().MustSet("wrapped", t)
		out.SetMeta(wrapper)
		return out, nil
	}
	require.NoError(t, c.Register(wrapper, "wrapper", enc, dec, nil))

	obj := value.NewTable()
	obj.SetMeta(wrapper)
	vals, err := roundTrip(c, inner, obj)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	got := vals[1].(*value.Table)
	// the constructor argument back-references the already-decoded table
	require.Same(t, vals[0], got.Get("wrapped"))
}

func TestCodec_Resources(t *testing.T) {
	c := New()

	conn := newMetaTable(nil, "socket", int64(99))
	require.NoError(t, c.RegisterResource(conn, "db-conn"))

	vals, err := roundTrip(c, conn, conn)
	require.NoError(t, err)
	require.Same(t, conn, vals[0])
	require.Same(t, conn, vals[1])

	// resources resolve to the object registered at decode time
	data, err := c.Serialize(conn)
	require.NoError(t, err)
	require.NoError(t, c.UnregisterResource("db-conn"))
	replacement := newMetaTable(nil, "socket", int64(100))
	require.NoError(t, c.RegisterResource(replacement, "db-conn"))
	vals, err = c.Deserialize(data)
	require.NoError(t, err)
	require.Same(t, replacement, vals[0])
}

func TestCodec_ResourceWinsOverCustomType(t *testing.T) {
	c := New()

	id := &registeredMeta{name: "managed"}
	require.NoError(t, c.Register(id, "managed", nil, nil, nil))

	obj := newMetaTable(id, "k", int64(1))
	require.NoError(t, c.RegisterResource(obj, "the-one"))

	data, err := c.Serialize(obj)
	require.NoError(t, err)
	require.Equal(t, byte(tagResource), data[0])
}

func TestCodec_OpaqueProcedures(t *testing.T) {
	c := New()

	loaded := make(map[string]interface{})
	c.SetProcHooks(
		func(v interface{}) ([]byte, error) {
			return []byte("body-1"), nil
		},
		func(body []byte) (interface{}, error) {
			key := string(body)
			if v, ok := loaded[key]; ok {
				return v, nil
			}
			v := value.NewTable().MustSet("proc", key)
			loaded[key] = v
			return v, nil
		},
	)

	fn := func() {}
	vals, err := roundTrip(c, fn, fn)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	got := vals[0].(*value.Table)
	require.Equal(t, "body-1", got.Get("proc"))
	// the second occurrence rode a back-reference to the same slot
	require.Same(t, vals[0], vals[1])
}

func TestCodec_RegistryIsolation(t *testing.T) {
	a := New()
	b := New()

	idA := &registeredMeta{name: "a"}
	idB := &registeredMeta{name: "b"}
	require.NoError(t, a.Register(idA, "shape", nil, nil, nil))
	require.NoError(t, b.Register(idB, "shape", nil, nil, nil))

	tbl := newMetaTable(idA, "k", int64(1))
	data, err := a.Serialize(tbl)
	require.NoError(t, err)

	fromA, err := a.Deserialize(data)
	require.NoError(t, err)
	require.Same(t, idA, fromA[0].(*value.Table).Meta())

	fromB, err := b.Deserialize(data)
	require.NoError(t, err)
	require.Same(t, idB, fromB[0].(*value.Table).Meta())
}

func TestCodec_DefaultInstance(t *testing.T) {
	data, err := Serialize(int64(7), "seven")
	require.NoError(t, err)
	vals, err := Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, []interface{}{int64(7), "seven"}, vals)

	limited, err := DeserializeN(data, 1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{int64(7)}, limited)
}

func TestCodec_TypeNameSharing(t *testing.T) {
	c := New()
	registerPoint(t, c)

	p1 := point{X: 1, Y: 2}
	p2 := point{X: 3, Y: 4}
	data, err := c.Serialize(p1, p2)
	require.NoError(t, err)

	vals, err := c.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, p1, vals[0])
	require.Equal(t, p2, vals[1])

	// the second record back-references the type name string
	count := 0
	for i := 0; i+7 <= len(data); i++ {
		if data[i] == tagString && string(data[i+2:i+7]) == "point" {
			count++
		}
	}
	require.Equal(t, 1, count)
}
