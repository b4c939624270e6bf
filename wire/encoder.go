package wire

import (
	"reflect"

	"github.com/pkg/errors"

	"bser/value"
)

type encoder struct {
	c   *Codec
	buf []byte

	// seen maps the identity key of every shareable value already emitted
	// to its 1-based slot in the identity table.
	seen map[interface{}]int
	next int

	// building guards custom encoders: a value stays in the set from the
	// moment its constructor tag is emitted until its arguments are done
	// and it receives a slot. Meeting it again in that window means the
	// constructor's argument graph loops back onto it.
	building map[interface{}]bool
}

// Serialize encodes the given tuple of values into one self-describing
// byte string. Shareable values (strings, tables, custom objects, opaque
// procedures) emit once and back-reference on every later encounter, so
// shared substructure and cycles survive the round trip.
func (c *Codec) Serialize(vals ...interface{}) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e := &encoder{
		c:        c,
		seen:     make(map[interface{}]int),
		next:     1,
		building: make(map[interface{}]bool),
	}
	for _, v := range vals {
		if err := e.encode(v); err != nil {
			return nil, err
		}
	}
	return e.buf, nil
}

func (e *encoder) encode(v interface{}) error {
	v = value.Normalize(v)
	switch val := v.(type) {
	case nil:
		e.buf = append(e.buf, tagNil)
		return nil
	case bool:
		if val {
			e.buf = append(e.buf, tagTrue)
		} else {
			e.buf = append(e.buf, tagFalse)
		}
		return nil
	case int64:
		e.encodeInt(val)
		return nil
	case float64:
		if e.c.legacy {
			e.buf = appendLegacyFloat(e.buf, val)
		} else {
			e.buf = appendFloat(e.buf, val)
		}
		return nil
	case string:
		return e.encodeString(val)
	case *value.Table:
		return e.encodeTable(val)
	default:
		return e.encodeOther(val)
	}
}

func (e *encoder) encodeString(s string) error {
	key := stringKey{s}
	if idx, ok := e.seen[key]; ok {
		return e.encodeReference(idx)
	}
	e.seen[key] = e.next
	e.next++
	e.buf = append(e.buf, tagString)
	e.encodeInt(int64(len(s)))
	e.buf = append(e.buf, s...)
	return nil
}

func (e *encoder) encodeTable(t *value.Table) error {
	if idx, ok := e.seen[t]; ok {
		return e.encodeReference(idx)
	}
	if e.building[t] {
		return errors.Wrap(ErrInfiniteConstructor, "table reached from inside its own constructor")
	}
	if name, ok := e.c.resourceIDs[t]; ok {
		return e.encodeResource(name)
	}
	if meta := t.Meta(); meta != nil {
		if entry, ok := e.c.ids[meta]; ok {
			return e.encodeCustom(t, t, entry)
		}
	}

	// A plain table takes its slot before its contents so cycles through
	// it resolve to the slot.
	e.seen[t] = e.next
	e.next++
	e.buf = append(e.buf, tagTable)

	arrayLen := t.ArrayLen()
	e.encodeInt(int64(arrayLen))
	for i := 1; i <= arrayLen; i++ {
		if err := e.encode(t.Get(int64(i))); err != nil {
			return err
		}
	}

	mapSize := t.Len() - arrayLen
	e.encodeInt(int64(mapSize))
	for _, k := range t.Keys() {
		if ik, ok := k.(int64); ok && ik >= 1 && ik <= int64(arrayLen) {
			continue
		}
		if err := e.encode(k); err != nil {
			return err
		}
		if err := e.encode(t.Get(k)); err != nil {
			return err
		}
	}
	return nil
}

// encodeOther handles everything outside the plain value universe:
// resources, registered host types and opaque procedures.
func (e *encoder) encodeOther(v interface{}) error {
	key, keyed := identityKey(v)
	if keyed {
		if idx, ok := e.seen[key]; ok {
			return e.encodeReference(idx)
		}
		if e.building[key] {
			return errors.Wrap(ErrInfiniteConstructor, "value reached from inside its own constructor")
		}
		if name, ok := e.c.resourceIDs[key]; ok {
			return e.encodeResource(name)
		}
	}

	if id := e.c.identity(v); id != nil {
		if entry, ok := e.c.ids[id]; ok {
			if entry.encode == nil && entry.template == nil {
				return errors.Wrapf(ErrUnserializable, "type %q has no encoder and %T is not a table", entry.name, v)
			}
			return e.encodeCustom(v, nil, entry)
		}
	}

	if reflect.ValueOf(v).Kind() == reflect.Func {
		return e.encodeProc(v, key)
	}

	return errors.Wrapf(ErrUnserializable, "value of type %T", v)
}

// encodeCustom writes a constructor record: the type name, the argument
// count and the arguments. The value is numbered only after its arguments
// are on the wire, mirroring the decoder, which cannot construct the value
// until the deserializer has run.
func (e *encoder) encodeCustom(v interface{}, t *value.Table, entry *typeEntry) error {
	key, keyed := identityKey(v)
	if !keyed {
		return errors.Wrapf(ErrUnserializable, "value of type %T has no usable identity", v)
	}

	e.buf = append(e.buf, tagCustom)
	if err := e.encodeString(entry.name); err != nil {
		return err
	}

	e.building[key] = true
	defer delete(e.building, key)

	var args []interface{}
	var err error
	switch {
	case entry.template != nil:
		if t == nil {
			return errors.Wrapf(ErrUnserializable, "type %q has a template but %T is not a table", entry.name, v)
		}
		args = entry.template.flatten(t, nil)
	case entry.encode != nil:
		args, err = entry.encode(v)
		if err != nil {
			return errors.Wrapf(err, "encoder for type %q failed", entry.name)
		}
	default:
		args = defaultEncode(t)
	}

	e.encodeInt(int64(len(args)))
	for _, arg := range args {
		if err := e.encode(arg); err != nil {
			return err
		}
	}

	e.seen[key] = e.next
	e.next++
	return nil
}

func (e *encoder) encodeProc(v interface{}, key interface{}) error {
	if e.c.dumpProc == nil {
		return errors.Wrapf(ErrUnserializable, "procedure value of type %T and no dump hook installed", v)
	}
	body, err := e.c.dumpProc(v)
	if err != nil {
		return errors.Wrap(err, "procedure dump hook failed")
	}
	e.seen[key] = e.next
	e.next++
	e.buf = append(e.buf, tagProc)
	e.encodeInt(int64(len(body)))
	e.buf = append(e.buf, body...)
	return nil
}

func (e *encoder) encodeResource(name string) error {
	e.buf = append(e.buf, tagResource)
	return e.encodeString(name)
}

func (e *encoder) encodeReference(idx int) error {
	e.buf = append(e.buf, tagReference)
	e.encodeInt(int64(idx))
	return nil
}

func (e *encoder) encodeInt(n int64) {
	if e.c.legacy {
		e.buf = appendLegacyInt(e.buf, n)
	} else {
		e.buf = appendInt(e.buf, n)
	}
}

// defaultEncode flattens a table into the default constructor argument
// list: k1, v1, k2, v2, ...
func defaultEncode(t *value.Table) []interface{} {
	args := make([]interface{}, 0, t.Len()*2)
	for _, k := range t.Keys() {
		args = append(args, k, t.Get(k))
	}
	return args
}

type stringKey struct {
	s string
}

// identityKey derives a comparable identity for a shareable value: tables
// by pointer, funcs by code pointer, strings by contents and other host
// values by their own comparability.
func identityKey(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case string:
		return stringKey{val}, true
	case *value.Table:
		return val, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		return funcKey{rv.Pointer()}, true
	}
	if !rv.Type().Comparable() {
		return nil, false
	}
	return v, true
}
