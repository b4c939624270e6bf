package wire

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"bser/value"
)

// maxDecodeDepth bounds nesting so hostile input exhausts the cursor, not
// the goroutine stack.
const maxDecodeDepth = 1 << 16

type decoder struct {
	c     *Codec
	data  []byte
	pos   int
	depth int

	// vals is the identity table: one slot per shareable value in the
	// order the encoder numbered them.
	vals []interface{}
}

// Deserialize decodes every value in data.
func (c *Codec) Deserialize(data []byte) ([]interface{}, error) {
	return c.DeserializeN(data, -1)
}

// DeserializeN decodes at most n values, or every value when n is
// negative.
func (c *Codec) DeserializeN(data []byte, n int) ([]interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d := &decoder{c: c, data: data}
	var out []interface{}
	for d.pos < len(d.data) {
		if n >= 0 && len(out) >= n {
			break
		}
		v, err := d.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) decode() (interface{}, error) {
	if d.depth >= maxDecodeDepth {
		return nil, errors.Wrapf(ErrBadLength, "offset %d: nesting exceeds %d levels", d.pos, maxDecodeDepth)
	}
	d.depth++
	defer func() { d.depth-- }()

	start := d.pos
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}

	if tag >= 1 && tag <= 201 {
		return int64(tag) - inlineOffset, nil
	}

	switch tag {
	case tagNil:
		return nil, nil
	case tagTrue:
		return true, nil
	case tagFalse:
		return false, nil
	case tagFloat:
		return d.decodeNumber()
	case tagString:
		return d.decodeString()
	case tagTable:
		return d.decodeTable()
	case tagReference:
		return d.decodeReference()
	case tagCustom:
		return d.decodeCustom()
	case tagProc:
		return d.decodeProc()
	case tagResource:
		return d.decodeResource()
	default:
		return nil, errors.Wrapf(ErrBadTag, "offset %d: byte 0x%02x", start, tag)
	}
}

func (d *decoder) decodeNumber() (interface{}, error) {
	if d.c.legacy {
		return d.decodeLegacyNumber()
	}
	raw, err := d.readBytes(8)
	if err != nil {
		return nil, err
	}
	bits := binary.BigEndian.Uint64(raw)
	if bits == intMarker {
		payload, err := d.readBytes(8)
		if err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(payload)), nil
	}
	f := math.Float64frombits(bits)
	if math.IsNaN(f) {
		f = math.Float64frombits(canonicalNaN)
	}
	return f, nil
}

func (d *decoder) decodeLegacyNumber() (interface{}, error) {
	start := d.pos
	end := start
	for {
		if end >= len(d.data) {
			return nil, errors.Wrapf(ErrTruncated, "offset %d: unterminated number", start)
		}
		if d.data[end] == tagFloat {
			break
		}
		end++
	}
	text := string(d.data[start:end])
	d.pos = end + 1
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedNumber, "offset %d: %q", start, text)
	}
	if math.IsNaN(f) {
		f = math.Float64frombits(canonicalNaN)
	}
	return f, nil
}

func (d *decoder) decodeString() (interface{}, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	raw, err := d.readBytes(n)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	d.vals = append(d.vals, s)
	return s, nil
}

func (d *decoder) decodeTable() (interface{}, error) {
	// The table takes its identity slot before its contents decode so
	// back-references inside it resolve.
	t := value.NewTable()
	d.vals = append(d.vals, t)

	arrayLen, err := d.readLength()
	if err != nil {
		return nil, err
	}
	for i := 1; i <= arrayLen; i++ {
		v, err := d.decode()
		if err != nil {
			return nil, err
		}
		if err := t.Set(int64(i), v); err != nil {
			return nil, err
		}
	}

	mapSize, err := d.readLength()
	if err != nil {
		return nil, err
	}
	for i := 0; i < mapSize; i++ {
		k, err := d.decode()
		if err != nil {
			return nil, err
		}
		v, err := d.decode()
		if err != nil {
			return nil, err
		}
		if k == nil {
			return nil, errors.Wrapf(ErrBadTag, "offset %d: nil table key", d.pos)
		}
		if err := t.Set(k, v); err != nil {
			return nil, errors.Wrapf(ErrBadTag, "offset %d: %v", d.pos, err)
		}
	}
	return t, nil
}

func (d *decoder) decodeReference() (interface{}, error) {
	start := d.pos
	idx, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if idx < 1 || idx > len(d.vals) {
		return nil, errors.Wrapf(ErrBadReference, "offset %d: index %d with %d values seen", start, idx, len(d.vals))
	}
	return d.vals[idx-1], nil
}

func (d *decoder) decodeCustom() (interface{}, error) {
	start := d.pos
	nameVal, err := d.decode()
	if err != nil {
		return nil, err
	}
	name, ok := nameVal.(string)
	if !ok {
		return nil, errors.Wrapf(ErrBadTag, "offset %d: custom type name must be a string, got %T", start, nameVal)
	}

	argCount, err := d.readLength()
	if err != nil {
		return nil, err
	}
	args := make([]interface{}, 0, allocHint(argCount, len(d.data)-d.pos))
	for i := 0; i < argCount; i++ {
		arg, err := d.decode()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	entry, ok := d.c.types[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "offset %d: %q", start, name)
	}

	var v interface{}
	switch {
	case entry.template != nil:
		t, next, err := entry.template.rebuild(args, 0)
		if err != nil {
			return nil, err
		}
		if next != len(args) {
			return nil, errors.Wrapf(ErrBadLength, "offset %d: %d extra template arguments", start, len(args)-next)
		}
		t.SetMeta(entry.id)
		v = t
	case entry.decode != nil:
		v, err = entry.decode(args)
		if err != nil {
			return nil, errors.Wrapf(err, "decoder for type %q failed", name)
		}
	default:
		v, err = defaultDecode(entry, args)
		if err != nil {
			return nil, errors.Wrapf(err, "offset %d", start)
		}
	}

	// The value is numbered after its arguments, matching the encoder.
	d.vals = append(d.vals, v)
	return v, nil
}

func (d *decoder) decodeProc() (interface{}, error) {
	start := d.pos
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	body, err := d.readBytes(n)
	if err != nil {
		return nil, err
	}
	if d.c.loadProc == nil {
		return nil, errors.Wrapf(ErrUnserializable, "offset %d: procedure body with no load hook installed", start)
	}
	v, err := d.c.loadProc(body)
	if err != nil {
		return nil, errors.Wrap(err, "procedure load hook failed")
	}
	d.vals = append(d.vals, v)
	return v, nil
}

func (d *decoder) decodeResource() (interface{}, error) {
	start := d.pos
	nameVal, err := d.decode()
	if err != nil {
		return nil, err
	}
	name, ok := nameVal.(string)
	if !ok {
		return nil, errors.Wrapf(ErrBadTag, "offset %d: resource name must be a string, got %T", start, nameVal)
	}
	obj, ok := d.c.resources[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownResource, "offset %d: %q", start, name)
	}
	return obj, nil
}

// defaultDecode rebuilds a table from a flat k1, v1, k2, v2 argument list
// and stamps it with the registered identity.
func defaultDecode(entry *typeEntry, args []interface{}) (interface{}, error) {
	if len(args)%2 != 0 {
		return nil, errors.Wrapf(ErrBadLength, "odd argument count %d for type %q", len(args), entry.name)
	}
	t := value.NewTable()
	for i := 0; i < len(args); i += 2 {
		if args[i] == nil {
			return nil, errors.Wrapf(ErrBadTag, "nil key for type %q", entry.name)
		}
		if err := t.Set(args[i], args[i+1]); err != nil {
			return nil, err
		}
	}
	t.SetMeta(entry.id)
	return t, nil
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, errors.Wrapf(ErrTruncated, "offset %d", d.pos)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readBytes(n int) ([]byte, error) {
	if n > len(d.data)-d.pos {
		return nil, errors.Wrapf(ErrTruncated, "offset %d: need %d bytes, have %d", d.pos, n, len(d.data)-d.pos)
	}
	out := d.data[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

// readLength decodes an embedded integer: lengths, sizes, counts and
// back-reference indices are full value encodings.
func (d *decoder) readLength() (int, error) {
	start := d.pos
	v, err := d.decode()
	if err != nil {
		return 0, err
	}
	var n int64
	switch num := v.(type) {
	case int64:
		n = num
	case float64:
		if num != math.Trunc(num) || num < math.MinInt64 || num >= math.MaxInt64 {
			return 0, errors.Wrapf(ErrBadLength, "offset %d: %v is not an integer", start, num)
		}
		n = int64(num)
	default:
		return 0, errors.Wrapf(ErrBadLength, "offset %d: expected an integer, got %T", start, v)
	}
	if n < 0 {
		return 0, errors.Wrapf(ErrBadLength, "offset %d: negative length %d", start, n)
	}
	if n > int64(len(d.data)) {
		return 0, errors.Wrapf(ErrBadLength, "offset %d: length %d exceeds input size %d", start, n, len(d.data))
	}
	return int(n), nil
}

// allocHint caps a wire-supplied count by what the remaining input could
// possibly hold, so a hostile count cannot force a huge allocation.
func allocHint(count, remaining int) int {
	if count < remaining {
		return count
	}
	return remaining
}
