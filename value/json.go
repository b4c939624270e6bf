package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// FromJSON reads a single JSON document and converts it into a codec value.
// Objects become tables with string keys in document order, arrays become
// sequence tables, and numbers become int64 when they are written as an
// integer literal that fits int64, float64 otherwise (so 1.0 and 1e3 become
// float64).
func FromJSON(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := fromJSONToken(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON document")
	}
	return v, nil
}

func FromJSONBytes(data []byte) (interface{}, error) {
	return FromJSON(bytes.NewReader(data))
}

func fromJSONToken(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON token")
	}
	return fromJSONValue(dec, tok)
}

func fromJSONValue(dec *json.Decoder, tok json.Token) (interface{}, error) {
	switch v := tok.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		return v, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing JSON number %q", v.String())
		}
		return f, nil
	case json.Delim:
		switch v {
		case '{':
			return fromJSONObject(dec)
		case '[':
			return fromJSONArray(dec)
		default:
			return nil, errors.Errorf("unexpected JSON delimiter %q", v.String())
		}
	default:
		return nil, errors.Errorf("unexpected JSON token %v", tok)
	}
}

func fromJSONObject(dec *json.Decoder) (*Table, error) {
	t := NewTable()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "error reading JSON object key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.Errorf("unexpected JSON object key %v", keyTok)
		}
		val, err := fromJSONToken(dec)
		if err != nil {
			return nil, err
		}
		if err := t.Set(key, val); err != nil {
			return nil, err
		}
	}
	// consume the closing brace
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "error reading end of JSON object")
	}
	return t, nil
}

func fromJSONArray(dec *json.Decoder) (*Table, error) {
	t := NewTable()
	for dec.More() {
		val, err := fromJSONToken(dec)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, errors.New("JSON arrays with null entries are not representable")
		}
		t.Append(val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "error reading end of JSON array")
	}
	return t, nil
}

// ToJSON renders a codec value as JSON. Tables with only an array part
// become arrays, all others become objects with stringified keys. Cyclic
// values are rejected.
func ToJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, Normalize(v), make(map[*Table]bool)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v interface{}, seen map[*Table]bool) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return errors.Errorf("%v is not representable in JSON", val)
		}
		buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		enc, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case *Table:
		if seen[val] {
			return errors.New("cannot render cyclic table as JSON")
		}
		seen[val] = true
		defer delete(seen, val)
		if val.Len() == val.ArrayLen() {
			return writeJSONArray(buf, val, seen)
		}
		return writeJSONObject(buf, val, seen)
	default:
		return errors.Errorf("cannot render %T as JSON", v)
	}
	return nil
}

func writeJSONArray(buf *bytes.Buffer, t *Table, seen map[*Table]bool) error {
	buf.WriteByte('[')
	n := t.ArrayLen()
	for i := 1; i <= n; i++ {
		if i > 1 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, t.Get(int64(i)), seen); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeJSONObject(buf *bytes.Buffer, t *Table, seen map[*Table]bool) error {
	buf.WriteByte('{')
	for i, k := range t.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		var keyStr string
		switch key := k.(type) {
		case string:
			keyStr = key
		case int64:
			keyStr = strconv.FormatInt(key, 10)
		case float64:
			keyStr = strconv.FormatFloat(key, 'g', -1, 64)
		case bool:
			keyStr = fmt.Sprintf("%v", key)
		default:
			return errors.Errorf("cannot render %T key as JSON", k)
		}
		enc, err := json.Marshal(keyStr)
		if err != nil {
			return err
		}
		buf.Write(enc)
		buf.WriteByte(':')
		if err := writeJSON(buf, t.Get(k), seen); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
