package value

import (
	"math"

	"github.com/pkg/errors"
)

// Table is the container type the codec is closed over. It keeps a single
// insertion-ordered association of key to value; the array/map split only
// exists on the wire. Keys are normalized on the way in so that 1, int32(1)
// and 1.0 all address the same slot.
type Table struct {
	meta    interface{}
	keys    []interface{}
	entries map[interface{}]interface{}
}

func NewTable() *Table {
	return &Table{
		entries: make(map[interface{}]interface{}),
	}
}

// Meta returns the table's type identity token, or nil for a plain table.
func (t *Table) Meta() interface{} {
	return t.meta
}

func (t *Table) SetMeta(meta interface{}) {
	t.meta = meta
}

// Set stores val under key. Setting a key to nil deletes it.
func (t *Table) Set(key, val interface{}) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	if val == nil {
		if _, ok := t.entries[k]; ok {
			delete(t.entries, k)
			for i, existing := range t.keys {
				if existing == k {
					t.keys = append(t.keys[:i], t.keys[i+1:]...)
					break
				}
			}
		}
		return nil
	}
	if _, ok := t.entries[k]; !ok {
		t.keys = append(t.keys, k)
	}
	t.entries[k] = Normalize(val)
	return nil
}

// MustSet is Set for keys known to be valid. It panics on a bad key and is
// intended for literal construction in tests and callers with fixed keys.
func (t *Table) MustSet(key, val interface{}) *Table {
	if err := t.Set(key, val); err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Get(key interface{}) interface{} {
	k, err := NormalizeKey(key)
	if err != nil {
		return nil
	}
	return t.entries[k]
}

func (t *Table) Has(key interface{}) bool {
	k, err := NormalizeKey(key)
	if err != nil {
		return false
	}
	_, ok := t.entries[k]
	return ok
}

// Append stores val at the next free positive integer index.
func (t *Table) Append(val interface{}) *Table {
	return t.MustSet(int64(t.ArrayLen()+1), val)
}

// Len returns the total number of key/value pairs.
func (t *Table) Len() int {
	return len(t.keys)
}

// ArrayLen returns the length of the longest unbroken run of values at
// integer keys 1..n. The first absent index stops the scan, so a table with
// entries at 1, 2 and 4 has an array length of 2.
func (t *Table) ArrayLen() int {
	n := 0
	for {
		if _, ok := t.entries[int64(n+1)]; !ok {
			return n
		}
		n++
	}
}

// Keys returns the table's keys in insertion order.
func (t *Table) Keys() []interface{} {
	out := make([]interface{}, len(t.keys))
	copy(out, t.keys)
	return out
}

// NormalizeKey maps every integral numeric key onto int64 and rejects keys
// that cannot address a slot.
func NormalizeKey(key interface{}) (interface{}, error) {
	if key == nil {
		return nil, errors.New("table key cannot be nil")
	}
	k := Normalize(key)
	if f, ok := k.(float64); ok {
		if math.IsNaN(f) {
			return nil, errors.New("table key cannot be NaN")
		}
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), nil
		}
	}
	return k, nil
}

// Normalize collapses the Go numeric widths onto the codec's number model:
// int64 for integers, float64 for everything else. Other values pass
// through untouched.
func Normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return float64(n)
		}
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
