package wire

import (
	"math"

	"github.com/pkg/errors"

	"bser/value"
)

// Template is a per-type schema: an ordered list of keys expected on every
// instance. On the wire the instance's values travel in template order
// with no key strings; fields the template does not cover ride in a
// trailing key/value tail, the same protocol as the map part of a table.
// A nested entry applies a sub-template to the table stored at its key.
type Template struct {
	entries []templateEntry
}

type templateEntry struct {
	key interface{}
	sub *Template
}

// NewTemplate builds a template from leaf keys and Sub entries.
func NewTemplate(entries ...interface{}) (*Template, error) {
	t := &Template{}
	for _, e := range entries {
		if sub, ok := e.(SubTemplate); ok {
			key, err := value.NormalizeKey(sub.Key)
			if err != nil {
				return nil, errors.Wrap(err, "bad nested template key")
			}
			if sub.Template == nil {
				return nil, errors.New("nested template cannot be nil")
			}
			t.entries = append(t.entries, templateEntry{key: key, sub: sub.Template})
			continue
		}
		key, err := value.NormalizeKey(e)
		if err != nil {
			return nil, errors.Wrap(err, "bad template key")
		}
		t.entries = append(t.entries, templateEntry{key: key})
	}
	return t, nil
}

// MustTemplate is NewTemplate for fixed key lists.
func MustTemplate(entries ...interface{}) *Template {
	t, err := NewTemplate(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// SubTemplate nests a template under a key.
type SubTemplate struct {
	Key      interface{}
	Template *Template
}

func Sub(key interface{}, tmpl *Template) SubTemplate {
	return SubTemplate{Key: key, Template: tmpl}
}

// flatten appends the values of t in template order to args: one slot per
// leaf, the flattened sub-part for each nested entry, then the fields the
// template left uncovered as a key/value tail - a pair count followed by
// the pairs, the same protocol as the map part of a table.
func (tmpl *Template) flatten(t *value.Table, args []interface{}) []interface{} {
	covered := make(map[interface{}]bool, len(tmpl.entries))
	for _, e := range tmpl.entries {
		covered[e.key] = true
		if e.sub == nil {
			args = append(args, t.Get(e.key))
			continue
		}
		sub, _ := t.Get(e.key).(*value.Table)
		if sub == nil {
			sub = value.NewTable()
		}
		args = e.sub.flatten(sub, args)
	}
	var tail []interface{}
	for _, k := range t.Keys() {
		if covered[k] {
			continue
		}
		tail = append(tail, k, t.Get(k))
	}
	args = append(args, int64(len(tail)/2))
	return append(args, tail...)
}

// rebuild consumes flattened args from position i, returning the restored
// table and the next unread position.
func (tmpl *Template) rebuild(args []interface{}, i int) (*value.Table, int, error) {
	t := value.NewTable()
	for _, e := range tmpl.entries {
		if e.sub != nil {
			sub, next, err := e.sub.rebuild(args, i)
			if err != nil {
				return nil, 0, err
			}
			i = next
			if sub.Len() > 0 {
				if err := t.Set(e.key, sub); err != nil {
					return nil, 0, err
				}
			}
			continue
		}
		if i >= len(args) {
			return nil, 0, errors.Wrap(ErrBadLength, "template argument list too short")
		}
		if args[i] != nil {
			if err := t.Set(e.key, args[i]); err != nil {
				return nil, 0, err
			}
		}
		i++
	}
	if i >= len(args) {
		return nil, 0, errors.Wrap(ErrBadLength, "template argument list missing tail count")
	}
	count, ok := tailCount(args[i], (len(args)-i-1)/2)
	if !ok {
		return nil, 0, errors.Wrap(ErrBadLength, "bad template tail count")
	}
	i++
	for n := 0; n < count; n++ {
		k, v := args[i], args[i+1]
		i += 2
		if k == nil {
			return nil, 0, errors.Wrap(ErrBadTag, "nil key in template tail")
		}
		if err := t.Set(k, v); err != nil {
			return nil, 0, errors.Wrap(ErrBadTag, err.Error())
		}
	}
	return t, i, nil
}

// tailCount validates a tail pair count against the number of argument
// pairs actually left.
func tailCount(v interface{}, limit int) (int, bool) {
	var n int64
	switch num := v.(type) {
	case int64:
		n = num
	case float64:
		if num != math.Trunc(num) || num < 0 || num > float64(limit) {
			return 0, false
		}
		n = int64(num)
	default:
		return 0, false
	}
	if n < 0 || n > int64(limit) {
		return 0, false
	}
	return int(n), true
}
