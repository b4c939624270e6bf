package value

import "math"

// Equal reports structural equality between two values. Numbers compare by
// numeric value regardless of int64/float64 representation, NaN compares
// equal to NaN, and tables compare pairwise with cycle tolerance.
func Equal(a, b interface{}) bool {
	return equal(a, b, make(map[tablePair]bool))
}

type tablePair struct {
	a, b *Table
}

func equal(a, b interface{}, seen map[tablePair]bool) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ai, aok := a.(int64); aok {
		if bi, ok := b.(int64); ok {
			return ai == bi
		}
	}
	if an, aok := numeric(a); aok {
		bn, bok := numeric(b)
		if !bok {
			return false
		}
		if math.IsNaN(an) && math.IsNaN(bn) {
			return true
		}
		return an == bn
	}

	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *Table:
		bv, ok := b.(*Table)
		if !ok {
			return false
		}
		return equalTables(av, bv, seen)
	default:
		return a == b
	}
}

func equalTables(a, b *Table, seen map[tablePair]bool) bool {
	if a == b {
		return true
	}
	pair := tablePair{a, b}
	if seen[pair] {
		// Already comparing this pair further up the stack; assume equal
		// until a leaf proves otherwise.
		return true
	}
	seen[pair] = true

	if a.Len() != b.Len() {
		return false
	}
	if !equal(a.meta, b.meta, seen) {
		return false
	}
	for _, k := range a.keys {
		if !b.Has(k) {
			return false
		}
		if !equal(a.entries[k], b.Get(k), seen) {
			return false
		}
	}
	return true
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
