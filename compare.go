package zjit

import (
	"fmt"
	"math"
	"sort"
)

// Compare implements the natural ordering used by sortedNatural, min and max.
// Null sorts before everything else.  Values of the same kind compare by
// value; NaN sorts before every other float and -0 before +0.  Values of
// different kinds order by kind, and numerically equal values of different
// Go types order by type, so Compare returns 0 only for identical values and
// a stable sort followed by a reverse equals a stable reverse sort.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return sign(ra - rb)
	}
	switch a := a.(type) {
	case nil:
		return 0
	case bool:
		b := b.(bool)
		switch {
		case a == b:
			return 0
		case !a:
			return -1
		}
		return 1
	case string:
		b := b.(string)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	var c int
	if ra == rankFloat {
		c = compareFloat(toFloat(a), toFloat(b))
	} else {
		x, y := toInt(a), toInt(b)
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	}
	if c != 0 {
		return c
	}
	return sign(subrank(a) - subrank(b))
}

const (
	rankNull = iota
	rankBool
	rankInt
	rankFloat
	rankString
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return rankInt
	case float32, float64:
		return rankFloat
	case string:
		return rankString
	}
	panic(fmt.Sprintf("zjit: no natural ordering for %T", v))
}

// subrank orders numerically equal values of different Go types.
func subrank(v any) int {
	switch v.(type) {
	case int8, float32:
		return 0
	case int16, float64:
		return 1
	case int32:
		return 2
	case int:
		return 3
	case int64:
		return 4
	case uint8:
		return 5
	case uint16:
		return 6
	case uint32:
		return 7
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func toInt(v any) int64 {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	}
	panic(fmt.Sprintf("zjit: not an integer: %T", v))
}

func toFloat(v any) float64 {
	if f, ok := v.(float32); ok {
		return float64(f)
	}
	return v.(float64)
}

func compareFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	if a == 0 {
		sa, sb := math.Signbit(a), math.Signbit(b)
		switch {
		case sa && !sb:
			return -1
		case !sa && sb:
			return 1
		}
	}
	return 0
}

// Entry is the element type of an entries() stream.
func Entry(key, value any) [2]any {
	return [2]any{key, value}
}

// SortedKeys returns the keys of m in natural order.  Results that are Go
// maps print deterministically this way.
func SortedKeys[V any](m map[any]V) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool { return Compare(keys[i], keys[j]) < 0 })
	return keys
}
