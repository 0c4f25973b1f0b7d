package interp

import (
	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/runtime/builtin"
)

// A terminal is the last sink of a chain.  Its results have the same Go
// types as those of compiled code.
type terminal interface {
	sink
	result() any
}

// pairTerminal is a terminal applied directly to a map view.
type pairTerminal interface {
	pairSink
	result() any
}

type accumulate struct {
	fn  func(any) bool
	out func() any
}

func (a *accumulate) push(v any) bool { return a.fn(v) }
func (a *accumulate) end()            {}
func (a *accumulate) result() any     { return a.out() }

func counter() terminal {
	var count int
	return &accumulate{
		fn:  func(any) bool { count++; return true },
		out: func() any { return count },
	}
}

func toList() terminal {
	list := make([]any, 0)
	return &accumulate{
		fn:  func(v any) bool { list = append(list, v); return true },
		out: func() any { return list },
	}
}

func toSet() terminal {
	set := make(map[any]struct{})
	return &accumulate{
		fn:  func(v any) bool { set[v] = struct{}{}; return true },
		out: func() any { return set },
	}
}

// sum adds up the elements in typ, the static sum type of the chain.
func sum(typ *zjit.Type) terminal {
	switch typ {
	case zjit.TypeInt:
		var sum int
		return &accumulate{
			fn:  func(v any) bool { sum += v.(int); return true },
			out: func() any { return sum },
		}
	case zjit.TypeInt64:
		var sum int64
		return &accumulate{
			fn:  func(v any) bool { sum += v.(int64); return true },
			out: func() any { return sum },
		}
	}
	var sum float64
	return &accumulate{
		fn:  func(v any) bool { sum += toFloat(v); return true },
		out: func() any { return sum },
	}
}

// best keeps the first element no later element beats: sign is -1 for min
// and 1 for max.
func best(sign int) terminal {
	best := []any{}
	return &accumulate{
		fn: func(v any) bool {
			if len(best) == 0 || builtin.CompareNatural(v, best[0])*sign > 0 {
				best = []any{v}
			}
			return true
		},
		out: func() any { return best },
	}
}

// match stops at the first element for which pred differs from negate and
// reports found.  An exhausted stream reports !found.
func match(pred func(any) bool, negate, found bool) terminal {
	result := !found
	return &accumulate{
		fn: func(v any) bool {
			if pred(v) != negate {
				result = found
				return false
			}
			return true
		},
		out: func() any { return result },
	}
}

func findFirst() terminal {
	first := []any{}
	return &accumulate{
		fn:  func(v any) bool { first = []any{v}; return false },
		out: func() any { return first },
	}
}

func reduce(fn func(any, any) any) terminal {
	acc := []any{}
	return &accumulate{
		fn: func(v any) bool {
			if len(acc) == 0 {
				acc = []any{v}
			} else {
				acc[0] = fn(acc[0], v)
			}
			return true
		},
		out: func() any { return acc },
	}
}

func forEach(fn func(any)) terminal {
	return &accumulate{
		fn:  func(v any) bool { fn(v); return true },
		out: func() any { return nil },
	}
}

func groupBy(fn func(any) any) terminal {
	groups := make(map[any][]any)
	return &accumulate{
		fn: func(v any) bool {
			key := fn(v)
			groups[key] = append(groups[key], v)
			return true
		},
		out: func() any { return groups },
	}
}

// toMap keeps the last value for a repeated key.
func toMap(key, value func(any) any) terminal {
	m := make(map[any]any)
	return &accumulate{
		fn:  func(v any) bool { m[key(v)] = value(v); return true },
		out: func() any { return m },
	}
}

type pairCounter struct {
	count int
	multi bool
}

func (p *pairCounter) pushPair(_, v any) bool {
	if p.multi {
		p.count += len(v.([]any))
	} else {
		p.count++
	}
	return true
}

func (p *pairCounter) end()        {}
func (p *pairCounter) result() any { return p.count }
