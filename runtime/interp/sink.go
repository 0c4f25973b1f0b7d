package interp

import (
	"fmt"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/runtime/builtin"
)

// A sink consumes the elements of a collection view.  Push returns false
// when the sink wants no more input.  End is called exactly once, after the
// last push, even when a sink stopped early.
type sink interface {
	push(any) bool
	end()
}

// A pairSink consumes the entries of a map or multimap view.  For a
// multimap the value is the []any of the key.
type pairSink interface {
	pushPair(key, value any) bool
	end()
}

type filter struct {
	next sink
	pred func(any) bool
}

func (f *filter) push(v any) bool {
	if !f.pred(v) {
		return true
	}
	return f.next.push(v)
}

func (f *filter) end() { f.next.end() }

type mapper struct {
	next sink
	fn   func(any) any
}

func (m *mapper) push(v any) bool { return m.next.push(m.fn(v)) }
func (m *mapper) end()            { m.next.end() }

type flatMapper struct {
	next sink
	fn   func(any) []any
}

func (f *flatMapper) push(v any) bool {
	for _, x := range f.fn(v) {
		if !f.next.push(x) {
			return false
		}
	}
	return true
}

func (f *flatMapper) end() { f.next.end() }

type distinct struct {
	next sink
	seen map[any]struct{}
}

func (d *distinct) push(v any) bool {
	if _, ok := d.seen[v]; ok {
		return true
	}
	d.seen[v] = struct{}{}
	return d.next.push(v)
}

func (d *distinct) end() { d.next.end() }

// limit stops once n elements went through and another one arrives, so an
// upstream peek sees one element more than the limit lets pass.
type limit struct {
	next  sink
	n     int
	taken int
}

func (l *limit) push(v any) bool {
	if l.taken >= l.n {
		return false
	}
	l.taken++
	return l.next.push(v)
}

func (l *limit) end() { l.next.end() }

type skip struct {
	next    sink
	n       int
	skipped int
}

func (s *skip) push(v any) bool {
	if s.skipped < s.n {
		s.skipped++
		return true
	}
	return s.next.push(v)
}

func (s *skip) end() { s.next.end() }

type takeWhile struct {
	next sink
	pred func(any) bool
}

func (t *takeWhile) push(v any) bool {
	if !t.pred(v) {
		return false
	}
	return t.next.push(v)
}

func (t *takeWhile) end() { t.next.end() }

type peek struct {
	next sink
	fn   func(any)
}

func (p *peek) push(v any) bool {
	p.fn(v)
	return p.next.push(v)
}

func (p *peek) end() { p.next.end() }

// buffer holds every element until the end of input, reorders them and only
// then feeds its successor.
type buffer struct {
	next    sink
	vals    []any
	reorder func([]any)
}

func (b *buffer) push(v any) bool {
	b.vals = append(b.vals, v)
	return true
}

func (b *buffer) end() {
	b.reorder(b.vals)
	for _, v := range b.vals {
		if !b.next.push(v) {
			break
		}
	}
	b.next.end()
}

func sortBy(cmp func(any, any) int) func([]any) {
	return func(vals []any) {
		builtin.SortBy(vals, cmp)
	}
}

// Map views.

type filterKeys struct {
	next pairSink
	pred func(any) bool
}

func (f *filterKeys) pushPair(k, v any) bool {
	if !f.pred(k) {
		return true
	}
	return f.next.pushPair(k, v)
}

func (f *filterKeys) end() { f.next.end() }

type filterValues struct {
	next  pairSink
	pred  func(any) bool
	multi bool
}

// pushPair drops the values the predicate rejects.  A multimap key whose
// values are all dropped disappears from the view.
func (f *filterValues) pushPair(k, v any) bool {
	if !f.multi {
		if !f.pred(v) {
			return true
		}
		return f.next.pushPair(k, v)
	}
	var kept []any
	for _, x := range v.([]any) {
		if f.pred(x) {
			kept = append(kept, x)
		}
	}
	if len(kept) == 0 {
		return true
	}
	return f.next.pushPair(k, kept)
}

func (f *filterValues) end() { f.next.end() }

type mapEachValue struct {
	next  pairSink
	fn    func(any) any
	multi bool
}

func (m *mapEachValue) pushPair(k, v any) bool {
	if !m.multi {
		return m.next.pushPair(k, m.fn(v))
	}
	vs := v.([]any)
	out := make([]any, len(vs))
	for i, x := range vs {
		out[i] = m.fn(x)
	}
	return m.next.pushPair(k, out)
}

func (m *mapEachValue) end() { m.next.end() }

type keys struct{ next sink }

func (s *keys) pushPair(k, _ any) bool { return s.next.push(k) }
func (s *keys) end()                   { s.next.end() }

type values struct {
	next  sink
	multi bool
}

func (s *values) pushPair(_, v any) bool {
	if !s.multi {
		return s.next.push(v)
	}
	for _, x := range v.([]any) {
		if !s.next.push(x) {
			return false
		}
	}
	return true
}

func (s *values) end() { s.next.end() }

type entries struct {
	next  sink
	multi bool
}

func (s *entries) pushPair(k, v any) bool {
	if !s.multi {
		return s.next.push(zjit.Entry(k, v))
	}
	for _, x := range v.([]any) {
		if !s.next.push(zjit.Entry(k, x)) {
			return false
		}
	}
	return true
}

func (s *entries) end() { s.next.end() }

func toFloat(v any) float64 {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	panic(fmt.Sprintf("interp: cannot sum %T", v))
}
