package stream

import (
	"fmt"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
)

// Stream is a lazy view of a sequence of elements.  Views are values:
// every operation returns a new view and leaves its receiver usable.
type Stream struct {
	engine *Engine
	node   *query.Node
}

func (s Stream) then(t *tag.Tag, params ...any) Stream {
	return Stream{engine: s.engine, node: query.New(s.node, t, params...)}
}

func (s Stream) run(t *tag.Tag, params ...any) any {
	return s.engine.Execute(query.NewTerminal(s.node, t, params...))
}

func (s Stream) Filter(pred func(any) bool) Stream {
	return s.then(s.engine.catalog.Filter, pred)
}

func (s Stream) FilterNulls() Stream {
	return s.then(s.engine.catalog.FilterNulls)
}

func (s Stream) Map(fn func(any) any) Stream {
	return s.then(s.engine.catalog.Map, fn)
}

func (s Stream) MapToInt(fn func(any) int) Stream {
	return s.then(s.engine.catalog.MapToInt, fn)
}

func (s Stream) MapToLong(fn func(any) int64) Stream {
	return s.then(s.engine.catalog.MapToLong, fn)
}

func (s Stream) MapToDouble(fn func(any) float64) Stream {
	return s.then(s.engine.catalog.MapToDouble, fn)
}

func (s Stream) Boxed() Stream {
	return s.then(s.engine.catalog.Boxed)
}

func (s Stream) FlatMap(fn func(any) []any) Stream {
	return s.then(s.engine.catalog.FlatMap, fn)
}

func (s Stream) Distinct() Stream {
	return s.then(s.engine.catalog.Distinct)
}

// Sorted orders the elements naturally.  The sort is stable.
func (s Stream) Sorted() Stream {
	return s.then(s.engine.catalog.SortedNatural)
}

func (s Stream) SortedReverse() Stream {
	return s.then(s.engine.catalog.SortedNaturalReverse)
}

// SortedBy orders the elements by cmp, which returns a negative number,
// zero or a positive number.  The sort is stable.
func (s Stream) SortedBy(cmp func(any, any) int) Stream {
	return s.then(s.engine.catalog.SortedBy, cmp)
}

func (s Stream) Reverse() Stream {
	return s.then(s.engine.catalog.Reverse)
}

func (s Stream) Limit(n int) Stream {
	if n < 0 {
		panic(fmt.Sprintf("stream: negative limit %d", n))
	}
	return s.then(s.engine.catalog.Limit, n)
}

func (s Stream) Skip(n int) Stream {
	if n < 0 {
		panic(fmt.Sprintf("stream: negative skip %d", n))
	}
	return s.then(s.engine.catalog.Skip, n)
}

func (s Stream) TakeWhile(pred func(any) bool) Stream {
	return s.then(s.engine.catalog.TakeWhile, pred)
}

func (s Stream) Peek(fn func(any)) Stream {
	return s.then(s.engine.catalog.Peek, fn)
}

func (s Stream) ToList() []any {
	return s.run(s.engine.catalog.ToList).([]any)
}

func (s Stream) ToSet() map[any]struct{} {
	return s.run(s.engine.catalog.ToSet).(map[any]struct{})
}

func (s Stream) Count() int {
	return s.run(s.engine.catalog.Count).(int)
}

// Sum returns an int, int64 or float64 depending on the static type of the
// elements.  Elements of unknown type are summed as float64.
func (s Stream) Sum() any {
	return s.run(s.engine.catalog.Sum)
}

func (s Stream) Min() (any, bool) {
	return zjit.Optional(s.run(s.engine.catalog.Min))
}

func (s Stream) Max() (any, bool) {
	return zjit.Optional(s.run(s.engine.catalog.Max))
}

func (s Stream) AnyMatch(pred func(any) bool) bool {
	return s.run(s.engine.catalog.AnyMatch, pred).(bool)
}

func (s Stream) AllMatch(pred func(any) bool) bool {
	return s.run(s.engine.catalog.AllMatch, pred).(bool)
}

func (s Stream) NoneMatch(pred func(any) bool) bool {
	return s.run(s.engine.catalog.NoneMatch, pred).(bool)
}

func (s Stream) FindFirst() (any, bool) {
	return zjit.Optional(s.run(s.engine.catalog.FindFirst))
}

func (s Stream) Reduce(fn func(any, any) any) (any, bool) {
	return zjit.Optional(s.run(s.engine.catalog.Reduce, fn))
}

func (s Stream) ForEach(fn func(any)) {
	s.run(s.engine.catalog.ForEach, fn)
}

func (s Stream) GroupBy(key func(any) any) map[any][]any {
	return s.run(s.engine.catalog.GroupBy, key).(map[any][]any)
}

// ToMap keeps the last value for a repeated key.
func (s Stream) ToMap(key, value func(any) any) map[any]any {
	return s.run(s.engine.catalog.ToMap, key, value).(map[any]any)
}
