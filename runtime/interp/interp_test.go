package interp_test

import (
	"testing"

	"github.com/brimdata/zjit"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/runtime/interp"
	"github.com/brimdata/zjit/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	tag    *tag.Tag
	params []any
}

func run(c *tag.Catalog, src *tag.Tag, elem *zjit.Type, data any, ops ...op) any {
	n := query.NewSource(src, elem, data)
	last := ops[len(ops)-1]
	for _, o := range ops[:len(ops)-1] {
		n = query.New(n, o.tag, o.params...)
	}
	return interp.New(c, nil).Process(query.NewTerminal(n, last.tag, last.params...))
}

func TestLimitStopsUpstream(t *testing.T) {
	c := tag.Standard()
	var seen []any
	out := run(c, c.SliceSource, zjit.TypeObject, []any{1, 2, 3, 4, 5},
		op{c.Peek, []any{func(v any) { seen = append(seen, v) }}},
		op{c.Limit, []any{2}},
		op{c.ToList, nil})
	assert.Equal(t, []any{1, 2}, out)
	// The element that finds the limit full is the last one pulled.
	assert.Equal(t, []any{1, 2, 3}, seen)

	seen = nil
	out = run(c, c.SliceSource, zjit.TypeObject, []any{1, 2, 3},
		op{c.Peek, []any{func(v any) { seen = append(seen, v) }}},
		op{c.Limit, []any{0}},
		op{c.Count, nil})
	assert.Equal(t, 0, out)
	assert.Equal(t, []any{1}, seen)
}

func TestShortCircuitTerminals(t *testing.T) {
	c := tag.Standard()
	var pulled int
	count := op{c.Peek, []any{func(any) { pulled++ }}}
	even := func(v any) bool { return v.(int)%2 == 0 }
	out := run(c, c.SliceSource, zjit.TypeObject, []any{1, 2, 3, 4}, count, op{c.AnyMatch, []any{even}})
	assert.Equal(t, true, out)
	assert.Equal(t, 2, pulled)

	pulled = 0
	out = run(c, c.SliceSource, zjit.TypeObject, []any{1, 2, 3, 4}, count, op{c.FindFirst, nil})
	assert.Equal(t, []any{1}, out)
	assert.Equal(t, 1, pulled)

	out = run(c, c.SliceSource, zjit.TypeObject, []any{}, op{c.AllMatch, []any{even}})
	assert.Equal(t, true, out)
	out = run(c, c.SliceSource, zjit.TypeObject, []any{}, op{c.FindFirst, nil})
	assert.Equal(t, []any{}, out)
	out = run(c, c.SliceSource, zjit.TypeObject, []any{}, op{c.Max, nil})
	assert.Equal(t, []any{}, out)
}

func TestIntermediateStages(t *testing.T) {
	c := tag.Standard()
	data := []any{3, nil, 1, 3, 2, nil, 5}
	out := run(c, c.SliceSource, zjit.TypeObject, data,
		op{c.FilterNulls, nil},
		op{c.Distinct, nil},
		op{c.SortedNaturalReverse, nil},
		op{c.Skip, []any{1}},
		op{c.ToList, nil})
	assert.Equal(t, []any{3, 2, 1}, out)

	out = run(c, c.SliceSource, zjit.TypeObject, []any{1, 2, 3, 1},
		op{c.TakeWhile, []any{func(v any) bool { return v.(int) < 3 }}},
		op{c.FlatMap, []any{func(v any) []any { return []any{v, v} }}},
		op{c.ToList, nil})
	assert.Equal(t, []any{1, 1, 2, 2}, out)

	out = run(c, c.SliceSource, zjit.TypeObject, []any{"bb", "a", "ccc"},
		op{c.SortedBy, []any{func(a, b any) int { return len(a.(string)) - len(b.(string)) }}},
		op{c.Reverse, nil},
		op{c.Reduce, []any{func(a, b any) any { return a.(string) + b.(string) }}})
	assert.Equal(t, []any{"cccbba"}, out)
}

func TestSumFollowsStaticType(t *testing.T) {
	c := tag.Standard()
	out := run(c, c.IntSliceSource, zjit.TypeInt, []int{1, 2, 3}, op{c.Sum, nil})
	assert.Equal(t, 6, out)
	out = run(c, c.SliceSource, zjit.TypeObject, []any{"a", "bb"},
		op{c.MapToLong, []any{func(v any) int64 { return int64(len(v.(string))) }}},
		op{c.Sum, nil})
	assert.Equal(t, int64(3), out)
	out = run(c, c.SliceSource, zjit.TypeObject, []any{1, 2.5}, op{c.Sum, nil})
	assert.Equal(t, 3.5, out)
}

func TestMultimapViews(t *testing.T) {
	c := tag.Standard()
	data := map[any][]any{
		"a": {1, 2},
		"b": {3},
		"c": {},
	}
	odd := func(v any) bool { return v.(int)%2 == 1 }
	out := run(c, c.MultimapSource, zjit.TypeInt, data,
		op{c.FilterValues, []any{odd}},
		op{c.MultimapKeys, nil},
		op{c.ToList, nil})
	assert.ElementsMatch(t, []any{"a", "b"}, out)

	out = run(c, c.MultimapSource, zjit.TypeInt, data, op{c.MultimapValueCount, nil})
	assert.Equal(t, 3, out)
	out = run(c, c.MultimapSource, zjit.TypeInt, data, op{c.Size, nil})
	assert.Equal(t, 3, out)

	out = run(c, c.MultimapSource, zjit.TypeInt, data,
		op{c.MapEachValue, []any{func(v any) any { return v.(int) * 10 }}},
		op{c.MultimapValues, nil},
		op{c.ToList, nil})
	assert.ElementsMatch(t, []any{10, 20, 30}, out)

	out = run(c, c.MultimapSource, zjit.TypeInt, data,
		op{c.FilterKeys, []any{func(k any) bool { return k == "a" }}},
		op{c.MultimapEntries, nil},
		op{c.ToList, nil})
	assert.Equal(t, []any{zjit.Entry("a", 1), zjit.Entry("a", 2)}, out)
}

func TestMapViews(t *testing.T) {
	c := tag.Standard()
	data := map[any]any{"x": 1, "y": 2, "z": 3}
	out := run(c, c.MapSource, zjit.TypeInt, data,
		op{c.FilterValues, []any{func(v any) bool { return v.(int) > 1 }}},
		op{c.MapKeys, nil},
		op{c.ToSet, nil})
	assert.Equal(t, map[any]struct{}{"y": {}, "z": {}}, out)
	out = run(c, c.MapSource, zjit.TypeInt, data,
		op{c.MapValues, nil},
		op{c.GroupBy, []any{func(v any) any { return v.(int) % 2 }}})
	groups := out.(map[any][]any)
	assert.ElementsMatch(t, []any{1, 3}, groups[1])
	assert.Equal(t, []any{2}, groups[0])
}

func TestInvalidChains(t *testing.T) {
	c := tag.Standard()
	err := func(f func()) (err error) {
		defer func() {
			err, _ = recover().(error)
		}()
		f()
		return nil
	}
	e := err(func() {
		run(c, c.SliceSource, zjit.TypeObject, []any{1}, op{c.MapKeys, nil}, op{c.ToList, nil})
	})
	require.Error(t, e)
	assert.True(t, zqe.IsKind(e, zqe.Invalid))
	e = err(func() {
		run(c, c.SliceSource, zjit.TypeObject, "not a slice", op{c.Count, nil})
	})
	require.Error(t, e)
	assert.True(t, zqe.IsKind(e, zqe.Invalid))
}
