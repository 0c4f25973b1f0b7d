package stream

import (
	"hash/fnv"
	"testing"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/config"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	words = []any{"pear", "apple", nil, "fig", "apple", "kiwi"}
	nums  = []any{5, 3, 8, 1, 9, 2, 8}
	ints  = []int{4, 1, 3, 1, 5}
	table = map[any]any{"a": 1, "b": 2, "c": 3, "d": 4}
	multi = map[any][]any{"x": {1, 2}, "y": {3}, "z": {4, 5, 6}}
)

func terminal(s Stream, t *tag.Tag, params ...any) *query.Terminal {
	return query.NewTerminal(s.node, t, params...)
}

func isEven(v any) bool { return v.(int)%2 == 0 }

func length(v any) any { return len(v.(string)) }

func hash(v any) int {
	h := fnv.New32a()
	h.Write([]byte(v.(string)))
	return int(h.Sum32())
}

// TestDifferential runs each chain through the cache and through the
// interpreter and expects the same result.
func TestDifferential(t *testing.T) {
	cases := []struct {
		name string
		// build returns a fresh chain on every call.
		build       func(e *Engine, c *tag.Catalog) *query.Terminal
		interpreted bool
		unordered   bool
	}{
		{
			name: "count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(words), c.Count)
			},
		},
		{
			name: "filterNulls toList",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(words).FilterNulls(), c.ToList)
			},
		},
		{
			name: "filter map toList",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Filter(isEven).Map(func(v any) any { return v.(int) * 10 }), c.ToList)
			},
		},
		{
			name: "fused filters",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.Of(nums).Filter(isEven).Filter(func(v any) bool { return v.(int) > 2 })
				return terminal(s, c.ToList)
			},
		},
		{
			name: "distinct toSet",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(words).Distinct(), c.ToSet)
			},
		},
		{
			name: "sorted toList",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(words).Sorted(), c.ToList)
			},
		},
		{
			name: "sorted reverse limit",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Sorted().Reverse().Limit(3), c.ToList)
			},
		},
		{
			name: "skip limit",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Skip(2).Limit(3), c.ToList)
			},
		},
		{
			name: "limit past end",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Skip(5).Limit(10), c.Count)
			},
		},
		{
			name: "stream limit",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Filter(isEven).Limit(2), c.ToList)
			},
		},
		{
			name: "stream skip",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Filter(isEven).Skip(1), c.ToList)
			},
		},
		{
			name: "sortedBy findFirst",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.Of(words).FilterNulls().SortedBy(func(a, b any) int {
					return len(a.(string)) - len(b.(string))
				})
				return terminal(s, c.FindFirst)
			},
		},
		{
			name: "findFirst",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Filter(isEven), c.FindFirst)
			},
		},
		{
			name: "findFirst empty",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of([]any{}), c.FindFirst)
			},
		},
		{
			name: "min",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(words), c.Min)
			},
		},
		{
			name: "max sorted",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Sorted(), c.Max)
			},
		},
		{
			name: "min empty",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Filter(func(any) bool { return false }), c.Min)
			},
		},
		{
			name: "sum ints",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfInts(ints), c.Sum)
			},
		},
		{
			name: "sum longs",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.OfNonNull([]any{"a", "bb", "ccc"}).MapToLong(func(v any) int64 { return int64(len(v.(string))) })
				return terminal(s, c.Sum)
			},
		},
		{
			name: "sum boxed doubles",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.Of(nums).MapToDouble(func(v any) float64 { return float64(v.(int)) / 2 }).Boxed()
				return terminal(s, c.Sum)
			},
		},
		{
			name: "sum objects",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums), c.Sum)
			},
			interpreted: true,
		},
		{
			name: "anyMatch",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums), c.AnyMatch, func(v any) bool { return v.(int) > 8 })
			},
		},
		{
			name: "allMatch",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).Filter(isEven), c.AllMatch, isEven)
			},
		},
		{
			name: "noneMatch",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums), c.NoneMatch, func(v any) bool { return v.(int) > 8 })
			},
		},
		{
			name: "reduce",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums), c.Reduce, func(a, b any) any { return a.(int) + b.(int) })
			},
		},
		{
			name: "forEach",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums), c.ForEach, func(any) {})
			},
		},
		{
			name: "groupBy",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(words).FilterNulls(), c.GroupBy, length)
			},
		},
		{
			name: "toMap",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(words).FilterNulls(), c.ToMap, length, func(v any) any { return v })
			},
		},
		{
			name: "int slice reverse",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfInts(ints).Reverse(), c.ToList)
			},
		},
		{
			name: "int slice boxed distinct",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfInts(ints).Boxed().Distinct(), c.ToList)
			},
		},
		{
			name: "map count commutes with reverse",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.Of(nums).Map(func(v any) any { return v.(int) * 2 }).Reverse().Sorted()
				return terminal(s, c.Count)
			},
		},
		{
			name: "map keys",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMap(table).Keys().Distinct(), c.ToList)
			},
			unordered: true,
		},
		{
			name: "map key count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMap(table).MapEachValue(func(v any) any { return v }).Keys(), c.Count)
			},
		},
		{
			name: "filtered map values",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.OfMap(table).FilterKeys(func(k any) bool { return k != "b" }).FilterValues(isEven).Values()
				return terminal(s, c.ToList)
			},
			unordered: true,
		},
		{
			name: "map entries",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.OfMap(table).MapEachValue(func(v any) any { return v.(int) * v.(int) }).Entries()
				return terminal(s, c.ToList)
			},
			unordered: true,
		},
		{
			name: "map values sum",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMap(table).Values().MapToInt(func(v any) int { return v.(int) }), c.Sum)
			},
		},
		{
			name: "multimap value count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMultimap(multi).Values(), c.Count)
			},
		},
		{
			name: "map value count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMap(table).Values(), c.Count)
			},
		},
		{
			name: "filtered map key count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMap(table).FilterKeys(func(k any) bool { return k != "b" }).Keys(), c.Count)
			},
		},
		{
			name: "filtered map value count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMap(table).FilterValues(isEven).Values(), c.Count)
			},
		},
		{
			name: "multimap key count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMultimap(multi).Keys(), c.Count)
			},
		},
		{
			name: "filtered multimap value count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMultimap(multi).FilterKeys(func(k any) bool { return k != "y" }).Values(), c.Count)
			},
		},
		{
			name: "multimap filterValues value count",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMultimap(multi).FilterValues(isEven).Values(), c.Count)
			},
			interpreted: true,
		},
		{
			name: "multimap filtered values",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.OfMultimap(multi).FilterKeys(func(k any) bool { return k != "y" }).Values().Filter(isEven)
				return terminal(s, c.ToList)
			},
			unordered: true,
		},
		{
			name: "multimap entries",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMultimap(multi).Entries(), c.ToList)
			},
			unordered: true,
		},
		{
			name: "multimap filterValues",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.OfMultimap(multi).FilterValues(isEven).Keys(), c.ToList)
			},
			interpreted: true,
			unordered:   true,
		},
		{
			name: "flatMap",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				s := e.Of(nums).FlatMap(func(v any) []any { return []any{v, v} })
				return terminal(s, c.ToList)
			},
			interpreted: true,
		},
		{
			name: "takeWhile",
			build: func(e *Engine, c *tag.Catalog) *query.Terminal {
				return terminal(e.Of(nums).TakeWhile(func(v any) bool { return v.(int) != 9 }), c.ToList)
			},
			interpreted: true,
		},
	}
	e := NewDefault()
	c := e.Catalog()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			expected := e.Interpret(tc.build(e, c))
			term := tc.build(e, c)
			actual := e.Execute(term)
			if tc.unordered {
				assert.ElementsMatch(t, expected, actual)
			} else {
				assert.Equal(t, expected, actual)
			}
			a := e.Cache().Peek(term)
			require.NotNil(t, a)
			assert.Equal(t, !tc.interpreted, a.Compiled())
			// A second chain of the same shape hits the cache.
			assert.Same(t, a, e.Cache().Get(tc.build(e, c)))
		})
	}
}

func TestDedupScenario(t *testing.T) {
	e := NewDefault()
	build := func() Stream {
		return e.OfType(zjit.TypeString, []any{"A", "B", nil, "C", "C"}).
			FilterNulls().
			Distinct().
			Filter(func(v any) bool { return v != "B" }).
			MapToInt(hash).
			Distinct()
	}
	expected := map[any]struct{}{hash("A"): {}, hash("C"): {}}
	assert.Equal(t, expected, build().ToSet())
	assert.Equal(t, expected, e.Interpret(terminal(build(), e.Catalog().ToSet)))
	x, err := e.Compiler().Explain(terminal(build(), e.Catalog().ToSet))
	require.NoError(t, err)
	// Nothing is redundant: the string elements may be null and mapToInt
	// can collide.
	assert.Equal(t, "sliceSource -> filterNulls -> distinct -> filter -> mapToInt -> distinct -> toSet", x.Simplified)
	assert.Equal(t, "sliceSource -> loop -> filterNulls -> distinct -> filter -> mapToInt -> distinct -> toSet", x.Plan)
}

func TestViewCounts(t *testing.T) {
	e := NewDefault()
	assert.Equal(t, 4, e.OfMap(table).Keys().Count())
	assert.Equal(t, 4, e.OfMap(table).Values().Count())
	assert.Equal(t, 3, e.OfMap(table).FilterKeys(func(k any) bool { return k != "b" }).Keys().Count())
	assert.Equal(t, 2, e.OfMap(table).FilterValues(isEven).Values().Count())
	assert.Equal(t, 6, e.OfMultimap(multi).Values().Count())
	assert.Equal(t, 5, e.OfMultimap(multi).FilterKeys(func(k any) bool { return k != "y" }).Values().Count())
	assert.Equal(t, 3, e.OfMultimap(multi).FilterValues(isEven).Values().Count())
	assert.Equal(t, 2, e.OfMultimap(multi).FilterValues(isEven).Keys().Count())
}

// The declared element type changes what the compiler may assume, so
// chains that differ only in it must not share a program.
func TestElementTypeSeparatesShapes(t *testing.T) {
	e := NewDefault()
	assert.Equal(t, 3, e.OfType(zjit.TypeInt, []any{1, 2, 3}).FilterNulls().Count())
	assert.Equal(t, 2, e.Of([]any{1, nil, 3}).FilterNulls().Count())
	assert.Equal(t, 2, e.Interpret(terminal(e.Of([]any{1, nil, 3}).FilterNulls(), e.Catalog().Count)))

	assert.Equal(t, 3, e.OfType(zjit.TypeBoxedInt, []any{1, 2}).Sum())
	assert.Equal(t, 4.0, e.Of([]any{1.5, 2.5}).Sum())

	c := e.Catalog()
	typed := e.Cache().Peek(terminal(e.OfType(zjit.TypeInt, []any{}).FilterNulls(), c.Count))
	untyped := e.Cache().Peek(terminal(e.Of([]any{}).FilterNulls(), c.Count))
	require.NotNil(t, typed)
	require.NotNil(t, untyped)
	assert.NotSame(t, typed, untyped)
	require.True(t, typed.Compiled())
	assert.Contains(t, typed.Program.Unit.Header, "simplified: sliceSource -> count")
}

func TestSortedReverseSharesExecutor(t *testing.T) {
	e := NewDefault()
	c := e.Catalog()
	a1 := e.Cache().Get(terminal(e.Of(nums).Sorted().Reverse(), c.ToList))
	a2 := e.Cache().Get(terminal(e.Of(nums).SortedReverse(), c.ToList))
	require.True(t, a1.Compiled())
	require.True(t, a2.Compiled())
	assert.NotSame(t, a1, a2)
	assert.Equal(t, a1.Program.Unit.Func, a2.Program.Unit.Func)
	assert.Same(t, a1.Program.Exec, a2.Program.Exec)
	assert.Equal(t, []any{9, 8, 8, 5, 3, 2, 1}, e.Of(nums).Sorted().Reverse().ToList())
	assert.Equal(t, []any{9, 8, 8, 5, 3, 2, 1}, e.Of(nums).SortedReverse().ToList())
}

func TestSortedReverseWithoutMemo(t *testing.T) {
	conf := config.Default()
	conf.MemoSize = 0
	e, err := New(conf, nil, nil)
	require.NoError(t, err)
	c := e.Catalog()
	a1 := e.Cache().Get(terminal(e.Of(nums).Sorted().Reverse(), c.ToList))
	a2 := e.Cache().Get(terminal(e.Of(nums).SortedReverse(), c.ToList))
	require.True(t, a1.Compiled())
	require.True(t, a2.Compiled())
	assert.Equal(t, a1.Program.Unit.Func, a2.Program.Unit.Func)
	assert.NotSame(t, a1.Program.Exec, a2.Program.Exec)
	assert.Equal(t, e.Of(nums).Sorted().Reverse().ToList(), e.Of(nums).SortedReverse().ToList())
}

func TestSourceIsNotModified(t *testing.T) {
	e := NewDefault()
	data := []any{3, 1, 2}
	assert.Equal(t, []any{1, 2, 3}, e.Of(data).Sorted().ToList())
	assert.Equal(t, []any{2, 1, 3}, e.Of(data).Reverse().ToList())
	assert.Equal(t, []any{3, 1, 2}, data)
	list := e.Of(data).ToList()
	list[0] = 0
	assert.Equal(t, []any{3, 1, 2}, data)
}

func TestPeekSeesOnePastLimit(t *testing.T) {
	e := NewDefault()
	var compiled, interpreted []any
	build := func(seen *[]any) Stream {
		return e.Of(nums).Peek(func(v any) { *seen = append(*seen, v) }).Limit(2)
	}
	assert.Equal(t, []any{5, 3}, build(&compiled).ToList())
	assert.Equal(t, []any{5, 3}, e.Interpret(terminal(build(&interpreted), e.Catalog().ToList)))
	assert.Equal(t, []any{5, 3, 8}, compiled)
	assert.Equal(t, compiled, interpreted)
}

func TestTerminalResults(t *testing.T) {
	e := NewDefault()
	v, ok := e.Of(nums).Max()
	assert.True(t, ok)
	assert.Equal(t, 9, v)
	_, ok = e.Of([]any{}).Min()
	assert.False(t, ok)
	v, ok = e.Of(nums).Reduce(func(a, b any) any { return a.(int) * b.(int) })
	assert.True(t, ok)
	assert.Equal(t, 5*3*8*1*9*2*8, v)
	assert.Equal(t, 14, e.OfInts(ints).Sum())
	assert.Equal(t, int64(6), e.OfNonNull([]any{"a", "bb", "ccc"}).MapToLong(func(v any) int64 { return int64(len(v.(string))) }).Sum())
	assert.Equal(t, 4, e.OfMap(table).Size())
	assert.Equal(t, 3, e.OfMultimap(multi).Size())
	assert.Equal(t, 6, e.OfMultimap(multi).ValueCount())
	var count int
	e.Of(words).FilterNulls().ForEach(func(any) { count++ })
	assert.Equal(t, 5, count)
	groups := e.Of(words).FilterNulls().GroupBy(length)
	assert.Equal(t, []any{3, 4, 5}, zjit.SortedKeys(groups))
	assert.Equal(t, []any{"pear", "kiwi"}, groups[4])
}

func TestNegativeArguments(t *testing.T) {
	e := NewDefault()
	assert.Panics(t, func() { e.Of(nums).Limit(-1) })
	assert.Panics(t, func() { e.Of(nums).Skip(-1) })
}

func TestViewsAreValues(t *testing.T) {
	e := NewDefault()
	base := e.Of(nums).Filter(isEven)
	assert.Equal(t, 3, base.Count())
	assert.Equal(t, []any{8, 2, 8}, base.ToList())
	assert.Equal(t, []any{8, 8}, base.Filter(func(v any) bool { return v.(int) > 2 }).ToList())
	assert.Equal(t, 3, base.Count())
}
