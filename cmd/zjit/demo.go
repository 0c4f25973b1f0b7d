package main

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A demo builds one fresh chain of a fixed shape each time it is called.
type demo struct {
	short string
	build func(c *tag.Catalog) *query.Terminal
}

func hash(v any) int {
	h := fnv.New32a()
	h.Write([]byte(v.(string)))
	return int(h.Sum32())
}

var demos = map[string]demo{
	"dedup": {
		short: "filterNulls, distinct, filter, mapToInt, distinct, toSet over strings",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.SliceSource, zjit.TypeString, []any{"A", "B", nil, "C", "C"})
			n = query.New(n, c.FilterNulls)
			n = query.New(n, c.Distinct)
			n = query.New(n, c.Filter, func(v any) bool { return v != "B" })
			n = query.New(n, c.MapToInt, hash)
			n = query.New(n, c.Distinct)
			return query.NewTerminal(n, c.ToSet)
		},
	},
	"sorted-reverse": {
		short: "sortedNatural then reverse, rewritten to one reverse sort",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.SliceSource, zjit.TypeObject, []any{3, 1, 2})
			n = query.New(n, c.SortedNatural)
			n = query.New(n, c.Reverse)
			return query.NewTerminal(n, c.ToList)
		},
	},
	"top": {
		short: "the three largest even numbers",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.IntSliceSource, zjit.TypeInt, []int{5, 8, 2, 9, 4, 6, 10})
			n = query.New(n, c.Filter, func(v any) bool { return v.(int)%2 == 0 })
			n = query.New(n, c.SortedNaturalReverse)
			n = query.New(n, c.Limit, 3)
			return query.NewTerminal(n, c.ToList)
		},
	},
	"sum": {
		short: "sum of string lengths",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.NonNullSliceSource, zjit.TypeString, []any{"zed", "zjit", "query"})
			n = query.New(n, c.MapToLong, func(v any) int64 { return int64(len(v.(string))) })
			return query.NewTerminal(n, c.Sum)
		},
	},
	"group": {
		short: "words grouped by first letter",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.SliceSource, zjit.TypeString, []any{"apple", "avocado", "banana", nil})
			n = query.New(n, c.FilterNulls)
			return query.NewTerminal(n, c.GroupBy, func(v any) any { return v.(string)[:1] })
		},
	},
	"keys": {
		short: "number of distinct keys of a map after a value transform",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.MapSource, zjit.TypeObject, map[any]any{"a": 1, "b": 2})
			n = query.New(n, c.MapEachValue, func(v any) any { return v })
			n = query.New(n, c.MapKeys)
			n = query.New(n, c.Distinct)
			return query.NewTerminal(n, c.Count)
		},
	},
	"values": {
		short: "number of values in a multimap",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.MultimapSource, zjit.TypeObject, map[any][]any{"a": {1, 2}, "b": {3}})
			n = query.New(n, c.MultimapValues)
			return query.NewTerminal(n, c.Count)
		},
	},
	"flatten": {
		short: "a flatMap, which only the interpreter runs",
		build: func(c *tag.Catalog) *query.Terminal {
			n := query.NewSource(c.SliceSource, zjit.TypeObject, []any{"a b", "c"})
			n = query.New(n, c.FlatMap, func(v any) []any {
				var out []any
				for _, s := range strings.Fields(v.(string)) {
					out = append(out, s)
				}
				return out
			})
			return query.NewTerminal(n, c.Count)
		},
	},
}

func demoNames() []string {
	names := maps.Keys(demos)
	slices.Sort(names)
	return names
}

func lookupDemo(name string) (demo, error) {
	d, ok := demos[name]
	if !ok {
		return demo{}, fmt.Errorf("no demo named %q (see \"zjit demos\")", name)
	}
	return d, nil
}

func newDemosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demos",
		Short: "list the demo chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range demoNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s%s\n", name, demos[name].short)
			}
			return nil
		},
	}
}
