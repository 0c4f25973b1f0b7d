package pipeline_test

import (
	"testing"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/compiler/kernel"
	"github.com/brimdata/zjit/compiler/pipeline"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/compiler/rewrite"
	"github.com/brimdata/zjit/compiler/semantic"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepare(c *tag.Catalog, tags ...*tag.Tag) *plan.Plan {
	var n *query.Node = query.NewSource(tags[0], zjit.TypeObject, []any{})
	for _, t := range tags[1 : len(tags)-1] {
		n = query.New(n, t, t.Name())
	}
	p := plan.New(c, query.NewTerminal(n, tags[len(tags)-1]))
	rewrite.NewEngine(rewrite.Standard(c), semantic.Standard(c), nil).Run(p)
	return p
}

func TestPasses(t *testing.T) {
	c := tag.Standard()
	k := kernel.Standard(c)
	cases := []struct {
		name  string
		tags  []*tag.Tag
		chain string
		tree  string
	}{
		{
			name:  "streaming filter",
			tags:  []*tag.Tag{c.SliceSource, c.Filter, c.ToList},
			chain: "sliceSource -> loop -> filter -> toList",
			tree: `sliceSource bounded->bounded
segment
  loop bounded->element
  filter element->element
  toList element->element
`,
		},
		{
			name:  "closed form count",
			tags:  []*tag.Tag{c.SliceSource, c.Count},
			chain: "sliceSource -> count",
			tree: `sliceSource bounded->bounded
count bounded->bounded
`,
		},
		{
			name:  "collect before sort",
			tags:  []*tag.Tag{c.SliceSource, c.Filter, c.SortedNatural, c.Limit, c.ToList},
			chain: "sliceSource -> loop -> filter -> collect -> sortedNatural -> limit -> toList",
			tree: `sliceSource bounded->bounded
segment
  loop bounded->element
  filter element->element
  collect element->bounded
sortedNatural bounded->bounded
limit bounded->bounded
toList bounded->bounded
`,
		},
		{
			name:  "clone before sort",
			tags:  []*tag.Tag{c.SliceSource, c.SortedNatural, c.ToList},
			chain: "sliceSource -> clone -> sortedNatural -> toList",
		},
		{
			name:  "clone ints before reverse",
			tags:  []*tag.Tag{c.IntSliceSource, c.Reverse, c.ToList},
			chain: "intSliceSource -> clone -> reverse -> toList",
		},
		{
			name:  "map view",
			tags:  []*tag.Tag{c.MapSource, c.FilterKeys, c.MapKeys, c.ToList},
			chain: "mapSource -> loop -> filterKeys -> mapKeys -> toList",
			tree: `mapSource map->map
segment
  loop map->pair
  filterKeys pair->pair
  mapKeys pair->element
  toList element->element
`,
		},
		{
			name:  "map size",
			tags:  []*tag.Tag{c.MapSource, c.MapKeys, c.Count},
			chain: "mapSource -> size",
			tree: `mapSource map->map
size map->map
`,
		},
		{
			name:  "two segments",
			tags:  []*tag.Tag{c.SliceSource, c.Map, c.SortedBy, c.Filter, c.FindFirst},
			chain: "sliceSource -> loop -> map -> collect -> sortedBy -> loop -> filter -> findFirst",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := prepare(c, tc.tags...)
			require.NoError(t, pipeline.Run(p, k, nil))
			assert.Equal(t, tc.chain, p.String())
			if tc.tree != "" {
				assert.Equal(t, tc.tree, p.Tree())
			}
			for _, n := range p.Nodes() {
				assert.Equal(t, !n.Is(c.Synthetic), n.Real, n.Tag.Name())
			}
		})
	}
}

func TestUnsupported(t *testing.T) {
	c := tag.Standard()
	k := kernel.Standard(c)
	for _, tags := range [][]*tag.Tag{
		{c.SliceSource, c.FlatMap, c.ToList},
		{c.SliceSource, c.TakeWhile, c.Count},
	} {
		err := pipeline.Run(prepare(c, tags...), k, nil)
		assert.True(t, zqe.IsUnsupported(err), "%v", err)
	}
}

func TestPassOrder(t *testing.T) {
	var names []string
	for _, pass := range pipeline.Passes() {
		names = append(names, pass.Name)
	}
	assert.Equal(t, []string{"markReal", "groupSegments", "introduceLoops", "introduceArrays", "simplifyReducers"}, names)
}
