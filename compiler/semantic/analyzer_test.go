package semantic_test

import (
	"testing"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/compiler/semantic"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(c *tag.Catalog, src *tag.Tag, elem *zjit.Type, tags ...*tag.Tag) []*plan.Node {
	var n *query.Node = query.NewSource(src, elem, []any{})
	for _, t := range tags[:len(tags)-1] {
		n = query.New(n, t)
	}
	p := plan.New(c, query.NewTerminal(n, tags[len(tags)-1]))
	semantic.Standard(c).Analyze(p)
	return p.Nodes()
}

func TestCollectionTransfers(t *testing.T) {
	c := tag.Standard()
	nodes := analyze(c, c.SliceSource, zjit.TypeString, c.FilterNulls, c.MapToLong, c.Boxed, c.Sum)
	require.Len(t, nodes, 5)
	assert.Equal(t, "collection(string?)", nodes[0].Props.String())
	assert.Equal(t, "collection(string)", nodes[1].Props.String())
	assert.Same(t, nodes[1], nodes[1].Props.Element.Dep)
	assert.Equal(t, "collection(int64)", nodes[2].Props.String())
	assert.Equal(t, zjit.TypeBoxedInt64, nodes[3].Props.Element.Type)
	assert.False(t, nodes[3].Props.Element.Nullable)
	assert.Equal(t, zjit.TypeInt64, nodes[4].Props.Result)
	assert.Equal(t, "scalar(int64)", nodes[4].Props.String())
}

func TestSourceNullability(t *testing.T) {
	c := tag.Standard()
	nodes := analyze(c, c.NonNullSliceSource, zjit.TypeObject, c.Count)
	assert.False(t, nodes[0].Props.Element.Nullable)
	nodes = analyze(c, c.IntSliceSource, zjit.TypeObject, c.Map, c.Sum)
	assert.Equal(t, zjit.TypeInt, nodes[0].Props.Element.Type)
	assert.Equal(t, "collection(object?)", nodes[1].Props.String())
	assert.Equal(t, zjit.TypeFloat64, nodes[2].Props.Result)
}

func TestMapTransfers(t *testing.T) {
	c := tag.Standard()
	nodes := analyze(c, c.MapSource, zjit.TypeInt, c.FilterKeys, c.MapEachValue, c.MapValues, c.ToList)
	assert.Equal(t, "map[object?]int", nodes[0].Props.String())
	assert.Equal(t, "map[object?]int", nodes[1].Props.String())
	assert.Equal(t, "map[object?]object?", nodes[2].Props.String())
	assert.Equal(t, "collection(object?)", nodes[3].Props.String())
	assert.Equal(t, zjit.TypeList, nodes[4].Props.Result)

	nodes = analyze(c, c.MultimapSource, zjit.TypeString, c.FilterKeys, c.MultimapEntries, c.GroupBy)
	assert.Equal(t, tag.ViewMultimap, nodes[1].Props.View)
	assert.Equal(t, "collection(entry)", nodes[2].Props.String())
	assert.Equal(t, zjit.TypeMultimap, nodes[3].Props.Result)
	assert.Equal(t, zjit.TypeEntry, nodes[3].Props.Key.Type)
	assert.True(t, nodes[3].Props.Key.Nullable)
	assert.Equal(t, zjit.TypeList, nodes[3].Props.Value.Type)
}

func TestRegistrationOrder(t *testing.T) {
	c := tag.Standard()
	a := semantic.New(c)
	var order []string
	a.Register(c.Operation, tag.ViewAny, tag.ViewAny, func(_ plan.Shape, _ *plan.Shape, n *plan.Node) {
		order = append(order, "any:"+n.Tag.Name())
	})
	a.Register(c.Filter, tag.ViewCollection, tag.ViewCollection, func(_ plan.Shape, _ *plan.Shape, n *plan.Node) {
		order = append(order, "filter:"+n.Tag.Name())
	})
	a.Register(c.Filter, tag.ViewMap, tag.ViewCollection, func(_ plan.Shape, _ *plan.Shape, n *plan.Node) {
		order = append(order, "never")
	})
	src := query.NewSource(c.SliceSource, zjit.TypeObject, []any{})
	p := plan.New(c, query.NewTerminal(query.New(src, c.Filter), c.Count))
	a.Analyze(p)
	assert.Equal(t, []string{"any:sliceSource", "any:filter", "filter:filter", "any:count"}, order)
	assert.Panics(t, func() { a.Register(nil, tag.ViewAny, tag.ViewAny, nil) })
}
