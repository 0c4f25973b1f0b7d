package semantic

import (
	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/tag"
)

func registerStandard(a *Analyzer, c *tag.Catalog) {
	all, coll, scalar := tag.ViewAny, tag.ViewCollection, tag.ViewScalar

	// Sources.
	a.Register(c.CollectionSource, all, coll, func(_ plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element = plan.Of(n.Elem, n.Elem.Nullable(), n)
	})
	a.Register(c.NonNullSliceSource, all, coll, func(_ plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element.Nullable = false
	})
	a.Register(c.IntSliceSource, all, coll, func(_ plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element = plan.Of(zjit.TypeInt, false, n)
	})
	mapSource := func(_ plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Key = plan.Of(zjit.TypeObject, true, n)
		out.Value = plan.Of(n.Elem, n.Elem.Nullable(), n)
	}
	a.Register(c.MapSource, all, tag.ViewMap, mapSource)
	a.Register(c.MultimapSource, all, tag.ViewMultimap, mapSource)

	// Element transforms.
	a.Register(c.FilterNulls, all, coll, func(_ plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element.Nullable = false
		out.Element.Dep = n
	})
	a.Register(c.Map, all, coll, func(_ plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element = plan.Of(zjit.TypeObject, true, n)
	})
	a.Register(c.FlatMap, all, coll, func(_ plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element = plan.Of(zjit.TypeObject, true, n)
	})
	numeric := func(t *zjit.Type) Transfer {
		return func(in plan.Shape, out *plan.Shape, n *plan.Node) {
			// A primitive result is never null whatever the source was.
			out.Element = plan.Of(t, in.Element.Nullable && t.Nullable(), n)
		}
	}
	a.Register(c.MapToInt, all, coll, numeric(zjit.TypeInt))
	a.Register(c.MapToLong, all, coll, numeric(zjit.TypeInt64))
	a.Register(c.MapToDouble, all, coll, numeric(zjit.TypeFloat64))
	a.Register(c.Boxed, all, coll, func(in plan.Shape, out *plan.Shape, n *plan.Node) {
		if !in.Element.Known() {
			return
		}
		out.Element = plan.Of(in.Element.Type.Boxed(), in.Element.Nullable, n)
	})

	// Map views.
	a.Register(c.Keys, all, coll, func(in plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element = in.Key
	})
	a.Register(c.Values, all, coll, func(in plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element = in.Value
	})
	a.Register(c.Entries, all, coll, func(in plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Element = plan.Of(zjit.TypeEntry, false, n)
	})
	a.Register(c.MapEachValue, all, tag.ViewMap, func(in plan.Shape, out *plan.Shape, n *plan.Node) {
		out.Value = plan.Of(zjit.TypeObject, true, n)
	})
	a.Register(c.Intermediate, tag.ViewMultimap, tag.ViewMap, func(in plan.Shape, out *plan.Shape, n *plan.Node) {
		// Map-view operations keep the multimap view they are applied to.
		out.View = tag.ViewMultimap
	})

	// Terminals.
	result := func(t *zjit.Type) Transfer {
		return func(_ plan.Shape, out *plan.Shape, _ *plan.Node) {
			out.Result = t
		}
	}
	a.Register(c.Count, all, scalar, result(zjit.TypeInt))
	a.Register(c.Size, all, scalar, result(zjit.TypeInt))
	a.Register(c.MultimapValueCount, all, scalar, result(zjit.TypeInt))
	a.Register(c.ToList, all, scalar, result(zjit.TypeList))
	a.Register(c.ToSet, all, scalar, result(zjit.TypeSet))
	a.Register(c.ToMap, all, scalar, result(zjit.TypeMap))
	for _, t := range []*tag.Tag{c.Min, c.Max, c.FindFirst, c.Reduce} {
		a.Register(t, all, scalar, result(zjit.TypeList))
	}
	for _, t := range []*tag.Tag{c.AnyMatch, c.AllMatch, c.NoneMatch} {
		a.Register(t, all, scalar, result(zjit.TypeBool))
	}
	a.Register(c.ForEach, all, scalar, result(zjit.TypeObject))
	a.Register(c.Sum, all, scalar, func(in plan.Shape, out *plan.Shape, _ *plan.Node) {
		out.Result = SumType(in.Element)
	})
	a.Register(c.GroupBy, all, scalar, func(in plan.Shape, out *plan.Shape, n *plan.Node) {
		key := zjit.TypeObject
		if in.Element.Known() {
			key = in.Element.Type.Boxed()
		}
		out.Key = plan.Of(key, true, n)
		out.Value = plan.Of(zjit.TypeList, false, n)
		out.Result = zjit.TypeMultimap
	})
}

// SumType is the type of the sum of a stream with properties p: the
// primitive numeric kind of its elements, or float64 when the elements are
// not statically numeric.
func SumType(p plan.Properties) *zjit.Type {
	if p.Known() && p.Type.IsNumeric() {
		return p.Type.Unboxed()
	}
	return zjit.TypeFloat64
}
