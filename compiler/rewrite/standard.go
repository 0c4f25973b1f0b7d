package rewrite

import (
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/tag"
)

// Standard returns the standard rule groups in their fixed order.  The order
// is load-bearing: when rules from different groups match the same chain the
// earlier group wins.
func Standard(c *tag.Catalog) []Group {
	return []Group{
		{
			Name: "collection",
			Rules: []Rule{
				Eliminate2(c.Reverse, c.Reverse),
				Replace2With1(c.SortedNatural, c.Reverse, c.SortedNaturalReverse),
				Replace2With1(c.SortedNaturalReverse, c.Reverse, c.SortedNatural),
				Eliminate(c.Distinct, NextIsOneOf(c.Distinct)),
				Replace2With1(c.Filter, c.Filter, c.Filter),
				Replace2With1(c.Map, c.Map, c.Map),
				// A full natural sort fixes the order whatever came before.
				Eliminate(c.Reorder, NextIsOneOf(c.SortedNatural, c.SortedNaturalReverse)),
				Eliminate(c.Reorder, NextIsZeroOrMoreOf(c.Neutral).FollowedByOneOf(c.OrderInsensitive)),
				Replace2With2AndSwapParameters(c.Map, c.Reverse, c.Reverse, c.Map),
			},
		},
		{
			Name: "map",
			Rules: []Rule{
				// Relies on composite.Map.UniqueKeys.
				Eliminate(c.Distinct, PreviousIsOneOf(c.Keys)),
				Eliminate(c.MapEachValue, NextIsOneOf(c.Keys, c.Size)),
			},
		},
		{
			Name: "multimap",
			Rules: []Rule{
				Replace2With1(c.MultimapValues, c.Count, c.MultimapValueCount),
			},
		},
		{
			Name:       "nullability",
			NeedsTypes: true,
			Rules: []Rule{
				Eliminate(c.FilterNulls, PreviousIs(func(p plan.Properties) bool {
					return !p.Nullable
				})),
				Eliminate(c.Boxed, PreviousIs(func(p plan.Properties) bool {
					return p.Type.IsBoxed() || p.Type.IsReference()
				})),
			},
		},
		{
			Name: "sizeable",
			Rules: []Rule{
				Eliminate(c.SizePreserving, NextIsZeroOrMoreOf(c.SizePreserving).FollowedByOneOf(c.Count)),
				Replace2With1(c.Keys, c.Count, c.Size),
				Replace2With1(c.MapValues, c.Count, c.Size),
			},
		},
	}
}
