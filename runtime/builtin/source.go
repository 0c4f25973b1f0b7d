package builtin

func init() {
	register(&Helper{
		Name:    "compareNatural",
		Native:  CompareNatural,
		Imports: []string{"math"},
		Source: `func compareNatural(a, b any) int {
	ra, rb := naturalRank(a), naturalRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a := a.(type) {
	case nil:
		return 0
	case bool:
		b := b.(bool)
		if a == b {
			return 0
		}
		if !a {
			return -1
		}
		return 1
	case string:
		b := b.(string)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	case float64:
		b := b.(float64)
		an, bn := math.IsNaN(a), math.IsNaN(b)
		switch {
		case an && bn:
			return 0
		case an:
			return -1
		case bn:
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		}
		if a == 0 && math.Signbit(a) != math.Signbit(b) {
			if math.Signbit(a) {
				return -1
			}
			return 1
		}
		return 0
	}
	x, y := naturalInt(a), naturalInt(b)
	if x < y {
		return -1
	}
	if x > y {
		return 1
	}
	_, ai := a.(int)
	_, bi := b.(int)
	if ai && !bi {
		return -1
	}
	if !ai && bi {
		return 1
	}
	return 0
}

func naturalRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int64:
		return 2
	case float64:
		return 3
	case string:
		return 4
	}
	panic("no natural ordering")
}

func naturalInt(v any) int64 {
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v.(int64)
}`,
	})
	register(&Helper{
		Name:     "sortNatural",
		Native:   SortNatural,
		Imports:  []string{"sort"},
		Requires: []string{"compareNatural"},
		Source: `func sortNatural(xs []any) {
	sort.SliceStable(xs, func(i, j int) bool { return compareNatural(xs[i], xs[j]) < 0 })
}`,
	})
	register(&Helper{
		Name:     "sortNaturalReverse",
		Native:   SortNaturalReverse,
		Imports:  []string{"sort"},
		Requires: []string{"compareNatural"},
		Source: `func sortNaturalReverse(xs []any) {
	sort.SliceStable(xs, func(i, j int) bool { return compareNatural(xs[i], xs[j]) > 0 })
}`,
	})
	register(&Helper{
		Name:    "sortBy",
		Native:  SortBy,
		Imports: []string{"sort"},
		Source: `func sortBy(xs []any, cmp func(a, b any) int) {
	sort.SliceStable(xs, func(i, j int) bool { return cmp(xs[i], xs[j]) < 0 })
}`,
	})
	register(&Helper{
		Name:   "reverseSlice",
		Native: ReverseSlice,
		Source: `func reverseSlice(xs []any) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}`,
	})
	register(&Helper{
		Name:   "cloneSlice",
		Native: CloneSlice,
		Source: `func cloneSlice(xs []any) []any {
	out := make([]any, len(xs))
	copy(out, xs)
	return out
}`,
	})
	register(&Helper{
		Name:   "minInt",
		Native: MinInt,
		Source: `func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}`,
	})
}
