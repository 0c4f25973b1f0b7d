package tag

// View is the kind of lazy handle a node produces.  The analyzer keys its
// transfer functions on the views on either side of a transition.
type View int

const (
	ViewAny View = iota
	ViewCollection
	ViewMap
	ViewMultimap
	ViewScalar
)

func (v View) String() string {
	switch v {
	case ViewAny:
		return "any"
	case ViewCollection:
		return "collection"
	case ViewMap:
		return "map"
	case ViewMultimap:
		return "multimap"
	case ViewScalar:
		return "scalar"
	}
	return "unknown"
}

// Catalog is the standard set of operation tags.  Abstract tags (Operation,
// Source, Intermediate, Terminal, Sorted, Keys, Values, Entries, Synthetic)
// never appear on a node; they exist to be matched against.
type Catalog struct {
	*Registry
	views map[*Tag]View

	Operation    *Tag
	Source       *Tag
	Intermediate *Tag
	Terminal     *Tag
	Synthetic    *Tag

	CollectionSource   *Tag
	SliceSource        *Tag
	NonNullSliceSource *Tag
	IntSliceSource     *Tag
	MapSource          *Tag
	MultimapSource     *Tag

	Filter               *Tag
	FilterNulls          *Tag
	Map                  *Tag
	MapToInt             *Tag
	MapToLong            *Tag
	MapToDouble          *Tag
	Boxed                *Tag
	Distinct             *Tag
	Sorted               *Tag
	SortedNatural        *Tag
	SortedNaturalReverse *Tag
	SortedBy             *Tag
	Reverse              *Tag
	Limit                *Tag
	Skip                 *Tag
	Peek                 *Tag
	FlatMap              *Tag
	TakeWhile            *Tag

	Keys            *Tag
	MapKeys         *Tag
	MultimapKeys    *Tag
	Values          *Tag
	MapValues       *Tag
	MultimapValues  *Tag
	Entries         *Tag
	MapEntries      *Tag
	MultimapEntries *Tag
	FilterKeys      *Tag
	FilterValues    *Tag
	MapEachValue    *Tag

	ToList             *Tag
	ToSet              *Tag
	Count              *Tag
	Sum                *Tag
	Min                *Tag
	Max                *Tag
	AnyMatch           *Tag
	AllMatch           *Tag
	NoneMatch          *Tag
	FindFirst          *Tag
	Reduce             *Tag
	ForEach            *Tag
	GroupBy            *Tag
	ToMap              *Tag
	Size               *Tag
	MultimapValueCount *Tag

	Loop    *Tag
	Collect *Tag
	Clone   *Tag

	// Neutral element transforms: they neither depend on nor change the
	// order in which elements arrive.
	Neutral *Tag
	// Reorder operations change only the order of elements.
	Reorder *Tag
	// OrderInsensitive terminals produce the same result for any
	// permutation of their input.
	OrderInsensitive *Tag
	// SizePreserving operations emit exactly one element per input element.
	SizePreserving *Tag
	NumericMap     *Tag
	// Materializing operations need their whole input in a mutable array.
	Materializing *Tag
}

// Standard builds a fresh registry holding the standard catalog and freezes
// it.  Each call returns an independent catalog.
func Standard() *Catalog {
	r := NewRegistry()
	c := &Catalog{Registry: r, views: make(map[*Tag]View)}
	view := func(v View, t *Tag) *Tag {
		c.views[t] = v
		return t
	}

	c.Operation = r.Of("operation")
	c.Source = r.Of("source", c.Operation)
	c.Intermediate = r.Of("intermediate", c.Operation)
	c.Terminal = view(ViewScalar, r.Of("terminal", c.Operation))
	c.Synthetic = r.Of("synthetic", c.Operation)

	c.CollectionSource = view(ViewCollection, r.Of("collectionSource", c.Source))
	c.SliceSource = view(ViewCollection, r.Of("sliceSource", c.CollectionSource))
	c.NonNullSliceSource = view(ViewCollection, r.Of("nonNullSliceSource", c.CollectionSource))
	c.IntSliceSource = view(ViewCollection, r.Of("intSliceSource", c.CollectionSource))
	c.MapSource = view(ViewMap, r.Of("mapSource", c.Source))
	c.MultimapSource = view(ViewMultimap, r.Of("multimapSource", c.Source))

	op := func(name string, parents ...*Tag) *Tag {
		if len(parents) == 0 {
			parents = []*Tag{c.Intermediate}
		}
		return view(ViewCollection, r.Of(name, parents...))
	}
	c.Filter = op("filter")
	c.FilterNulls = op("filterNulls")
	c.Map = op("map")
	c.MapToInt = op("mapToInt")
	c.MapToLong = op("mapToLong")
	c.MapToDouble = op("mapToDouble")
	c.Boxed = op("boxed")
	c.Distinct = op("distinct")
	c.Sorted = op("sorted")
	c.SortedNatural = op("sortedNatural", c.Sorted)
	c.SortedNaturalReverse = op("sortedNaturalReverse", c.Sorted)
	c.SortedBy = op("sortedBy", c.Sorted)
	c.Reverse = op("reverse")
	c.Limit = op("limit")
	c.Skip = op("skip")
	c.Peek = op("peek")
	c.FlatMap = op("flatMap")
	c.TakeWhile = op("takeWhile")

	c.Keys = op("keys")
	c.MapKeys = op("mapKeys", c.Keys)
	c.MultimapKeys = op("multimapKeys", c.Keys)
	c.Values = op("values")
	c.MapValues = op("mapValues", c.Values)
	c.MultimapValues = op("multimapValues", c.Values)
	c.Entries = op("entries")
	c.MapEntries = op("mapEntries", c.Entries)
	c.MultimapEntries = op("multimapEntries", c.Entries)
	c.FilterKeys = view(ViewMap, r.Of("filterKeys", c.Intermediate))
	c.FilterValues = view(ViewMap, r.Of("filterValues", c.Intermediate))
	c.MapEachValue = view(ViewMap, r.Of("mapEachValue", c.Intermediate))

	term := func(name string) *Tag {
		return view(ViewScalar, r.Of(name, c.Terminal))
	}
	c.ToList = term("toList")
	c.ToSet = term("toSet")
	c.Count = term("count")
	c.Sum = term("sum")
	c.Min = term("min")
	c.Max = term("max")
	c.AnyMatch = term("anyMatch")
	c.AllMatch = term("allMatch")
	c.NoneMatch = term("noneMatch")
	c.FindFirst = term("findFirst")
	c.Reduce = term("reduce")
	c.ForEach = term("forEach")
	c.GroupBy = term("groupBy")
	c.ToMap = term("toMap")
	c.Size = term("size")
	c.MultimapValueCount = term("multimapValueCount")

	c.Loop = r.Of("loop", c.Synthetic)
	c.Collect = r.Of("collect", c.Synthetic)
	c.Clone = r.Of("clone", c.Synthetic)

	c.Neutral = r.Aggregate("neutral", c.Map, c.MapToInt, c.MapToLong, c.MapToDouble, c.Boxed, c.Filter, c.FilterNulls, c.Distinct)
	c.Reorder = r.Aggregate("reorder", c.Sorted, c.Reverse)
	c.OrderInsensitive = r.Aggregate("orderInsensitive", c.Count, c.Min, c.Max, c.ToSet, c.AnyMatch, c.AllMatch, c.NoneMatch)
	c.SizePreserving = r.Aggregate("sizePreserving", c.Map, c.MapToInt, c.MapToLong, c.MapToDouble, c.Boxed, c.Sorted, c.Reverse)
	c.NumericMap = r.Aggregate("numericMap", c.MapToInt, c.MapToLong, c.MapToDouble)
	c.Materializing = r.Aggregate("materializing", c.Sorted, c.Reverse)

	r.Freeze()
	return c
}

// View returns the kind of handle produced by a node carrying t.  Synthetic
// tags produce whatever their input produced and report ViewAny.
func (c *Catalog) View(t *Tag) View {
	if v, ok := c.views[t]; ok {
		return v
	}
	return ViewAny
}
