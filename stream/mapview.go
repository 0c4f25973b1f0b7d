package stream

import (
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
)

// MapView is a lazy view of the entries of a map[any]any.
type MapView struct {
	engine *Engine
	node   *query.Node
}

func (m MapView) then(t *tag.Tag, params ...any) MapView {
	return MapView{engine: m.engine, node: query.New(m.node, t, params...)}
}

func (m MapView) stream(t *tag.Tag) Stream {
	return Stream{engine: m.engine, node: query.New(m.node, t)}
}

func (m MapView) FilterKeys(pred func(any) bool) MapView {
	return m.then(m.engine.catalog.FilterKeys, pred)
}

func (m MapView) FilterValues(pred func(any) bool) MapView {
	return m.then(m.engine.catalog.FilterValues, pred)
}

func (m MapView) MapEachValue(fn func(any) any) MapView {
	return m.then(m.engine.catalog.MapEachValue, fn)
}

func (m MapView) Keys() Stream {
	return m.stream(m.engine.catalog.MapKeys)
}

func (m MapView) Values() Stream {
	return m.stream(m.engine.catalog.MapValues)
}

// Entries streams [2]any{key, value} pairs.
func (m MapView) Entries() Stream {
	return m.stream(m.engine.catalog.MapEntries)
}

func (m MapView) Size() int {
	return m.engine.Execute(query.NewTerminal(m.node, m.engine.catalog.Size)).(int)
}

// MultimapView is a lazy view of a map[any][]any.  Value operations apply
// to each value of a key's list.
type MultimapView struct {
	engine *Engine
	node   *query.Node
}

func (m MultimapView) then(t *tag.Tag, params ...any) MultimapView {
	return MultimapView{engine: m.engine, node: query.New(m.node, t, params...)}
}

func (m MultimapView) stream(t *tag.Tag) Stream {
	return Stream{engine: m.engine, node: query.New(m.node, t)}
}

func (m MultimapView) FilterKeys(pred func(any) bool) MultimapView {
	return m.then(m.engine.catalog.FilterKeys, pred)
}

// FilterValues drops the values pred rejects.  Keys left without values
// disappear from the view.
func (m MultimapView) FilterValues(pred func(any) bool) MultimapView {
	return m.then(m.engine.catalog.FilterValues, pred)
}

func (m MultimapView) MapEachValue(fn func(any) any) MultimapView {
	return m.then(m.engine.catalog.MapEachValue, fn)
}

func (m MultimapView) Keys() Stream {
	return m.stream(m.engine.catalog.MultimapKeys)
}

// Values streams every value of every key.
func (m MultimapView) Values() Stream {
	return m.stream(m.engine.catalog.MultimapValues)
}

// Entries streams one [2]any{key, value} pair per value.
func (m MultimapView) Entries() Stream {
	return m.stream(m.engine.catalog.MultimapEntries)
}

// Size returns the number of keys.
func (m MultimapView) Size() int {
	return m.engine.Execute(query.NewTerminal(m.node, m.engine.catalog.Size)).(int)
}

// ValueCount returns the number of values across all keys.
func (m MultimapView) ValueCount() int {
	return m.engine.Execute(query.NewTerminal(m.node, m.engine.catalog.MultimapValueCount)).(int)
}
