// Package kernel holds the per-operation emitters.  Each tag may have one
// variant per kind of composite it can consume; the pipeline picks the
// variant for every node and the renderer calls it to append the node's
// statements to the function being generated.
package kernel

import (
	"fmt"

	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/tag"
)

// An Emitter appends the statements for node n consuming in and returns the
// composite the next node consumes.  Terminals return nil.
type Emitter func(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error)

type Variant struct {
	Tag  *tag.Tag
	In   composite.Kind
	Out  composite.Kind
	emit Emitter
}

func (v *Variant) String() string {
	return fmt.Sprintf("%s(%s->%s)", v.Tag.Name(), v.In, v.Out)
}

type Kernel struct {
	catalog  *tag.Catalog
	variants map[*tag.Tag]map[composite.Kind]*Variant
	params   map[*tag.Tag]string
}

func New(c *tag.Catalog) *Kernel {
	return &Kernel{
		catalog:  c,
		variants: make(map[*tag.Tag]map[composite.Kind]*Variant),
		params:   make(map[*tag.Tag]string),
	}
}

func (k *Kernel) Catalog() *tag.Catalog {
	return k.catalog
}

// Register adds the variant of t that consumes in and produces out.  A tag
// has at most one variant per input kind.
func (k *Kernel) Register(t *tag.Tag, in, out composite.Kind, emit Emitter) {
	if t == nil || emit == nil {
		panic("kernel: incomplete variant")
	}
	byKind, ok := k.variants[t]
	if !ok {
		byKind = make(map[composite.Kind]*Variant)
		k.variants[t] = byKind
	}
	if _, ok := byKind[in]; ok {
		panic(fmt.Sprintf("kernel: duplicate %s variant of %s", in, t))
	}
	byKind[in] = &Variant{Tag: t, In: in, Out: out, emit: emit}
}

// RegisterParam records the Go type of every parameter slot of t.
func (k *Kernel) RegisterParam(goType string, tags ...*tag.Tag) {
	for _, t := range tags {
		k.params[t] = goType
	}
}

func (k *Kernel) Variant(t *tag.Tag, in composite.Kind) (*Variant, bool) {
	v, ok := k.variants[t][in]
	return v, ok
}

func (k *Kernel) Has(t *tag.Tag, in composite.Kind) bool {
	_, ok := k.Variant(t, in)
	return ok
}

// Supports reports whether t has any variant at all.
func (k *Kernel) Supports(t *tag.Tag) bool {
	return len(k.variants[t]) > 0
}

// ParamType is the Go type parameters of t are asserted to.
func (k *Kernel) ParamType(t *tag.Tag) (string, error) {
	typ, ok := k.params[t]
	if !ok {
		return "", zqe.E(zqe.Unsupported, "no parameter type for %s", t)
	}
	return typ, nil
}

// Emit runs the variant of n's tag chosen by the pipeline.
func (k *Kernel) Emit(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	if in.Kind() != n.In {
		return nil, zqe.E(zqe.Internal, "%s planned for %s input but got %s", n.Tag, n.In, in.Kind())
	}
	v, ok := k.Variant(n.Tag, n.In)
	if !ok {
		return nil, zqe.E(zqe.Unsupported, "no %s variant of %s", n.In, n.Tag)
	}
	return v.emit(ctx, n, in)
}

// SourceKind is the composite kind a source tag materializes as.
func (k *Kernel) SourceKind(t *tag.Tag) (composite.Kind, error) {
	c := k.catalog
	switch {
	case t.Is(c.CollectionSource):
		return composite.KindBounded, nil
	case t.IsAnyOf(c.MapSource, c.MultimapSource):
		return composite.KindMap, nil
	}
	return 0, zqe.E(zqe.Unsupported, "unknown source %s", t)
}

// Standard returns the kernel with every built-in variant registered.
func Standard(c *tag.Catalog) *Kernel {
	k := New(c)
	registerParams(k, c)
	registerCollection(k, c)
	registerBounded(k, c)
	registerMap(k, c)
	registerTerminals(k, c)
	return k
}

func registerParams(k *Kernel, c *tag.Catalog) {
	k.RegisterParam("[]any", c.SliceSource, c.NonNullSliceSource)
	k.RegisterParam("[]int", c.IntSliceSource)
	k.RegisterParam("map[any]any", c.MapSource)
	k.RegisterParam("map[any][]any", c.MultimapSource)
	k.RegisterParam("func(any) bool", c.Filter, c.AnyMatch, c.AllMatch, c.NoneMatch, c.FilterKeys, c.FilterValues, c.TakeWhile)
	k.RegisterParam("func(any) any", c.Map, c.MapEachValue, c.GroupBy, c.ToMap)
	k.RegisterParam("func(any) int", c.MapToInt)
	k.RegisterParam("func(any) int64", c.MapToLong)
	k.RegisterParam("func(any) float64", c.MapToDouble)
	k.RegisterParam("func(any) []any", c.FlatMap)
	k.RegisterParam("func(any, any) int", c.SortedBy)
	k.RegisterParam("func(any, any) any", c.Reduce)
	k.RegisterParam("func(any)", c.Peek, c.ForEach)
	k.RegisterParam("int", c.Limit, c.Skip)
}
