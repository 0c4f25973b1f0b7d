package kernel

import (
	"github.com/brimdata/zjit"
	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/tag"
)

func registerMap(k *Kernel, c *tag.Catalog) {
	P, E := composite.KindPair, composite.KindElement
	k.Register(c.FilterKeys, P, P, emitFilterKeys)
	k.Register(c.FilterValues, P, P, emitFilterValues)
	k.Register(c.MapEachValue, P, P, emitMapEachValue)
	k.Register(c.MapKeys, P, E, emitKeys)
	k.Register(c.MultimapKeys, P, E, emitKeys)
	k.Register(c.MapValues, P, E, emitValues)
	k.Register(c.MultimapValues, P, E, emitMultimapValues)
	k.Register(c.MapEntries, P, E, emitEntries)
	k.Register(c.MultimapEntries, P, E, emitMultimapEntries)
}

func emitFilterKeys(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	for _, fn := range ctx.Params(n) {
		ctx.Emit(cg.IfThen(cg.Not(cg.Invoke(fn, p.Key)), cg.Continue()))
	}
	return p, nil
}

func emitFilterValues(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	if p.Multi {
		return nil, zqe.E(zqe.Unsupported, "%s over a multimap", n.Tag)
	}
	for _, fn := range ctx.Params(n) {
		ctx.Emit(cg.IfThen(cg.Not(cg.Invoke(fn, p.Value)), cg.Continue()))
	}
	return p, nil
}

func emitMapEachValue(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	if p.Multi {
		return nil, zqe.E(zqe.Unsupported, "%s over a multimap", n.Tag)
	}
	value := p.Value
	for _, fn := range ctx.Params(n) {
		value = cg.Invoke(fn, value)
	}
	v := ctx.Fresh("v")
	ctx.Emit(cg.Decl(v, value))
	return p.WithValue(cg.Id(v), zjit.TypeObject), nil
}

func emitKeys(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	return composite.Element{Value: p.Key, Type: p.KeyType}, nil
}

func emitValues(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	if p.Multi {
		return nil, zqe.E(zqe.Internal, "%s over a multimap", n.Tag)
	}
	return composite.Element{Value: p.Value, Type: p.ValueType}, nil
}

func emitEntries(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	if p.Multi {
		return nil, zqe.E(zqe.Internal, "%s over a multimap", n.Tag)
	}
	return entry(ctx, p.Key, p.Value), nil
}

func entry(ctx *Context, key, value cg.Expr) composite.Element {
	e := ctx.Fresh("entry")
	ctx.Emit(cg.Decl(e, &cg.ArrayLit{Type: "[2]any", Elems: []cg.Expr{key, value}}))
	return composite.Element{Value: cg.Id(e), Type: zjit.TypeEntry}
}

// values opens an inner loop over the value list of the current multimap key.
func values(ctx *Context, p composite.Pair) cg.Expr {
	v := ctx.Fresh("v")
	body := &cg.Block{}
	ctx.Nest(&cg.Range{Key: "_", Value: v, X: p.Value, Body: body}, body)
	return cg.Id(v)
}

func emitMultimapValues(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	if !p.Multi {
		return nil, zqe.E(zqe.Internal, "%s over a plain map", n.Tag)
	}
	return composite.Element{Value: values(ctx, p), Type: p.ValueType}, nil
}

func emitMultimapEntries(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	if !p.Multi {
		return nil, zqe.E(zqe.Internal, "%s over a plain map", n.Tag)
	}
	return entry(ctx, p.Key, values(ctx, p)), nil
}
