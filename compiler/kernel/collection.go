package kernel

import (
	"github.com/brimdata/zjit"
	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/tag"
)

// Source materializes the main accessor of the chain from the local holding
// the source's data parameter.
func (k *Kernel) Source(ctx *Context, n *plan.Node) (composite.Composite, error) {
	if err := onePerNode(n, 1); err != nil {
		return nil, err
	}
	data := ctx.Param(n.Params[0])
	elem := n.Elem
	if elem == nil {
		elem = zjit.TypeObject
	}
	c := k.catalog
	switch {
	case n.Is(c.IntSliceSource):
		return composite.NewBounded(data, zjit.TypeInt, "int", true), nil
	case n.Is(c.CollectionSource):
		return composite.NewBounded(data, elem, "any", true), nil
	case n.Is(c.MapSource):
		return composite.Map{Map: data, KeyType: zjit.TypeObject, ValueType: elem}, nil
	case n.Is(c.MultimapSource):
		return composite.Map{Map: data, KeyType: zjit.TypeObject, ValueType: elem, Multi: true}, nil
	}
	return nil, zqe.E(zqe.Unsupported, "unknown source %s", n.Tag)
}

func registerCollection(k *Kernel, c *tag.Catalog) {
	E := composite.KindElement
	k.Register(c.Loop, composite.KindBounded, E, emitLoop)
	k.Register(c.Loop, composite.KindMap, composite.KindPair, emitMapLoop)
	k.Register(c.Collect, E, composite.KindBounded, emitCollect)
	k.Register(c.Filter, E, E, emitFilter)
	k.Register(c.FilterNulls, E, E, emitFilterNulls)
	k.Register(c.Map, E, E, emitMap(nil))
	k.Register(c.MapToInt, E, E, emitMap(zjit.TypeInt))
	k.Register(c.MapToLong, E, E, emitMap(zjit.TypeInt64))
	k.Register(c.MapToDouble, E, E, emitMap(zjit.TypeFloat64))
	k.Register(c.Boxed, E, E, emitBoxed)
	k.Register(c.Distinct, E, E, emitDistinct)
	k.Register(c.Limit, E, E, emitStreamLimit)
	k.Register(c.Skip, E, E, emitStreamSkip)
	k.Register(c.Peek, E, E, emitPeek)
}

func emitLoop(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	b, err := bounded(n, in)
	if err != nil {
		return nil, err
	}
	label := ctx.Fresh("loop")
	i := ctx.Fresh("i")
	body := &cg.Block{}
	ctx.Open(label, &cg.For{
		Label: label,
		Init:  cg.Decl(i, b.Lower),
		Cond:  cg.Bin("<", cg.Id(i), b.Upper),
		Post:  cg.Inc(cg.Id(i), cg.Lit(1)),
		Body:  body,
	}, body)
	x := ctx.Fresh("x")
	ctx.Emit(cg.Decl(x, b.At(cg.Id(i))))
	return composite.Element{Value: cg.Id(x), Type: b.Elem}, nil
}

func emitMapLoop(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	m, err := mapOf(n, in)
	if err != nil {
		return nil, err
	}
	label := ctx.Fresh("loop")
	key := ctx.Fresh("k")
	value := ctx.Fresh("v")
	if m.Multi {
		value = ctx.Fresh("vs")
	}
	body := &cg.Block{}
	ctx.Open(label, &cg.Range{Label: label, Key: key, Value: value, X: m.Map, Body: body}, body)
	return composite.Pair{
		Key:       cg.Id(key),
		Value:     cg.Id(value),
		KeyType:   m.KeyType,
		ValueType: m.ValueType,
		Multi:     m.Multi,
	}, nil
}

func emitCollect(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	list := ctx.Fresh("list")
	ctx.Declare(cg.Decl(list, &cg.MakeSlice{Elem: "any"}))
	ctx.Emit(cg.Set(cg.Id(list), cg.CallOf("append", cg.Id(list), e.Value)))
	ctx.Close()
	return composite.NewBounded(cg.Id(list), e.Type, "any", false), nil
}

func emitFilter(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	for _, p := range ctx.Params(n) {
		ctx.Emit(cg.IfThen(cg.Not(cg.Invoke(p, e.Value)), cg.Continue()))
	}
	return e, nil
}

func emitFilterNulls(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	if e.Type.Nullable() {
		ctx.Emit(cg.IfThen(cg.Bin("==", e.Value, cg.Lit(nil)), cg.Continue()))
	}
	return e, nil
}

// emitMap composes the functions of a fused map in parameter order.  A nil
// result type means the mapped value is an arbitrary reference.
func emitMap(result *zjit.Type) Emitter {
	return func(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
		e, err := element(n, in)
		if err != nil {
			return nil, err
		}
		if len(n.Params) == 0 {
			return nil, zqe.E(zqe.Internal, "%s without a function", n.Tag)
		}
		value := e.Value
		for _, p := range ctx.Params(n) {
			value = cg.Invoke(p, value)
		}
		y := ctx.Fresh("y")
		ctx.Emit(cg.Decl(y, value))
		typ := result
		if typ == nil {
			typ = zjit.TypeObject
		}
		return e.WithAccessor(cg.Id(y), typ), nil
	}
}

func emitBoxed(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	if !e.Type.IsPrimitive() {
		return e, nil
	}
	y := ctx.Fresh("boxed")
	ctx.Emit(&cg.VarDecl{Name: y, Type: "any", Value: e.Value})
	return e.WithAccessor(cg.Id(y), e.Type.Boxed()), nil
}

func emitDistinct(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	seen := ctx.Fresh("seen")
	ctx.Declare(cg.Decl(seen, &cg.MakeMap{Key: "any", Value: "bool"}))
	mark := &cg.Index{X: cg.Id(seen), Index: e.Value}
	ctx.Emit(
		cg.IfThen(mark, cg.Continue()),
		cg.Set(mark, cg.Lit(true)),
	)
	return e, nil
}

func emitStreamLimit(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	if err := onePerNode(n, 1); err != nil {
		return nil, err
	}
	taken := ctx.Fresh("taken")
	ctx.Declare(cg.Decl(taken, cg.Lit(0)))
	ctx.Emit(
		cg.IfThen(cg.Bin(">=", cg.Id(taken), ctx.Param(n.Params[0])), cg.Break(ctx.Label())),
		cg.Inc(cg.Id(taken), cg.Lit(1)),
	)
	return e, nil
}

func emitStreamSkip(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	if err := onePerNode(n, 1); err != nil {
		return nil, err
	}
	skipped := ctx.Fresh("skipped")
	ctx.Declare(cg.Decl(skipped, cg.Lit(0)))
	ctx.Emit(cg.IfThen(cg.Bin("<", cg.Id(skipped), ctx.Param(n.Params[0])),
		cg.Inc(cg.Id(skipped), cg.Lit(1)),
		cg.Continue(),
	))
	return e, nil
}

func emitPeek(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	for _, p := range ctx.Params(n) {
		ctx.Emit(cg.Do(cg.Invoke(p, e.Value)))
	}
	return e, nil
}
