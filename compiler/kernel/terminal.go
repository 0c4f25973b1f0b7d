package kernel

import (
	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/tag"
)

// Terminals reduce the stream to the function's result.  Streaming variants
// accumulate into state declared ahead of the loop and return it after the
// loop; bounded and map variants return a closed form.
//
// Optional results are an []any holding zero or one value.
func registerTerminals(k *Kernel, c *tag.Catalog) {
	B, E, P, M := composite.KindBounded, composite.KindElement, composite.KindPair, composite.KindMap
	k.Register(c.Count, B, B, emitBoundedCount)
	k.Register(c.ToList, B, B, emitBoundedList)
	k.Register(c.FindFirst, B, B, emitBoundedFirst)
	k.Register(c.Size, M, M, emitMapSize)

	k.Register(c.Count, E, E, emitCounter)
	k.Register(c.Size, P, P, emitCounter)
	k.Register(c.MultimapValueCount, P, P, emitValueCount)
	k.Register(c.ToList, E, E, emitToList)
	k.Register(c.ToSet, E, E, emitToSet)
	k.Register(c.Sum, E, E, emitSum)
	k.Register(c.Min, E, E, emitBest("<"))
	k.Register(c.Max, E, E, emitBest(">"))
	k.Register(c.AnyMatch, E, E, emitMatch(false, true))
	k.Register(c.AllMatch, E, E, emitMatch(true, false))
	k.Register(c.NoneMatch, E, E, emitMatch(false, false))
	k.Register(c.FindFirst, E, E, emitFindFirst)
	k.Register(c.Reduce, E, E, emitReduce)
	k.Register(c.ForEach, E, E, emitForEach)
	k.Register(c.GroupBy, E, E, emitGroupBy)
	k.Register(c.ToMap, E, E, emitToMap)
}

func emitBoundedCount(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	b, err := bounded(n, in)
	if err != nil {
		return nil, err
	}
	ctx.Return(b.Size())
	return nil, nil
}

func emitBoundedList(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	b, err := bounded(n, in)
	if err != nil {
		return nil, err
	}
	ctx.Return(b.CloneIfImmutable(ctx).Range())
	return nil, nil
}

func emitBoundedFirst(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	b, err := bounded(n, in)
	if err != nil {
		return nil, err
	}
	found := &cg.ArrayLit{Type: "[]any", Elems: []cg.Expr{b.At(b.Lower)}}
	ctx.Emit(cg.IfThen(cg.Bin(">", b.Upper, b.Lower), cg.Ret(found)))
	ctx.Return(&cg.ArrayLit{Type: "[]any"})
	return nil, nil
}

func emitMapSize(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	m, err := mapOf(n, in)
	if err != nil {
		return nil, err
	}
	ctx.Return(m.Size())
	return nil, nil
}

// accumulator declares name := init ahead of the loop and returns it after.
func accumulator(ctx *Context, prefix string, init cg.Expr) *cg.Name {
	name := ctx.Fresh(prefix)
	ctx.Declare(cg.Decl(name, init))
	ctx.Return(cg.Id(name))
	return cg.Id(name)
}

func emitCounter(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	count := accumulator(ctx, "count", cg.Lit(0))
	ctx.Emit(cg.Inc(count, cg.Lit(1)))
	return nil, nil
}

func emitValueCount(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	p, err := pair(n, in)
	if err != nil {
		return nil, err
	}
	if !p.Multi {
		return nil, zqe.E(zqe.Internal, "%s over a plain map", n.Tag)
	}
	total := accumulator(ctx, "total", cg.Lit(0))
	ctx.Emit(cg.Inc(total, cg.CallOf("len", p.Value)))
	return nil, nil
}

func emitToList(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	list := accumulator(ctx, "list", &cg.MakeSlice{Elem: "any"})
	ctx.Emit(cg.Set(list, cg.CallOf("append", list, e.Value)))
	return nil, nil
}

func emitToSet(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	set := accumulator(ctx, "set", &cg.MakeMap{Key: "any", Value: "struct{}"})
	ctx.Emit(cg.Set(&cg.Index{X: set, Index: e.Value}, &cg.Empty{}))
	return nil, nil
}

// emitSum adds up a numeric stream in the unboxed type of its elements.
// Untyped elements are left to the interpreter.
func emitSum(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	typ := e.Type.Unboxed()
	if !typ.IsPrimitive() || !typ.IsNumeric() {
		return nil, zqe.E(zqe.Unsupported, "sum over %s elements", e.Type)
	}
	sum := ctx.Fresh("sum")
	ctx.Declare(&cg.VarDecl{Name: sum, Type: typ.GoType()})
	ctx.Return(cg.Id(sum))
	value := e.Value
	if e.Type.IsBoxed() {
		value = &cg.Cast{X: value, Type: typ.GoType(), Assert: true}
	}
	ctx.Emit(cg.Inc(cg.Id(sum), value))
	return nil, nil
}

// emitBest keeps the first element that no later element beats under op.
func emitBest(op string) Emitter {
	return func(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
		e, err := element(n, in)
		if err != nil {
			return nil, err
		}
		ctx.Use("compareNatural")
		best := accumulator(ctx, "best", &cg.ArrayLit{Type: "[]any"})
		better := cg.Bin(op, cg.CallOf("compareNatural", e.Value, &cg.Index{X: best, Index: cg.Lit(0)}), cg.Lit(0))
		ctx.Emit(cg.IfThen(
			cg.Bin("||", cg.Bin("==", cg.CallOf("len", best), cg.Lit(0)), better),
			cg.Set(best, &cg.ArrayLit{Type: "[]any", Elems: []cg.Expr{e.Value}}),
		))
		return nil, nil
	}
}

// emitMatch stops at the first element the predicate accepts, or rejects when
// negate is set, and returns found.  An exhausted stream returns !found.
func emitMatch(negate, found bool) Emitter {
	return func(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
		e, err := element(n, in)
		if err != nil {
			return nil, err
		}
		if err := onePerNode(n, 1); err != nil {
			return nil, err
		}
		result := accumulator(ctx, "match", cg.Lit(!found))
		var test cg.Expr = cg.Invoke(ctx.Param(n.Params[0]), e.Value)
		if negate {
			test = cg.Not(test)
		}
		ctx.Emit(cg.IfThen(test, cg.Set(result, cg.Lit(found)), cg.Break(ctx.Label())))
		return nil, nil
	}
}

func emitFindFirst(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	first := accumulator(ctx, "first", &cg.ArrayLit{Type: "[]any"})
	ctx.Emit(
		cg.Set(first, &cg.ArrayLit{Type: "[]any", Elems: []cg.Expr{e.Value}}),
		cg.Break(ctx.Label()),
	)
	return nil, nil
}

func emitReduce(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	if err := onePerNode(n, 1); err != nil {
		return nil, err
	}
	acc := accumulator(ctx, "acc", &cg.ArrayLit{Type: "[]any"})
	head := &cg.Index{X: acc, Index: cg.Lit(0)}
	ctx.Emit(&cg.If{
		Cond: cg.Bin("==", cg.CallOf("len", acc), cg.Lit(0)),
		Then: &cg.Block{Stmts: []cg.Stmt{cg.Set(acc, &cg.ArrayLit{Type: "[]any", Elems: []cg.Expr{e.Value}})}},
		Else: &cg.Block{Stmts: []cg.Stmt{cg.Set(head, cg.Invoke(ctx.Param(n.Params[0]), head, e.Value))}},
	})
	return nil, nil
}

func emitForEach(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	for _, fn := range ctx.Params(n) {
		ctx.Emit(cg.Do(cg.Invoke(fn, e.Value)))
	}
	ctx.Return(cg.Lit(nil))
	return nil, nil
}

func emitGroupBy(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	if err := onePerNode(n, 1); err != nil {
		return nil, err
	}
	groups := accumulator(ctx, "groups", &cg.MakeMap{Key: "any", Value: "[]any"})
	key := ctx.Fresh("key")
	group := &cg.Index{X: groups, Index: cg.Id(key)}
	ctx.Emit(
		cg.Decl(key, cg.Invoke(ctx.Param(n.Params[0]), e.Value)),
		cg.Set(group, cg.CallOf("append", group, e.Value)),
	)
	return nil, nil
}

// emitToMap keeps the last value for a repeated key.
func emitToMap(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	e, err := element(n, in)
	if err != nil {
		return nil, err
	}
	if err := onePerNode(n, 2); err != nil {
		return nil, err
	}
	m := accumulator(ctx, "m", &cg.MakeMap{Key: "any", Value: "any"})
	key := cg.Invoke(ctx.Param(n.Params[0]), e.Value)
	value := cg.Invoke(ctx.Param(n.Params[1]), e.Value)
	ctx.Emit(cg.Set(&cg.Index{X: m, Index: key}, value))
	return nil, nil
}
