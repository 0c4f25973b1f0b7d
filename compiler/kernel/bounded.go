package kernel

import (
	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/tag"
)

// Operations over a bounded array either move its bounds or rearrange it
// in place.  In-place variants need a mutable array, which the pipeline
// guarantees with a clone ahead of them.
func registerBounded(k *Kernel, c *tag.Catalog) {
	B := composite.KindBounded
	k.Register(c.Clone, B, B, emitClone)
	k.Register(c.Limit, B, B, emitLimit)
	k.Register(c.Skip, B, B, emitSkip)
	k.Register(c.SortedNatural, B, B, emitInPlace("sortNatural"))
	k.Register(c.SortedNaturalReverse, B, B, emitInPlace("sortNaturalReverse"))
	k.Register(c.SortedBy, B, B, emitInPlace("sortBy"))
	k.Register(c.Reverse, B, B, emitInPlace("reverseSlice"))
}

func emitClone(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	b, err := bounded(n, in)
	if err != nil {
		return nil, err
	}
	return b.CloneIfImmutable(ctx), nil
}

// clamp declares name as min(lower+count, upper).
func clamp(ctx *Context, b composite.Bounded, prefix string, count cg.Expr) cg.Expr {
	name := ctx.Fresh(prefix)
	ctx.Use("minInt")
	ctx.Emit(cg.Decl(name, cg.CallOf("minInt", cg.FoldExpr(cg.Bin("+", b.Lower, count)), b.Upper)))
	return cg.Id(name)
}

func emitLimit(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	b, err := bounded(n, in)
	if err != nil {
		return nil, err
	}
	if err := onePerNode(n, 1); err != nil {
		return nil, err
	}
	return b.WithBounds(b.Lower, clamp(ctx, b, "end", ctx.Param(n.Params[0]))), nil
}

func emitSkip(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
	b, err := bounded(n, in)
	if err != nil {
		return nil, err
	}
	if err := onePerNode(n, 1); err != nil {
		return nil, err
	}
	return b.WithBounds(clamp(ctx, b, "start", ctx.Param(n.Params[0])), b.Upper), nil
}

// emitInPlace calls helper on the live range with the node's parameters
// appended.
func emitInPlace(helper string) Emitter {
	return func(ctx *Context, n *plan.Node, in composite.Composite) (composite.Composite, error) {
		b, err := bounded(n, in)
		if err != nil {
			return nil, err
		}
		if !b.Mutable() {
			return nil, zqe.E(zqe.Internal, "%s over an immutable array", n.Tag)
		}
		ctx.Use(helper)
		args := append([]cg.Expr{b.Range()}, ctx.Params(n)...)
		ctx.Emit(cg.Do(cg.CallOf(helper, args...)))
		return b, nil
	}
}
