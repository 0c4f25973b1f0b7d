package compiler

import (
	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/kernel"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/runtime/builtin"
	"github.com/brimdata/zjit/tag"
)

// Names generated code must never declare.
var reserved = []string{
	"params", "Execute", "query",
	"any", "append", "bool", "false", "float64", "int", "int64", "len", "make", "nil", "true",
	"math", "sort", "naturalRank", "naturalInt",
}

// Render turns a planned p into a unit whose function is
// func Execute(params []any) any.  The returned refs say where each element
// of params comes from.
func Render(p *plan.Plan, k *kernel.Kernel) (*cg.Unit, []plan.Ref, error) {
	header := []string{
		"Code generated by zjit. DO NOT EDIT.",
		"original:   " + tag.Format(p.Original),
		"simplified: " + tag.Format(p.Real()),
	}
	fn := &cg.Func{Name: "Execute", Param: "params", Body: &cg.Block{}}
	unit := cg.NewUnit(header, fn)
	namer := cg.NewNamer(append(reserved, builtin.Names()...)...)
	ctx := kernel.NewContext(unit, namer)
	refs, err := extract(ctx, p, k)
	if err != nil {
		return nil, nil, err
	}
	main, err := k.Source(ctx, p.Source())
	if err != nil {
		return nil, nil, err
	}
	r := &renderer{catalog: p.Catalog, kernel: k, ctx: ctx}
	if _, err := r.children(p.Root(), main); err != nil {
		return nil, nil, err
	}
	if ctx.Result.Stmt == nil {
		return nil, nil, zqe.E(zqe.Internal, "%s produced no result", p.Terminal().Tag)
	}
	fn.Body.Append(ctx.Result)
	cg.Cleanup(fn, namer)
	return unit, refs, nil
}

// extract declares one local per distinct parameter, walking from the
// terminal back to the source.
func extract(ctx *kernel.Context, p *plan.Plan, k *kernel.Kernel) ([]plan.Ref, error) {
	var refs []plan.Ref
	for n := p.Terminal(); n != nil; n = n.Previous() {
		if len(n.Params) == 0 {
			continue
		}
		typ, err := k.ParamType(n.Tag)
		if err != nil {
			return nil, err
		}
		for _, r := range n.Params {
			if ctx.Bound(r) {
				continue
			}
			name := ctx.Fresh("p")
			param := &cg.Index{X: cg.Id("params"), Index: cg.Lit(len(refs))}
			ctx.Emit(cg.Decl(name, &cg.Cast{X: param, Type: typ, Assert: true}))
			ctx.Bind(r, name)
			refs = append(refs, r)
		}
	}
	return refs, nil
}

type renderer struct {
	catalog *tag.Catalog
	kernel  *kernel.Kernel
	ctx     *kernel.Context
}

// children emits the chain nodes under parent in order, threading the
// composite from each node to the next.
func (r *renderer) children(parent *plan.Node, in composite.Composite) (composite.Composite, error) {
	cur := in
	for _, n := range parent.Children() {
		var err error
		switch {
		case n.IsSegment():
			cur, err = r.segment(n, cur)
		case n.Is(r.catalog.Source):
			continue
		default:
			cur, err = r.kernel.Emit(r.ctx, n, cur)
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// segment emits one loop.  A segment either ends in the terminal or closes
// its loop by collecting.
func (r *renderer) segment(seg *plan.Node, in composite.Composite) (composite.Composite, error) {
	out, err := r.children(seg, in)
	if err != nil {
		return nil, err
	}
	kids := seg.Children()
	if r.ctx.InLoop() && !kids[len(kids)-1].Is(r.catalog.Terminal) {
		return nil, zqe.E(zqe.Internal, "segment ending in %s leaves its loop open", kids[len(kids)-1].Tag)
	}
	return out, nil
}
