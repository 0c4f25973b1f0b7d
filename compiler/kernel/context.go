package kernel

import (
	"fmt"

	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
)

// Context is the emission state of one generated function.  It is the sink
// composites emit into.  At most one loop is open at a time; state an
// in-loop operation keeps across iterations is declared ahead of it.
type Context struct {
	Unit   *codegen.Unit
	Namer  *codegen.Namer
	Block  *codegen.Block
	Result *codegen.Slot

	params map[plan.Ref]string
	loop   *openLoop
}

type openLoop struct {
	label string
	pre   *codegen.Slots
	outer *codegen.Block
}

var _ composite.Sink = (*Context)(nil)

func NewContext(unit *codegen.Unit, namer *codegen.Namer) *Context {
	return &Context{
		Unit:   unit,
		Namer:  namer,
		Block:  unit.Func.Body,
		Result: &codegen.Slot{},
		params: make(map[plan.Ref]string),
	}
}

func (ctx *Context) Fresh(prefix string) string {
	return ctx.Namer.Fresh(prefix)
}

func (ctx *Context) Emit(stmts ...codegen.Stmt) {
	ctx.Block.Append(stmts...)
}

func (ctx *Context) Use(helper string) {
	ctx.Unit.Use(helper)
}

// Bind names the local holding the parameter at r.
func (ctx *Context) Bind(r plan.Ref, name string) {
	ctx.params[r] = name
}

func (ctx *Context) Bound(r plan.Ref) bool {
	_, ok := ctx.params[r]
	return ok
}

func (ctx *Context) Param(r plan.Ref) codegen.Expr {
	name, ok := ctx.params[r]
	if !ok {
		panic(fmt.Sprintf("kernel: parameter %s was never extracted", r))
	}
	return codegen.Id(name)
}

// Params returns the locals of all of n's parameters in slot order.
func (ctx *Context) Params(n *plan.Node) []codegen.Expr {
	var exprs []codegen.Expr
	for _, r := range n.Params {
		exprs = append(exprs, ctx.Param(r))
	}
	return exprs
}

// Declare emits state that must outlive one iteration of the open loop.
// Outside a loop it is the same as Emit.
func (ctx *Context) Declare(stmts ...codegen.Stmt) {
	if ctx.loop != nil {
		ctx.loop.pre.Append(stmts...)
		return
	}
	ctx.Emit(stmts...)
}

// Open emits loop, whose body is body, and moves emission into it.
func (ctx *Context) Open(label string, loop codegen.Stmt, body *codegen.Block) {
	if ctx.loop != nil {
		panic("kernel: a loop is already open")
	}
	pre := &codegen.Slots{}
	ctx.Emit(pre, loop)
	ctx.loop = &openLoop{label: label, pre: pre, outer: ctx.Block}
	ctx.Block = body
}

// Nest moves emission into the body of an inner loop of the open loop.
func (ctx *Context) Nest(loop codegen.Stmt, body *codegen.Block) {
	if ctx.loop == nil {
		panic("kernel: nesting outside a loop")
	}
	ctx.Emit(loop)
	ctx.Block = body
}

// Close ends the open loop and resumes emission after it.
func (ctx *Context) Close() {
	if ctx.loop == nil {
		panic("kernel: no loop to close")
	}
	ctx.Block = ctx.loop.outer
	ctx.loop = nil
}

func (ctx *Context) InLoop() bool {
	return ctx.loop != nil
}

// Label is the label of the open loop.
func (ctx *Context) Label() string {
	if ctx.loop == nil {
		panic("kernel: no open loop")
	}
	return ctx.loop.label
}

// Return sets the final return statement of the function.
func (ctx *Context) Return(e codegen.Expr) {
	ctx.Result.Set(codegen.Ret(e))
}

func element(n *plan.Node, in composite.Composite) (composite.Element, error) {
	e, ok := in.(composite.Element)
	if !ok {
		return e, zqe.E(zqe.Internal, "%s expects an element but got %s", n.Tag, in.Kind())
	}
	return e, nil
}

func bounded(n *plan.Node, in composite.Composite) (composite.Bounded, error) {
	b, ok := in.(composite.Bounded)
	if !ok {
		return b, zqe.E(zqe.Internal, "%s expects a bounded array but got %s", n.Tag, in.Kind())
	}
	return b, nil
}

func pair(n *plan.Node, in composite.Composite) (composite.Pair, error) {
	p, ok := in.(composite.Pair)
	if !ok {
		return p, zqe.E(zqe.Internal, "%s expects a key/value pair but got %s", n.Tag, in.Kind())
	}
	return p, nil
}

func mapOf(n *plan.Node, in composite.Composite) (composite.Map, error) {
	m, ok := in.(composite.Map)
	if !ok {
		return m, zqe.E(zqe.Internal, "%s expects a map but got %s", n.Tag, in.Kind())
	}
	return m, nil
}

// onePerNode fails unless n carries exactly want parameters.
func onePerNode(n *plan.Node, want int) error {
	if len(n.Params) != want {
		return zqe.E(zqe.Internal, "%s has %d parameters, want %d", n.Tag, len(n.Params), want)
	}
	return nil
}
