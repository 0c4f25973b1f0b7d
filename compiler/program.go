package compiler

import (
	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/query"
	"github.com/segmentio/ksuid"
)

// A Program is the compiled artifact for one shape.  Refs lists, in the
// order the generated code expects them, where each captured parameter lives
// in a chain of that shape.
type Program struct {
	ID   ksuid.KSUID
	Refs []plan.Ref
	Exec codegen.Executor
	Unit *codegen.Unit
}

var _ query.Processor = (*Program)(nil)

// Process gathers the parameters of t's chain and runs the executor on them.
func (p *Program) Process(t *query.Terminal) any {
	ops := t.Operations()
	params := make([]any, len(p.Refs))
	for k, r := range p.Refs {
		params[k] = ops[r.Node].Param(r.Slot)
	}
	return p.Exec.Execute(params)
}
