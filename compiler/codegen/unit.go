package codegen

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Unit is everything needed to turn one compiled shape into an executor:
// the header comment lines, the runtime helpers the body calls, and the
// entry function itself.
type Unit struct {
	Header  []string
	Helpers map[string]bool
	Func    *Func
}

func NewUnit(header []string, fn *Func) *Unit {
	return &Unit{
		Header:  header,
		Helpers: make(map[string]bool),
		Func:    fn,
	}
}

func (u *Unit) Use(helper string) {
	u.Helpers[helper] = true
}

// HelperNames returns the helpers used by the unit in sorted order.
func (u *Unit) HelperNames() []string {
	names := maps.Keys(u.Helpers)
	slices.Sort(names)
	return names
}

// An Executor runs a compiled unit against the captured parameters of one
// chain instance.
type Executor interface {
	Execute(params []any) any
}

type ExecutorFunc func(params []any) any

func (f ExecutorFunc) Execute(params []any) any {
	return f(params)
}

// A Backend turns a unit into an executor.  A backend failure means the
// generator produced code it should not have and is never expected.
type Backend interface {
	Compile(*Unit) (Executor, error)
}
