// Package vm is the closure backend.  It compiles a codegen unit into a tree
// of evaluators that run the unit's function directly, without producing or
// loading any Go source.
package vm

import (
	"fmt"

	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/runtime/builtin"
)

type Backend struct{}

var _ cg.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{}
}

func (*Backend) Compile(u *cg.Unit) (cg.Executor, error) {
	c := &compiler{param: u.Func.Param, globals: make(map[string]any)}
	for _, h := range builtin.Closure(u.HelperNames()) {
		c.globals[h.Name] = h.Native
	}
	body, err := c.block(u.Func.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u.Func.Name, err)
	}
	return &Program{body: body, slots: c.slots}, nil
}

// Frame is the state of one call of a compiled function.
type Frame struct {
	locals []any
	params []any
	result any
}

// A Program is safe for concurrent use: every call gets its own Frame.
type Program struct {
	body  *Block
	slots int
}

func (p *Program) Execute(params []any) any {
	f := &Frame{locals: make([]any, p.slots), params: params}
	p.body.Exec(f)
	return f.result
}

type compiler struct {
	param   string
	globals map[string]any
	scopes  []map[string]int
	slots   int
}

func (c *compiler) push() {
	c.scopes = append(c.scopes, make(map[string]int))
}

func (c *compiler) pop() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// declare allocates a slot for name in the innermost scope.  The blank
// name gets no slot.
func (c *compiler) declare(name string) int {
	if name == "" || name == "_" {
		return -1
	}
	slot := c.slots
	c.slots++
	c.scopes[len(c.scopes)-1][name] = slot
	return slot
}

func (c *compiler) local(name string) (int, bool) {
	for k := len(c.scopes) - 1; k >= 0; k-- {
		if slot, ok := c.scopes[k][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (c *compiler) name(name string) (Evaluator, error) {
	if slot, ok := c.local(name); ok {
		return &Local{slot}, nil
	}
	if name == c.param {
		return &Params{}, nil
	}
	if v, ok := c.globals[name]; ok {
		return &Literal{v}, nil
	}
	return nil, fmt.Errorf("undefined: %s", name)
}
