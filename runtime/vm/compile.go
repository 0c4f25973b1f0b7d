package vm

import (
	"fmt"

	cg "github.com/brimdata/zjit/compiler/codegen"
)

func (c *compiler) block(b *cg.Block) (*Block, error) {
	c.push()
	defer c.pop()
	return c.stmts(b.Stmts)
}

func (c *compiler) stmts(stmts []cg.Stmt) (*Block, error) {
	out := &Block{}
	for _, s := range stmts {
		switch s := s.(type) {
		case *cg.Slots:
			b, err := c.stmts(s.Stmts)
			if err != nil {
				return nil, err
			}
			out.stmts = append(out.stmts, b.stmts...)
			continue
		case *cg.Slot:
			if s.Stmt == nil {
				continue
			}
			b, err := c.stmts([]cg.Stmt{s.Stmt})
			if err != nil {
				return nil, err
			}
			out.stmts = append(out.stmts, b.stmts...)
			continue
		case *cg.Comment:
			continue
		}
		stmt, err := c.stmt(s)
		if err != nil {
			return nil, err
		}
		out.stmts = append(out.stmts, stmt)
	}
	return out, nil
}

func (c *compiler) stmt(s cg.Stmt) (Stmt, error) {
	switch s := s.(type) {
	case *cg.VarDecl:
		return c.varDecl(s)
	case *cg.Assign:
		return c.assign(s)
	case *cg.Block:
		return c.block(s)
	case *cg.ExprStmt:
		e, err := c.expr(s.X)
		if err != nil {
			return nil, err
		}
		return &Expr{e}, nil
	case *cg.If:
		cond, err := c.expr(s.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.block(s.Then)
		if err != nil {
			return nil, err
		}
		out := &If{cond: cond, then: then}
		if s.Else != nil {
			if out.els, err = c.block(s.Else); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *cg.Return:
		if s.Result == nil {
			return &Return{}, nil
		}
		e, err := c.expr(s.Result)
		if err != nil {
			return nil, err
		}
		return &Return{e}, nil
	case *cg.Branch:
		switch s.Tok {
		case "break":
			return &Branch{breaking, s.Label}, nil
		case "continue":
			return &Branch{continuing, s.Label}, nil
		}
		return nil, fmt.Errorf("unknown branch %q", s.Tok)
	case *cg.For:
		return c.forLoop(s)
	case *cg.Range:
		return c.rangeLoop(s)
	}
	return nil, fmt.Errorf("unsupported statement %T", s)
}

func (c *compiler) varDecl(d *cg.VarDecl) (Stmt, error) {
	var value Evaluator
	if d.Value == nil {
		zero, ok := zeros[d.Type]
		if !ok {
			return nil, fmt.Errorf("no zero value for %q", d.Type)
		}
		value = &Literal{zero}
	} else {
		var err error
		if value, err = c.expr(d.Value); err != nil {
			return nil, err
		}
	}
	// The value is compiled before the name enters scope.
	return &Declare{slot: c.declare(d.Name), expr: value}, nil
}

func (c *compiler) assign(a *cg.Assign) (Stmt, error) {
	switch a.Op {
	case "=", "+=", "-=":
	default:
		return nil, fmt.Errorf("unknown assignment %q", a.Op)
	}
	rhs, err := c.expr(a.RHS)
	if err != nil {
		return nil, err
	}
	switch lhs := a.LHS.(type) {
	case *cg.Name:
		slot, ok := c.local(lhs.Name)
		if !ok {
			return nil, fmt.Errorf("cannot assign to %s", lhs.Name)
		}
		return &Store{slot: slot, op: a.Op, expr: rhs}, nil
	case *cg.Index:
		container, err := c.expr(lhs.X)
		if err != nil {
			return nil, err
		}
		index, err := c.expr(lhs.Index)
		if err != nil {
			return nil, err
		}
		return &IndexStore{container: container, index: index, op: a.Op, expr: rhs}, nil
	}
	return nil, fmt.Errorf("cannot assign to %T", a.LHS)
}

func (c *compiler) forLoop(s *cg.For) (Stmt, error) {
	c.push()
	defer c.pop()
	out := &For{label: s.Label}
	var err error
	if s.Init != nil {
		if out.init, err = c.stmt(s.Init); err != nil {
			return nil, err
		}
	}
	if s.Cond != nil {
		if out.cond, err = c.expr(s.Cond); err != nil {
			return nil, err
		}
	}
	if s.Post != nil {
		if out.post, err = c.stmt(s.Post); err != nil {
			return nil, err
		}
	}
	if out.body, err = c.block(s.Body); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compiler) rangeLoop(s *cg.Range) (Stmt, error) {
	x, err := c.expr(s.X)
	if err != nil {
		return nil, err
	}
	c.push()
	defer c.pop()
	out := &Range{label: s.Label, x: x}
	out.key = c.declare(s.Key)
	out.value = c.declare(s.Value)
	if out.body, err = c.block(s.Body); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compiler) exprs(exprs []cg.Expr) ([]Evaluator, error) {
	out := make([]Evaluator, 0, len(exprs))
	for _, e := range exprs {
		ev, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (c *compiler) expr(e cg.Expr) (Evaluator, error) {
	switch e := e.(type) {
	case *cg.Literal:
		return &Literal{e.Value}, nil
	case *cg.Name:
		return c.name(e.Name)
	case *cg.Empty:
		return &Literal{struct{}{}}, nil
	case *cg.Unary:
		operand, err := c.expr(e.Operand)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case "!":
			return &Not{operand}, nil
		case "-":
			return &Neg{operand}, nil
		}
		return nil, fmt.Errorf("unknown unary operator %q", e.Op)
	case *cg.Binary:
		return c.binary(e)
	case *cg.Index:
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		index, err := c.expr(e.Index)
		if err != nil {
			return nil, err
		}
		return &Index{container: x, index: index}, nil
	case *cg.Slice:
		out := &SliceExpr{}
		var err error
		if out.x, err = c.expr(e.X); err != nil {
			return nil, err
		}
		if e.Lo != nil {
			if out.lo, err = c.expr(e.Lo); err != nil {
				return nil, err
			}
		}
		if e.Hi != nil {
			if out.hi, err = c.expr(e.Hi); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *cg.Call:
		return c.call(e)
	case *cg.Cast:
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		if e.Assert {
			check, ok := assertions[e.Type]
			if !ok {
				return nil, fmt.Errorf("cannot assert to %q", e.Type)
			}
			return &Assert{expr: x, typ: e.Type, check: check}, nil
		}
		switch e.Type {
		case "int", "int64", "float64", "any":
			return &Convert{expr: x, typ: e.Type}, nil
		}
		return nil, fmt.Errorf("cannot convert to %q", e.Type)
	case *cg.MakeSlice:
		if _, err := makeSlice(e.Elem, 0); err != nil {
			return nil, err
		}
		out := &MakeSlice{elem: e.Elem}
		if e.Cap != nil {
			var err error
			if out.cap, err = c.expr(e.Cap); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *cg.MakeMap:
		fn, err := makeMap(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		return &MakeMap{fn}, nil
	case *cg.ArrayLit:
		elems, err := c.exprs(e.Elems)
		if err != nil {
			return nil, err
		}
		switch e.Type {
		case "[]any":
			return &SliceLit{elems}, nil
		case "[2]any":
			if len(elems) != 2 {
				return nil, fmt.Errorf("[2]any literal with %d elements", len(elems))
			}
			return &PairLit{elems[0], elems[1]}, nil
		}
		return nil, fmt.Errorf("unsupported literal type %q", e.Type)
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}

func (c *compiler) binary(e *cg.Binary) (Evaluator, error) {
	lhs, err := c.expr(e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := c.expr(e.RHS)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "&&":
		return &And{lhs, rhs}, nil
	case "||":
		return &Or{lhs, rhs}, nil
	case "==", "!=":
		negate := e.Op == "!="
		if cg.IsLiteral(e.RHS, nil) {
			return &IsNil{lhs, negate}, nil
		}
		if cg.IsLiteral(e.LHS, nil) {
			return &IsNil{rhs, negate}, nil
		}
		return &Equal{lhs, rhs, negate}, nil
	case "<", "<=", ">", ">=":
		return &Compare{op: e.Op, lhs: lhs, rhs: rhs}, nil
	case "+", "-", "*", "/":
		return &Arith{op: e.Op, lhs: lhs, rhs: rhs}, nil
	}
	return nil, fmt.Errorf("unknown operator %q", e.Op)
}

// call compiles the builtins len and append inline unless a local shadows
// them.
func (c *compiler) call(e *cg.Call) (Evaluator, error) {
	args, err := c.exprs(e.Args)
	if err != nil {
		return nil, err
	}
	if fn, ok := e.Func.(*cg.Name); ok {
		if _, shadowed := c.local(fn.Name); !shadowed {
			switch fn.Name {
			case "len":
				if len(args) != 1 {
					return nil, fmt.Errorf("len with %d arguments", len(args))
				}
				return &Len{args[0]}, nil
			case "append":
				if len(args) == 0 {
					return nil, fmt.Errorf("append without a slice")
				}
				return &Append{slice: args[0], elems: args[1:]}, nil
			}
		}
	}
	fn, err := c.expr(e.Func)
	if err != nil {
		return nil, err
	}
	return &Call{fn: fn, args: args}, nil
}
