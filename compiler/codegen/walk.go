package codegen

import "fmt"

// A Rewriter is called on every expression after its children have been
// rewritten.  It returns the replacement, which may be e itself.
type Rewriter func(e Expr) Expr

// RewriteBlock rewrites every expression reachable from b in place.
func RewriteBlock(b *Block, fn Rewriter) {
	for _, s := range b.Stmts {
		rewriteStmt(s, fn)
	}
}

func rewriteStmt(s Stmt, fn Rewriter) {
	switch s := s.(type) {
	case nil:
	case *VarDecl:
		if s.Value != nil {
			s.Value = RewriteExpr(s.Value, fn)
		}
	case *Assign:
		s.LHS = RewriteExpr(s.LHS, fn)
		s.RHS = RewriteExpr(s.RHS, fn)
	case *Block:
		RewriteBlock(s, fn)
	case *For:
		rewriteStmt(s.Init, fn)
		if s.Cond != nil {
			s.Cond = RewriteExpr(s.Cond, fn)
		}
		rewriteStmt(s.Post, fn)
		RewriteBlock(s.Body, fn)
	case *Range:
		s.X = RewriteExpr(s.X, fn)
		RewriteBlock(s.Body, fn)
	case *If:
		s.Cond = RewriteExpr(s.Cond, fn)
		RewriteBlock(s.Then, fn)
		if s.Else != nil {
			RewriteBlock(s.Else, fn)
		}
	case *Return:
		if s.Result != nil {
			s.Result = RewriteExpr(s.Result, fn)
		}
	case *ExprStmt:
		s.X = RewriteExpr(s.X, fn)
	case *Slot:
		rewriteStmt(s.Stmt, fn)
	case *Slots:
		for _, stmt := range s.Stmts {
			rewriteStmt(stmt, fn)
		}
	case *Branch, *Comment:
	default:
		panic(fmt.Sprintf("codegen: unknown statement %T", s))
	}
}

// RewriteExpr rewrites e bottom-up and returns the result.
func RewriteExpr(e Expr, fn Rewriter) Expr {
	switch e := e.(type) {
	case *Binary:
		e.LHS = RewriteExpr(e.LHS, fn)
		e.RHS = RewriteExpr(e.RHS, fn)
	case *Unary:
		e.Operand = RewriteExpr(e.Operand, fn)
	case *Field:
		e.X = RewriteExpr(e.X, fn)
	case *Index:
		e.X = RewriteExpr(e.X, fn)
		e.Index = RewriteExpr(e.Index, fn)
	case *Slice:
		e.X = RewriteExpr(e.X, fn)
		if e.Lo != nil {
			e.Lo = RewriteExpr(e.Lo, fn)
		}
		if e.Hi != nil {
			e.Hi = RewriteExpr(e.Hi, fn)
		}
	case *Call:
		e.Func = RewriteExpr(e.Func, fn)
		for k := range e.Args {
			e.Args[k] = RewriteExpr(e.Args[k], fn)
		}
	case *Cast:
		e.X = RewriteExpr(e.X, fn)
	case *MakeSlice:
		if e.Cap != nil {
			e.Cap = RewriteExpr(e.Cap, fn)
		}
	case *ArrayLit:
		for k := range e.Elems {
			e.Elems[k] = RewriteExpr(e.Elems[k], fn)
		}
	case *Literal, *Name, *MakeMap, *Empty:
	default:
		panic(fmt.Sprintf("codegen: unknown expression %T", e))
	}
	return fn(e)
}

// Inspect calls visit on every node reachable from n in depth-first order.
// Statements are visited before the expressions they contain.
func Inspect(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch n := n.(type) {
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, visit)
		}
	case *VarDecl:
		if n.Value != nil {
			Inspect(n.Value, visit)
		}
	case *Assign:
		Inspect(n.LHS, visit)
		Inspect(n.RHS, visit)
	case *For:
		if n.Init != nil {
			Inspect(n.Init, visit)
		}
		if n.Cond != nil {
			Inspect(n.Cond, visit)
		}
		if n.Post != nil {
			Inspect(n.Post, visit)
		}
		Inspect(n.Body, visit)
	case *Range:
		Inspect(n.X, visit)
		Inspect(n.Body, visit)
	case *If:
		Inspect(n.Cond, visit)
		Inspect(n.Then, visit)
		if n.Else != nil {
			Inspect(n.Else, visit)
		}
	case *Return:
		if n.Result != nil {
			Inspect(n.Result, visit)
		}
	case *ExprStmt:
		Inspect(n.X, visit)
	case *Slot:
		if n.Stmt != nil {
			Inspect(n.Stmt, visit)
		}
	case *Slots:
		for _, s := range n.Stmts {
			Inspect(s, visit)
		}
	case *Binary:
		Inspect(n.LHS, visit)
		Inspect(n.RHS, visit)
	case *Unary:
		Inspect(n.Operand, visit)
	case *Field:
		Inspect(n.X, visit)
	case *Index:
		Inspect(n.X, visit)
		Inspect(n.Index, visit)
	case *Slice:
		Inspect(n.X, visit)
		if n.Lo != nil {
			Inspect(n.Lo, visit)
		}
		if n.Hi != nil {
			Inspect(n.Hi, visit)
		}
	case *Call:
		Inspect(n.Func, visit)
		for _, a := range n.Args {
			Inspect(a, visit)
		}
	case *Cast:
		Inspect(n.X, visit)
	case *MakeSlice:
		if n.Cap != nil {
			Inspect(n.Cap, visit)
		}
	case *ArrayLit:
		for _, e := range n.Elems {
			Inspect(e, visit)
		}
	}
}
