package codegen

import "fmt"

// Cleanup runs the post-emission passes over f in their fixed order:
// placeholder flattening, algebraic folding, removal of unused pure
// temporaries, renaming of duplicate locals and dropping of unused labels.
func Cleanup(f *Func, namer *Namer) {
	Flatten(f.Body)
	Fold(f.Body)
	for RemoveUnused(f.Body) {
	}
	RenameDuplicates(f, namer)
	DropLabels(f.Body)
}

// Flatten replaces every Slot by its statement and splices every Slots into
// its enclosing block.  Empty placeholders disappear.
func Flatten(b *Block) {
	var out []Stmt
	for _, s := range b.Stmts {
		out = appendFlat(out, s)
	}
	b.Stmts = out
}

func appendFlat(out []Stmt, s Stmt) []Stmt {
	switch s := s.(type) {
	case *Slot:
		if s.Stmt != nil {
			out = appendFlat(out, s.Stmt)
		}
		return out
	case *Slots:
		for _, stmt := range s.Stmts {
			out = appendFlat(out, stmt)
		}
		return out
	case *Block:
		Flatten(s)
	case *For:
		Flatten(s.Body)
	case *Range:
		Flatten(s.Body)
	case *If:
		Flatten(s.Then)
		if s.Else != nil {
			Flatten(s.Else)
		}
	}
	return append(out, s)
}

// Fold simplifies x-0, x+0, 0+x, integer literal arithmetic and comparison,
// and the full reslice x[0:len(x)].
func Fold(b *Block) {
	RewriteBlock(b, fold)
}

func FoldExpr(e Expr) Expr {
	return RewriteExpr(e, fold)
}

func fold(e Expr) Expr {
	switch e := e.(type) {
	case *Binary:
		lhs, lok := intLiteral(e.LHS)
		rhs, rok := intLiteral(e.RHS)
		switch {
		case lok && rok:
			switch e.Op {
			case "+":
				return Lit(lhs + rhs)
			case "-":
				return Lit(lhs - rhs)
			case "*":
				return Lit(lhs * rhs)
			case "==":
				return Lit(lhs == rhs)
			case "!=":
				return Lit(lhs != rhs)
			case "<":
				return Lit(lhs < rhs)
			case "<=":
				return Lit(lhs <= rhs)
			case ">":
				return Lit(lhs > rhs)
			case ">=":
				return Lit(lhs >= rhs)
			}
		case rok && rhs == 0 && (e.Op == "+" || e.Op == "-"):
			return e.LHS
		case lok && lhs == 0 && e.Op == "+":
			return e.RHS
		}
	case *Slice:
		x, ok := e.X.(*Name)
		if !ok || !IsLiteral(e.Lo, 0) {
			break
		}
		if call, ok := e.Hi.(*Call); ok && isLenOf(call, x.Name) {
			return x
		}
	}
	return e
}

func intLiteral(e Expr) (int, bool) {
	if lit, ok := e.(*Literal); ok {
		v, ok := lit.Value.(int)
		return v, ok
	}
	return 0, false
}

func isLenOf(call *Call, name string) bool {
	fn, ok := call.Func.(*Name)
	if !ok || fn.Name != "len" || len(call.Args) != 1 {
		return false
	}
	arg, ok := call.Args[0].(*Name)
	return ok && arg.Name == name
}

// Pure reports whether evaluating e has no effect other than producing its
// value.  Calls are pure only for the builtins known to be side-effect free.
func Pure(e Expr) bool {
	switch e := e.(type) {
	case nil, *Literal, *Name, *MakeMap, *Empty:
		return true
	case *Binary:
		return Pure(e.LHS) && Pure(e.RHS)
	case *Unary:
		return Pure(e.Operand)
	case *Field:
		return Pure(e.X)
	case *Index:
		return Pure(e.X) && Pure(e.Index)
	case *Slice:
		return Pure(e.X) && Pure(e.Lo) && Pure(e.Hi)
	case *Cast:
		return Pure(e.X)
	case *MakeSlice:
		return Pure(e.Cap)
	case *ArrayLit:
		for _, elem := range e.Elems {
			if !Pure(elem) {
				return false
			}
		}
		return true
	case *Call:
		fn, ok := e.Func.(*Name)
		if !ok || (fn.Name != "len" && fn.Name != "minInt") {
			return false
		}
		for _, a := range e.Args {
			if !Pure(a) {
				return false
			}
		}
		return true
	}
	return false
}

// RemoveUnused deletes declarations of temporaries that are never read along
// with the assignments to them, and blanks unread range variables.  A call
// whose result goes unread is kept as a bare statement.  It reports whether
// anything changed.
func RemoveUnused(b *Block) bool {
	reads := make(map[string]int)
	Inspect(b, func(n Node) {
		switch n := n.(type) {
		case *Name:
			reads[n.Name]++
		case *Assign:
			// A plain store to a local is not a read of it.
			if name, ok := n.LHS.(*Name); ok {
				reads[name.Name]--
			}
		}
	})
	dead := make(map[string]bool)
	Inspect(b, func(n Node) {
		switch n := n.(type) {
		case *VarDecl:
			if reads[n.Name] <= 0 && (Pure(n.Value) || isCall(n.Value)) {
				dead[n.Name] = true
			}
		}
	})
	changed := pruneBlock(b, dead)
	Inspect(b, func(n Node) {
		if r, ok := n.(*Range); ok {
			if r.Key != "" && r.Key != "_" && reads[r.Key] <= 0 {
				r.Key = "_"
				changed = true
			}
			if r.Value != "" && r.Value != "_" && reads[r.Value] <= 0 {
				r.Value = ""
				changed = true
			}
		}
	})
	return changed
}

func isCall(e Expr) bool {
	_, ok := e.(*Call)
	return ok
}

func pruneBlock(b *Block, dead map[string]bool) bool {
	var changed bool
	out := b.Stmts[:0]
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *VarDecl:
			if dead[s.Name] {
				changed = true
				if !Pure(s.Value) {
					out = append(out, Do(s.Value))
				}
				continue
			}
		case *Assign:
			if name, ok := s.LHS.(*Name); ok && dead[name.Name] {
				if Pure(s.RHS) {
					changed = true
					continue
				}
				if isCall(s.RHS) {
					changed = true
					out = append(out, Do(s.RHS))
					continue
				}
			}
		case *Block:
			changed = pruneBlock(s, dead) || changed
		case *For:
			changed = pruneBlock(s.Body, dead) || changed
		case *Range:
			changed = pruneBlock(s.Body, dead) || changed
		case *If:
			changed = pruneBlock(s.Then, dead) || changed
			if s.Else != nil {
				changed = pruneBlock(s.Else, dead) || changed
			}
		}
		out = append(out, s)
	}
	b.Stmts = out
	return changed
}

// RenameDuplicates gives a fresh name to every local that redeclares or
// shadows a name already in scope and rewrites the uses it governs.
func RenameDuplicates(f *Func, namer *Namer) {
	r := &renamer{namer: namer, declared: map[string]bool{f.Param: true}}
	r.push()
	r.block(f.Body)
	r.pop()
}

type renamer struct {
	namer    *Namer
	declared map[string]bool
	scopes   []map[string]string
}

func (r *renamer) push() {
	r.scopes = append(r.scopes, make(map[string]string))
}

func (r *renamer) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *renamer) lookup(name string) string {
	for k := len(r.scopes) - 1; k >= 0; k-- {
		if to, ok := r.scopes[k][name]; ok {
			return to
		}
	}
	return name
}

func (r *renamer) declare(name string) string {
	if name == "" || name == "_" {
		return name
	}
	to := name
	if r.declared[name] {
		to = r.namer.Fresh(name)
	}
	r.declared[to] = true
	r.namer.Reserve(to)
	r.scopes[len(r.scopes)-1][name] = to
	return to
}

func (r *renamer) block(b *Block) {
	r.push()
	for _, s := range b.Stmts {
		r.stmt(s)
	}
	r.pop()
}

func (r *renamer) expr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return RewriteExpr(e, func(e Expr) Expr {
		if n, ok := e.(*Name); ok {
			n.Name = r.lookup(n.Name)
		}
		return e
	})
}

func (r *renamer) stmt(s Stmt) {
	switch s := s.(type) {
	case nil:
	case *VarDecl:
		s.Value = r.expr(s.Value)
		s.Name = r.declare(s.Name)
	case *Assign:
		s.LHS = r.expr(s.LHS)
		s.RHS = r.expr(s.RHS)
	case *Block:
		r.block(s)
	case *For:
		r.push()
		r.stmt(s.Init)
		s.Cond = r.expr(s.Cond)
		r.stmt(s.Post)
		r.block(s.Body)
		r.pop()
	case *Range:
		s.X = r.expr(s.X)
		r.push()
		s.Key = r.declare(s.Key)
		s.Value = r.declare(s.Value)
		r.block(s.Body)
		r.pop()
	case *If:
		s.Cond = r.expr(s.Cond)
		r.block(s.Then)
		if s.Else != nil {
			r.block(s.Else)
		}
	case *Return:
		s.Result = r.expr(s.Result)
	case *ExprStmt:
		s.X = r.expr(s.X)
	case *Branch, *Comment:
	default:
		panic(fmt.Sprintf("codegen: cannot rename within %T", s))
	}
}

// DropLabels clears loop labels no branch refers to.
func DropLabels(b *Block) {
	used := make(map[string]bool)
	Inspect(b, func(n Node) {
		if br, ok := n.(*Branch); ok && br.Label != "" {
			used[br.Label] = true
		}
	})
	Inspect(b, func(n Node) {
		switch n := n.(type) {
		case *For:
			if !used[n.Label] {
				n.Label = ""
			}
		case *Range:
			if !used[n.Label] {
				n.Label = ""
			}
		}
	})
}
