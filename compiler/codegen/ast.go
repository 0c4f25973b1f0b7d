// Package codegen is the small Go-shaped AST that compiled query shapes are
// emitted into.  Emitters build it, cleanup passes rewrite it, zfmt renders
// it, and backends turn it into an Executor.
package codegen

type Node interface {
	codegenNode()
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

// Expressions

type (
	// Literal holds an int, int64, float64, bool, string or nil.  The
	// zero-sized struct value is spelled with Empty.
	Literal struct {
		Value any
	}
	Name struct {
		Name string
	}
	Binary struct {
		Op  string
		LHS Expr
		RHS Expr
	}
	Unary struct {
		Op      string
		Operand Expr
	}
	Field struct {
		X    Expr
		Name string
	}
	Index struct {
		X     Expr
		Index Expr
	}
	Slice struct {
		X  Expr
		Lo Expr
		Hi Expr
	}
	Call struct {
		Func Expr
		Args []Expr
	}
	// Cast is a type assertion x.(T) when Assert is set and a conversion
	// T(x) otherwise.
	Cast struct {
		X      Expr
		Type   string
		Assert bool
	}
	// MakeSlice creates an empty slice of Elem with capacity Cap.
	MakeSlice struct {
		Elem string
		Cap  Expr
	}
	MakeMap struct {
		Key   string
		Value string
	}
	// ArrayLit is a composite literal of an array or slice type.
	ArrayLit struct {
		Type  string
		Elems []Expr
	}
	Empty struct{}
)

// Statements

type (
	VarDecl struct {
		Name  string
		Type  string
		Value Expr
	}
	// Assign covers =, +=, -= with an arbitrary addressable LHS.
	Assign struct {
		LHS Expr
		Op  string
		RHS Expr
	}
	Block struct {
		Stmts []Stmt
	}
	For struct {
		Label string
		Init  Stmt
		Cond  Expr
		Post  Stmt
		Body  *Block
	}
	Range struct {
		Label string
		Key   string
		Value string
		X     Expr
		Body  *Block
	}
	If struct {
		Cond Expr
		Then *Block
		Else *Block
	}
	Return struct {
		Result Expr
	}
	ExprStmt struct {
		X Expr
	}
	// Branch is break or continue with an optional label.
	Branch struct {
		Tok   string
		Label string
	}
	Comment struct {
		Text string
	}
	// Slot is a placeholder later replaced by exactly one statement.
	Slot struct {
		Stmt Stmt
	}
	// Slots is a placeholder later replaced by zero or more statements.
	// It is flattened into its enclosing block before rendering.
	Slots struct {
		Stmts []Stmt
	}
)

func (*Literal) codegenNode()   {}
func (*Name) codegenNode()      {}
func (*Binary) codegenNode()    {}
func (*Unary) codegenNode()     {}
func (*Field) codegenNode()     {}
func (*Index) codegenNode()     {}
func (*Slice) codegenNode()     {}
func (*Call) codegenNode()      {}
func (*Cast) codegenNode()      {}
func (*MakeSlice) codegenNode() {}
func (*MakeMap) codegenNode()   {}
func (*ArrayLit) codegenNode()  {}
func (*Empty) codegenNode()     {}

func (*Literal) exprNode()   {}
func (*Name) exprNode()      {}
func (*Binary) exprNode()    {}
func (*Unary) exprNode()     {}
func (*Field) exprNode()     {}
func (*Index) exprNode()     {}
func (*Slice) exprNode()     {}
func (*Call) exprNode()      {}
func (*Cast) exprNode()      {}
func (*MakeSlice) exprNode() {}
func (*MakeMap) exprNode()   {}
func (*ArrayLit) exprNode()  {}
func (*Empty) exprNode()     {}

func (*VarDecl) codegenNode()  {}
func (*Assign) codegenNode()   {}
func (*Block) codegenNode()    {}
func (*For) codegenNode()      {}
func (*Range) codegenNode()    {}
func (*If) codegenNode()       {}
func (*Return) codegenNode()   {}
func (*ExprStmt) codegenNode() {}
func (*Branch) codegenNode()   {}
func (*Comment) codegenNode()  {}
func (*Slot) codegenNode()     {}
func (*Slots) codegenNode()    {}

func (*VarDecl) stmtNode()  {}
func (*Assign) stmtNode()   {}
func (*Block) stmtNode()    {}
func (*For) stmtNode()      {}
func (*Range) stmtNode()    {}
func (*If) stmtNode()       {}
func (*Return) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
func (*Branch) stmtNode()   {}
func (*Comment) stmtNode()  {}
func (*Slot) stmtNode()     {}
func (*Slots) stmtNode()    {}

// Func is the single function a compiled shape renders to.  It always has
// the signature func(params []any) any.
type Func struct {
	Name  string
	Param string
	Body  *Block
}

func (b *Block) Append(stmts ...Stmt) {
	b.Stmts = append(b.Stmts, stmts...)
}

func (s *Slot) Set(stmt Stmt) {
	if s.Stmt != nil {
		panic("codegen: slot already filled")
	}
	s.Stmt = stmt
}

func (s *Slots) Append(stmts ...Stmt) {
	s.Stmts = append(s.Stmts, stmts...)
}

// Constructors used throughout the emitters.

func Lit(v any) *Literal {
	return &Literal{Value: v}
}

func Id(name string) *Name {
	return &Name{Name: name}
}

func Bin(op string, lhs, rhs Expr) *Binary {
	return &Binary{Op: op, LHS: lhs, RHS: rhs}
}

func Not(e Expr) *Unary {
	return &Unary{Op: "!", Operand: e}
}

func CallOf(fn string, args ...Expr) *Call {
	return &Call{Func: Id(fn), Args: args}
}

func Invoke(fn Expr, args ...Expr) *Call {
	return &Call{Func: fn, Args: args}
}

func Decl(name string, value Expr) *VarDecl {
	return &VarDecl{Name: name, Value: value}
}

func Set(lhs Expr, rhs Expr) *Assign {
	return &Assign{LHS: lhs, Op: "=", RHS: rhs}
}

func Inc(lhs Expr, by Expr) *Assign {
	return &Assign{LHS: lhs, Op: "+=", RHS: by}
}

func Ret(e Expr) *Return {
	return &Return{Result: e}
}

func Do(e Expr) *ExprStmt {
	return &ExprStmt{X: e}
}

func IfThen(cond Expr, then ...Stmt) *If {
	return &If{Cond: cond, Then: &Block{Stmts: then}}
}

func Continue() *Branch {
	return &Branch{Tok: "continue"}
}

func Break(label string) *Branch {
	return &Branch{Tok: "break", Label: label}
}

// IsLiteral reports whether e is a literal with value v.
func IsLiteral(e Expr, v any) bool {
	lit, ok := e.(*Literal)
	return ok && lit.Value == v
}
