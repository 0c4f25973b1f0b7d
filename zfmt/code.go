// Package zfmt renders compiled query units as Go source text.  The text is
// what the source backend evaluates, what the memo backend fingerprints and
// what "zjit explain" prints.
package zfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/runtime/builtin"
)

// Package is the package clause of every rendered unit.
const Package = "query"

// Unit renders a complete Go source file: the header comment, the package
// clause, imports, the entry function and the helpers it calls.
func Unit(u *codegen.Unit) string {
	helpers := builtin.Closure(u.HelperNames())
	c := &coder{}
	for _, line := range u.Header {
		c.write("// %s", line)
		c.ret()
	}
	c.blank()
	c.write("package %s", Package)
	c.blank()
	if imports := builtin.Imports(helpers); len(imports) > 0 {
		c.open("import (")
		for _, imp := range imports {
			c.ret()
			c.write("%q", imp)
		}
		c.close()
		c.ret()
		c.write(")")
		c.blank()
	}
	c.fn(u.Func)
	for _, h := range helpers {
		c.blank()
		for k, line := range strings.Split(h.Source, "\n") {
			if k > 0 {
				c.ret()
			}
			c.write(line)
		}
	}
	c.ret()
	c.flush()
	return c.String()
}

// Func renders just the entry function.  Two units whose Func text is equal
// compute the same thing regardless of the chain they were compiled from.
func Func(f *codegen.Func) string {
	c := &coder{}
	c.fn(f)
	c.ret()
	c.flush()
	return c.String()
}

func Expr(e codegen.Expr) string {
	c := &coder{}
	c.expr(e, 0)
	return c.String()
}

type coder struct {
	formatter
}

func (c *coder) fn(f *codegen.Func) {
	c.open("func %s(%s []any) any {", f.Name, f.Param)
	c.stmts(f.Body.Stmts)
	c.close()
	c.ret()
	c.write("}")
}

func (c *coder) stmts(stmts []codegen.Stmt) {
	for _, s := range stmts {
		c.ret()
		c.stmt(s)
	}
}

func (c *coder) block(b *codegen.Block) {
	c.stmts(b.Stmts)
	c.close()
	c.ret()
	c.write("}")
}

func (c *coder) label(name string) {
	if name != "" {
		c.depth--
		c.write("%s:", name)
		c.depth++
		c.ret()
	}
}

func (c *coder) stmt(s codegen.Stmt) {
	switch s := s.(type) {
	case *codegen.VarDecl:
		c.varDecl(s)
	case *codegen.Assign:
		c.assign(s)
	case *codegen.Block:
		c.open("{")
		c.block(s)
	case *codegen.For:
		c.label(s.Label)
		c.write("for ")
		if s.Init != nil || s.Post != nil {
			if s.Init != nil {
				c.stmt(s.Init)
			}
			c.write("; ")
			if s.Cond != nil {
				c.expr(s.Cond, 0)
			}
			c.write("; ")
			if s.Post != nil {
				c.stmt(s.Post)
			}
			c.write(" ")
		} else if s.Cond != nil {
			c.expr(s.Cond, 0)
			c.write(" ")
		}
		c.open("{")
		c.block(s.Body)
	case *codegen.Range:
		c.label(s.Label)
		key := s.Key
		if key == "" {
			key = "_"
		}
		switch {
		case key == "_" && s.Value == "":
			c.write("for range ")
		case s.Value == "":
			c.write("for %s := range ", key)
		default:
			c.write("for %s, %s := range ", key, s.Value)
		}
		c.expr(s.X, 0)
		c.open(" {")
		c.block(s.Body)
	case *codegen.If:
		c.write("if ")
		c.expr(s.Cond, 0)
		c.open(" {")
		c.stmts(s.Then.Stmts)
		c.close()
		c.ret()
		if s.Else != nil {
			c.open("} else {")
			c.block(s.Else)
		} else {
			c.write("}")
		}
	case *codegen.Return:
		if s.Result == nil {
			c.write("return")
			break
		}
		c.write("return ")
		c.expr(s.Result, 0)
	case *codegen.ExprStmt:
		c.expr(s.X, 0)
	case *codegen.Branch:
		if s.Label != "" {
			c.write("%s %s", s.Tok, s.Label)
		} else {
			c.write(s.Tok)
		}
	case *codegen.Comment:
		c.write("// %s", s.Text)
	case *codegen.Slot:
		if s.Stmt != nil {
			c.stmt(s.Stmt)
		}
	case *codegen.Slots:
		for k, stmt := range s.Stmts {
			if k > 0 {
				c.ret()
			}
			c.stmt(stmt)
		}
	default:
		panic(fmt.Sprintf("zfmt: unknown statement %T", s))
	}
}

func (c *coder) varDecl(d *codegen.VarDecl) {
	switch {
	case d.Value == nil:
		c.write("var %s %s", d.Name, d.Type)
	case d.Type != "":
		c.write("var %s %s = ", d.Name, d.Type)
		c.expr(d.Value, 0)
	default:
		c.write("%s := ", d.Name)
		c.expr(d.Value, 0)
	}
}

func (c *coder) assign(a *codegen.Assign) {
	c.expr(a.LHS, 0)
	if codegen.IsLiteral(a.RHS, 1) && (a.Op == "+=" || a.Op == "-=") {
		c.write(a.Op[:1] + a.Op[:1])
		return
	}
	c.write(" %s ", a.Op)
	c.expr(a.RHS, 0)
}

// Go operator precedence, highest binds tightest.
func precedence(op string) int {
	switch op {
	case "*", "/", "%", "<<", ">>", "&", "&^":
		return 5
	case "+", "-", "|", "^":
		return 4
	case "==", "!=", "<", "<=", ">", ">=":
		return 3
	case "&&":
		return 2
	case "||":
		return 1
	}
	panic(fmt.Sprintf("zfmt: unknown operator %q", op))
}

const primary = 6

func (c *coder) expr(e codegen.Expr, outer int) {
	switch e := e.(type) {
	case *codegen.Literal:
		c.literal(e.Value)
	case *codegen.Name:
		c.write(e.Name)
	case *codegen.Binary:
		prec := precedence(e.Op)
		if prec < outer {
			c.write("(")
		}
		c.expr(e.LHS, prec)
		c.write(" %s ", e.Op)
		c.expr(e.RHS, prec+1)
		if prec < outer {
			c.write(")")
		}
	case *codegen.Unary:
		c.write(e.Op)
		c.expr(e.Operand, primary)
	case *codegen.Field:
		c.expr(e.X, primary)
		c.write(".%s", e.Name)
	case *codegen.Index:
		c.expr(e.X, primary)
		c.write("[")
		c.expr(e.Index, 0)
		c.write("]")
	case *codegen.Slice:
		c.expr(e.X, primary)
		c.write("[")
		if e.Lo != nil {
			c.expr(e.Lo, 0)
		}
		c.write(":")
		if e.Hi != nil {
			c.expr(e.Hi, 0)
		}
		c.write("]")
	case *codegen.Call:
		c.expr(e.Func, primary)
		c.write("(")
		c.exprs(e.Args)
		c.write(")")
	case *codegen.Cast:
		if e.Assert {
			c.expr(e.X, primary)
			c.write(".(%s)", e.Type)
			break
		}
		c.write("%s(", e.Type)
		c.expr(e.X, 0)
		c.write(")")
	case *codegen.MakeSlice:
		if e.Cap == nil {
			c.write("make([]%s, 0)", e.Elem)
			break
		}
		c.write("make([]%s, 0, ", e.Elem)
		c.expr(e.Cap, 0)
		c.write(")")
	case *codegen.MakeMap:
		c.write("make(map[%s]%s)", e.Key, e.Value)
	case *codegen.ArrayLit:
		c.write("%s{", e.Type)
		c.exprs(e.Elems)
		c.write("}")
	case *codegen.Empty:
		c.write("struct{}{}")
	default:
		panic(fmt.Sprintf("zfmt: unknown expression %T", e))
	}
}

func (c *coder) exprs(exprs []codegen.Expr) {
	for k, e := range exprs {
		if k > 0 {
			c.write(", ")
		}
		c.expr(e, 0)
	}
}

func (c *coder) literal(v any) {
	switch v := v.(type) {
	case nil:
		c.write("nil")
	case bool:
		c.write(strconv.FormatBool(v))
	case int:
		c.write(strconv.Itoa(v))
	case int64:
		c.write("int64(%d)", v)
	case float64:
		switch {
		case math.IsNaN(v):
			c.write("math.NaN()")
		case math.IsInf(v, 0):
			c.write("math.Inf(%d)", int(math.Copysign(1, v)))
		default:
			c.write("float64(%s)", strconv.FormatFloat(v, 'g', -1, 64))
		}
	case string:
		c.write(strconv.Quote(v))
	default:
		panic(fmt.Sprintf("zfmt: unsupported literal %T", v))
	}
}
