package codegen_test

import (
	"testing"

	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/zfmt"
	"github.com/stretchr/testify/assert"
)

func TestCleanup(t *testing.T) {
	f := &cg.Func{Name: "Execute", Param: "params", Body: &cg.Block{Stmts: []cg.Stmt{
		cg.Decl("unused", cg.Lit(3)),
		cg.Decl("n", cg.Lit(0)),
		&cg.Slots{Stmts: []cg.Stmt{cg.Inc(cg.Id("n"), cg.Bin("+", cg.Lit(1), cg.Lit(0)))}},
		&cg.Slot{},
		cg.Decl("side", cg.Invoke(&cg.Index{X: cg.Id("params"), Index: cg.Lit(0)}, cg.Lit(nil))),
		&cg.Range{Label: "loop", Key: "k", Value: "v", X: cg.Id("params"), Body: &cg.Block{Stmts: []cg.Stmt{
			cg.IfThen(cg.Bin("==", cg.Id("v"), cg.Lit(nil)), cg.Continue()),
			cg.Inc(cg.Id("n"), cg.Lit(1)),
		}}},
		&cg.Block{Stmts: []cg.Stmt{
			cg.Decl("n", cg.Lit(2)),
			cg.Inc(cg.Id("n"), cg.Lit(1)),
		}},
		cg.Ret(cg.Id("n")),
	}}}
	cg.Cleanup(f, cg.NewNamer("params"))
	expected := `func Execute(params []any) any {
	n := 0
	n++
	params[0](nil)
	for _, v := range params {
		if v == nil {
			continue
		}
		n++
	}
	{
		n2 := 2
		n2++
	}
	return n
}
`
	assert.Equal(t, expected, zfmt.Func(f))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "i", zfmt.Expr(cg.FoldExpr(cg.Bin("-", cg.Id("i"), cg.Lit(0)))))
	assert.Equal(t, "i", zfmt.Expr(cg.FoldExpr(cg.Bin("+", cg.Lit(0), cg.Id("i")))))
	assert.Equal(t, "7", zfmt.Expr(cg.FoldExpr(cg.Bin("+", cg.Lit(3), cg.Lit(4)))))
	assert.Equal(t, "true", zfmt.Expr(cg.FoldExpr(cg.Bin("<", cg.Lit(3), cg.Lit(4)))))
	assert.Equal(t, "i + 7", zfmt.Expr(cg.FoldExpr(cg.Bin("+", cg.Id("i"), cg.Bin("+", cg.Lit(3), cg.Lit(4))))))
	full := &cg.Slice{X: cg.Id("xs"), Lo: cg.Lit(0), Hi: cg.CallOf("len", cg.Id("xs"))}
	assert.Equal(t, "xs", zfmt.Expr(cg.FoldExpr(full)))
	partial := &cg.Slice{X: cg.Id("xs"), Lo: cg.Lit(1), Hi: cg.CallOf("len", cg.Id("xs"))}
	assert.Equal(t, "xs[1:len(xs)]", zfmt.Expr(cg.FoldExpr(partial)))
}

func TestPure(t *testing.T) {
	assert.True(t, cg.Pure(cg.Bin("+", cg.Id("a"), cg.CallOf("len", cg.Id("b")))))
	assert.True(t, cg.Pure(cg.CallOf("minInt", cg.Lit(1), cg.Id("b"))))
	assert.False(t, cg.Pure(cg.CallOf("append", cg.Id("a"), cg.Lit(1))))
	assert.False(t, cg.Pure(cg.Invoke(cg.Id("f"), cg.Id("a"))))
	assert.True(t, cg.Pure(&cg.Cast{X: cg.Id("a"), Type: "int", Assert: true}))
}

func TestDropLabels(t *testing.T) {
	inner := &cg.Range{Label: "inner", Value: "y", X: cg.Id("ys"), Body: &cg.Block{Stmts: []cg.Stmt{
		cg.Break("outer"),
	}}}
	outer := &cg.Range{Label: "outer", Value: "x", X: cg.Id("xs"), Body: &cg.Block{Stmts: []cg.Stmt{inner}}}
	cg.DropLabels(&cg.Block{Stmts: []cg.Stmt{outer}})
	assert.Equal(t, "outer", outer.Label)
	assert.Empty(t, inner.Label)
}

func TestNamer(t *testing.T) {
	n := cg.NewNamer("p")
	assert.Equal(t, "p2", n.Fresh("p"))
	assert.Equal(t, "p3", n.Fresh("p"))
	assert.Equal(t, "q", n.Fresh("q"))
	assert.True(t, n.Used("q"))
	assert.False(t, n.Used("r"))
}
