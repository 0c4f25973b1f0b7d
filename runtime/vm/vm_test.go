package vm_test

import (
	"testing"

	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/runtime/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(k int) cg.Expr {
	return &cg.Index{X: cg.Id("params"), Index: cg.Lit(k)}
}

func as(e cg.Expr, typ string) cg.Expr {
	return &cg.Cast{X: e, Type: typ, Assert: true}
}

func unit(stmts ...cg.Stmt) *cg.Unit {
	return cg.NewUnit(nil, &cg.Func{
		Name:  "query",
		Param: "params",
		Body:  &cg.Block{Stmts: stmts},
	})
}

func compile(t *testing.T, u *cg.Unit) cg.Executor {
	t.Helper()
	exec, err := vm.New().Compile(u)
	require.NoError(t, err)
	return exec
}

func TestRangeSkipsNulls(t *testing.T) {
	exec := compile(t, unit(
		cg.Decl("data", as(param(0), "[]any")),
		cg.Decl("total", cg.Lit(0)),
		&cg.Range{Key: "_", Value: "x", X: cg.Id("data"), Body: &cg.Block{Stmts: []cg.Stmt{
			cg.IfThen(cg.Bin("==", cg.Id("x"), cg.Lit(nil)), cg.Continue()),
			cg.Inc(cg.Id("total"), as(cg.Id("x"), "int")),
		}}},
		cg.Ret(cg.Id("total")),
	))
	assert.Equal(t, 6, exec.Execute([]any{[]any{1, nil, 2, 3}}))
	assert.Equal(t, 0, exec.Execute([]any{[]any{}}))
	assert.Panics(t, func() { exec.Execute([]any{[]any{"x"}}) })
}

func TestLabeledBreak(t *testing.T) {
	exec := compile(t, unit(
		cg.Decl("n", cg.Lit(0)),
		&cg.For{
			Label: "outer",
			Init:  cg.Decl("i", cg.Lit(0)),
			Cond:  cg.Bin("<", cg.Id("i"), cg.Lit(10)),
			Post:  cg.Inc(cg.Id("i"), cg.Lit(1)),
			Body: &cg.Block{Stmts: []cg.Stmt{
				&cg.Range{Key: "_", Value: "y", X: as(param(0), "[]any"), Body: &cg.Block{Stmts: []cg.Stmt{
					cg.IfThen(cg.Bin("==", cg.Id("y"), cg.Id("i")), cg.Break("outer")),
				}}},
				cg.Inc(cg.Id("n"), cg.Lit(1)),
			}},
		},
		cg.Ret(cg.Id("n")),
	))
	assert.Equal(t, 3, exec.Execute([]any{[]any{3}}))
	assert.Equal(t, 10, exec.Execute([]any{[]any{}}))
}

func TestCallsHelpersAndParameters(t *testing.T) {
	u := unit(
		cg.Decl("xs", &cg.MakeSlice{Elem: "any"}),
		cg.Set(cg.Id("xs"), cg.CallOf("append", cg.Id("xs"), cg.Invoke(param(0), cg.Lit(4)))),
		cg.Set(cg.Id("xs"), cg.CallOf("append", cg.Id("xs"), cg.CallOf("minInt", cg.Lit(7), cg.Lit(2)))),
		cg.Do(cg.CallOf("sortNatural", cg.Id("xs"))),
		cg.Ret(cg.Id("xs")),
	)
	u.Use("minInt")
	u.Use("sortNatural")
	exec := compile(t, u)
	double := func(v any) any { return v.(int) * 2 }
	assert.Equal(t, []any{2, 8}, exec.Execute([]any{double}))
}

func TestScopes(t *testing.T) {
	// The inner x shadows the outer one only inside its block.
	exec := compile(t, unit(
		cg.Decl("x", cg.Lit(1)),
		cg.IfThen(cg.Lit(true),
			cg.Decl("x", cg.Lit(10)),
			cg.Inc(cg.Id("x"), cg.Lit(5)),
		),
		cg.Ret(cg.Id("x")),
	))
	assert.Equal(t, 1, exec.Execute(nil))
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		unit *cg.Unit
	}{
		{"undefined", unit(cg.Ret(cg.Id("nope")))},
		{"assign to unknown", unit(cg.Set(cg.Id("nope"), cg.Lit(1)))},
		{"bad operator", unit(cg.Decl("x", cg.Bin("%", cg.Lit(1), cg.Lit(2))))},
		{"bad assertion", unit(cg.Decl("x", as(param(0), "chan int")))},
		{"bad branch", unit(&cg.Branch{Tok: "goto"})},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := vm.New().Compile(tc.unit)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "query: ")
		})
	}
}
