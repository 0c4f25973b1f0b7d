package memo_test

import (
	"testing"

	cg "github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/runtime/memo"
	"github.com/brimdata/zjit/runtime/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counting struct {
	count int
}

func (b *counting) Compile(u *cg.Unit) (cg.Executor, error) {
	b.count++
	return vm.New().Compile(u)
}

func constant(v any) *cg.Unit {
	return cg.NewUnit([]string{"ignored by the fingerprint"}, &cg.Func{
		Name:  "query",
		Param: "params",
		Body:  &cg.Block{Stmts: []cg.Stmt{cg.Ret(cg.Lit(v))}},
	})
}

func TestEqualTextSharesExecutor(t *testing.T) {
	next := &counting{}
	b, err := memo.New(next, 8, nil)
	require.NoError(t, err)
	e1, err := b.Compile(constant(1))
	require.NoError(t, err)
	e2, err := b.Compile(constant(1))
	require.NoError(t, err)
	assert.Same(t, e1, e2)
	e3, err := b.Compile(constant(2))
	require.NoError(t, err)
	assert.NotSame(t, e1, e3)
	assert.Equal(t, 1, e1.Execute(nil))
	assert.Equal(t, 2, e3.Execute(nil))
	assert.Equal(t, 2, next.count)
	assert.Equal(t, 2, b.Len())
}

func TestEviction(t *testing.T) {
	next := &counting{}
	b, err := memo.New(next, 1, nil)
	require.NoError(t, err)
	for _, v := range []int{1, 2, 1} {
		_, err := b.Compile(constant(v))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, next.count)
	assert.Equal(t, 1, b.Len())
}

func TestErrorsAreNotRemembered(t *testing.T) {
	next := &counting{}
	b, err := memo.New(next, 4, nil)
	require.NoError(t, err)
	bad := cg.NewUnit(nil, &cg.Func{
		Name:  "query",
		Param: "params",
		Body:  &cg.Block{Stmts: []cg.Stmt{cg.Ret(cg.Id("undefined"))}},
	})
	_, err = b.Compile(bad)
	assert.Error(t, err)
	_, err = b.Compile(bad)
	assert.Error(t, err)
	assert.Equal(t, 2, next.count)
	assert.Zero(t, b.Len())
}

func TestInvalidSize(t *testing.T) {
	_, err := memo.New(&counting{}, 0, nil)
	assert.Error(t, err)
}
