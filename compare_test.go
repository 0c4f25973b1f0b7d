package zjit_test

import (
	"math"
	"sort"
	"testing"

	"github.com/brimdata/zjit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, zjit.Compare(nil, nil))
	assert.Equal(t, -1, zjit.Compare(nil, "a"))
	assert.Equal(t, 1, zjit.Compare("b", "a"))
	assert.Equal(t, -1, zjit.Compare(1, int64(2)))
	assert.Equal(t, 0, zjit.Compare(7, 7))
	assert.Equal(t, -1, zjit.Compare(int32(7), 7))
	assert.Equal(t, 1, zjit.Compare(int64(7), 7))
	assert.Equal(t, -1, zjit.Compare(math.NaN(), -1.0))
	assert.Equal(t, -1, zjit.Compare(math.Copysign(0, -1), 0.0))
	assert.Equal(t, -1, zjit.Compare(false, true))
	assert.Equal(t, -1, zjit.Compare(3, "3"))
	assert.Panics(t, func() { zjit.Compare([]int{1}, []int{2}) })
}

func TestCompareSortsMixed(t *testing.T) {
	vals := []any{"c", 2, nil, 1.5, "a", 1}
	sort.SliceStable(vals, func(i, j int) bool { return zjit.Compare(vals[i], vals[j]) < 0 })
	require.Equal(t, []any{nil, 1, 2, 1.5, "a", "c"}, vals)
}

func TestTypeBoxing(t *testing.T) {
	assert.Equal(t, zjit.TypeBoxedInt, zjit.TypeInt.Boxed())
	assert.Equal(t, zjit.TypeInt, zjit.TypeBoxedInt.Unboxed())
	assert.Equal(t, zjit.TypeString, zjit.TypeString.Boxed())
	assert.True(t, zjit.TypeFloat64.IsPrimitive())
	assert.False(t, zjit.TypeFloat64.Nullable())
	assert.True(t, zjit.TypeBoxedFloat64.Nullable())
	assert.Equal(t, "any", zjit.TypeBoxedInt64.GoType())
	typ, err := zjit.LookupType("boxed(int64)")
	require.NoError(t, err)
	assert.Equal(t, zjit.TypeBoxedInt64, typ)
	_, err = zjit.LookupType("decimal")
	assert.Error(t, err)
}
