package host_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corral-dev/corral-host-sdk/host"
)

func Test_ResourceTable_PushGetDelete(t *testing.T) {
	tbl := host.NewResourceTable()

	id := tbl.Push("payload")
	v, ok := tbl.Get(id)
	require.True(t, ok)
	assert.Equal(t, "payload", v)
	assert.Equal(t, 1, tbl.Len())

	v, ok = tbl.Delete(id)
	require.True(t, ok)
	assert.Equal(t, "payload", v)
	assert.Zero(t, tbl.Len())

	_, ok = tbl.Get(id)
	assert.False(t, ok)
	_, ok = tbl.Delete(id)
	assert.False(t, ok)
}

func Test_ResourceTable_HandlesNeverReused(t *testing.T) {
	tbl := host.NewResourceTable()

	first := tbl.Push(1)
	_, ok := tbl.Delete(first)
	require.True(t, ok)

	second := tbl.Push(2)
	assert.NotEqual(t, first, second)
}

func Test_GetResource_Typed(t *testing.T) {
	tbl := host.NewResourceTable()
	id := tbl.Push(42)

	v, err := host.GetResource[int](tbl, id)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = host.GetResource[string](tbl, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds int")

	_, err = host.GetResource[int](tbl, 9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func Test_NewInstance_Defaults(t *testing.T) {
	inst := host.NewInstance(nil)

	require.NotNil(t, inst.Handler)
	require.NotNil(t, inst.Stdin)
	require.NotNil(t, inst.Stdout)
	require.NotNil(t, inst.Stderr)
	require.NotNil(t, inst.Resources)

	// All three streams start Unset.
	_, had := inst.Stdin.Take()
	assert.False(t, had)
	_, had = inst.Stdout.Take()
	assert.False(t, had)
	_, had = inst.Stderr.Take()
	assert.False(t, had)
}
