package mem_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corral-dev/corral-host-sdk/capability"
	"github.com/corral-dev/corral-host-sdk/capability/provider/mem"
)

func Test_Blobstore_ContainerLifecycle(t *testing.T) {
	b := mem.NewBlobstore()
	ctx := context.Background()

	exists, err := b.ContainerExists(ctx, "photos")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, b.CreateContainer(ctx, "photos"))
	// Creating again is a no-op, not an error.
	require.NoError(t, b.CreateContainer(ctx, "photos"))

	exists, err = b.ContainerExists(ctx, "photos")
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := b.ContainerInfo(ctx, "photos")
	require.NoError(t, err)
	assert.Equal(t, "photos", info.Name)
	assert.NotZero(t, info.CreatedAt)

	require.NoError(t, b.DeleteContainer(ctx, "photos"))
	exists, err = b.ContainerExists(ctx, "photos")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_Blobstore_ContainerInfoMissing(t *testing.T) {
	b := mem.NewBlobstore()

	_, err := b.ContainerInfo(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, capability.ErrNotFound))
}

func Test_Blobstore_GetDataMissingObjectIsEmpty(t *testing.T) {
	b := mem.NewBlobstore()
	ctx := context.Background()
	require.NoError(t, b.CreateContainer(ctx, "c"))

	v, err := b.GetData(ctx, "c", "absent", capability.ByteRange{First: 0, Last: 1024})
	require.NoError(t, err)
	assert.Zero(t, v.Size)
	data, err := io.ReadAll(v.Data)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func Test_Blobstore_GetDataRanges(t *testing.T) {
	b := mem.NewBlobstore()
	ctx := context.Background()
	require.NoError(t, b.CreateContainer(ctx, "c"))
	require.NoError(t, b.WriteData(ctx, "c", "o", strings.NewReader("0123456789")))

	tests := []struct {
		name string
		rng  capability.ByteRange
		want string
	}{
		{"full range", capability.ByteRange{First: 0, Last: 9}, "0123456789"},
		{"inclusive middle", capability.ByteRange{First: 2, Last: 4}, "234"},
		{"single byte", capability.ByteRange{First: 5, Last: 5}, "5"},
		{"end clamped", capability.ByteRange{First: 7, Last: 1000}, "789"},
		{"start past end", capability.ByteRange{First: 10, Last: 20}, ""},
		{"inverted", capability.ByteRange{First: 4, Last: 2}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := b.GetData(ctx, "c", "o", tc.rng)
			require.NoError(t, err)
			data, err := io.ReadAll(v.Data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(data))
			assert.Equal(t, uint64(len(tc.want)), v.Size)
		})
	}
}

func Test_Blobstore_WriteOverwrites(t *testing.T) {
	b := mem.NewBlobstore()
	ctx := context.Background()
	require.NoError(t, b.CreateContainer(ctx, "c"))

	require.NoError(t, b.WriteData(ctx, "c", "o", strings.NewReader("first")))
	require.NoError(t, b.WriteData(ctx, "c", "o", strings.NewReader("second")))

	info, err := b.ObjectInfo(ctx, "c", "o")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), info.Size)
	assert.Equal(t, "c", info.Container)
}

func Test_Blobstore_ListAndDeleteObjects(t *testing.T) {
	b := mem.NewBlobstore()
	ctx := context.Background()
	require.NoError(t, b.CreateContainer(ctx, "c"))
	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, b.WriteData(ctx, "c", name, strings.NewReader("x")))
	}

	names, err := b.ListObjects(ctx, "c")
	require.NoError(t, err)
	got, err := capability.CollectObjectNames(ctx, names)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	// The sequence is not restartable.
	_, err = names.Next(ctx)
	assert.Equal(t, io.EOF, err)

	// Deleting absent names is not an error.
	require.NoError(t, b.DeleteObjects(ctx, "c", []string{"a", "nope"}))
	has, err := b.HasObject(ctx, "c", "a")
	require.NoError(t, err)
	assert.False(t, has)
}

func Test_Blobstore_ClearContainer(t *testing.T) {
	b := mem.NewBlobstore()
	ctx := context.Background()
	require.NoError(t, b.CreateContainer(ctx, "c"))
	require.NoError(t, b.WriteData(ctx, "c", "one", strings.NewReader("1")))
	require.NoError(t, b.WriteData(ctx, "c", "two", strings.NewReader("2")))

	require.NoError(t, b.ClearContainer(ctx, "c"))

	names, err := b.ListObjects(ctx, "c")
	require.NoError(t, err)
	got, err := capability.CollectObjectNames(ctx, names)
	require.NoError(t, err)
	assert.Empty(t, got)

	// The container itself survives.
	exists, err := b.ContainerExists(ctx, "c")
	require.NoError(t, err)
	assert.True(t, exists)
}

func Test_Blobstore_OperationsOnMissingContainer(t *testing.T) {
	b := mem.NewBlobstore()
	ctx := context.Background()

	_, err := b.HasObject(ctx, "absent", "o")
	assert.True(t, errors.Is(err, capability.ErrNotFound))

	err = b.WriteData(ctx, "absent", "o", strings.NewReader("x"))
	assert.True(t, errors.Is(err, capability.ErrNotFound))

	_, err = b.ListObjects(ctx, "absent")
	assert.True(t, errors.Is(err, capability.ErrNotFound))
}
