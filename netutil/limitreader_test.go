package netutil_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corral-dev/corral-host-sdk/netutil"
)

func Test_LimitedReader_UnderLimit(t *testing.T) {
	r := netutil.NewLimitedReader(strings.NewReader("hello"), 100)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func Test_LimitedReader_ExactFit(t *testing.T) {
	r := netutil.NewLimitedReader(strings.NewReader("12345"), 5)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))
}

func Test_LimitedReader_OverLimit(t *testing.T) {
	r := netutil.NewLimitedReader(strings.NewReader("123456"), 5)

	_, err := io.ReadAll(r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, netutil.ErrSizeLimitExceeded))

	var sizeErr *netutil.SizeLimitExceededError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, int64(5), sizeErr.Limit)
}

func Test_LimitedReader_EmptyInput(t *testing.T) {
	r := netutil.NewLimitedReader(strings.NewReader(""), 5)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, data)
}
