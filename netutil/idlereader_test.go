package netutil_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corral-dev/corral-host-sdk/netutil"
)

// trickleReader produces chunks with a fixed delay before each one.
type trickleReader struct {
	chunks []string
	delay  time.Duration
	pos    int
}

func (r *trickleReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		return 0, io.EOF
	}
	time.Sleep(r.delay)
	n := copy(p, r.chunks[r.pos])
	r.pos++
	return n, nil
}

func Test_IdleTimeoutReader_PassesDataThrough(t *testing.T) {
	r := netutil.NewIdleTimeoutReader(strings.NewReader("hello world"), time.Second)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func Test_IdleTimeoutReader_SlowChunksWithinBound(t *testing.T) {
	inner := &trickleReader{chunks: []string{"a", "b", "c"}, delay: 10 * time.Millisecond}
	r := netutil.NewIdleTimeoutReader(inner, time.Second)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func Test_IdleTimeoutReader_TimesOutBetweenChunks(t *testing.T) {
	inner := &trickleReader{chunks: []string{"first", "second"}, delay: 300 * time.Millisecond}
	r := netutil.NewIdleTimeoutReader(inner, 50*time.Millisecond)
	defer r.Close()

	buf := make([]byte, 16)
	_, err := r.Read(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, netutil.ErrIdleTimeout))

	var idleErr *netutil.IdleTimeoutError
	require.True(t, errors.As(err, &idleErr))
	assert.True(t, idleErr.Timeout())

	// A timed-out reader stays poisoned.
	_, err = r.Read(buf)
	assert.True(t, errors.Is(err, netutil.ErrIdleTimeout))
}

func Test_IdleTimeoutReader_DisabledWithZeroTimeout(t *testing.T) {
	inner := &trickleReader{chunks: []string{"slow"}, delay: 100 * time.Millisecond}
	r := netutil.NewIdleTimeoutReader(inner, 0)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "slow", string(data))
}

// closableReader records Close calls.
type closableReader struct {
	io.Reader
	closed bool
}

func (c *closableReader) Close() error {
	c.closed = true
	return nil
}

func Test_IdleTimeoutReader_CloseForwards(t *testing.T) {
	inner := &closableReader{Reader: strings.NewReader("x")}
	r := netutil.NewIdleTimeoutReader(inner, time.Second)

	require.NoError(t, r.Close())
	assert.True(t, inner.closed)

	_, err := r.Read(make([]byte, 1))
	assert.Equal(t, io.ErrClosedPipe, err)

	// Closing twice is a no-op.
	require.NoError(t, r.Close())
}
