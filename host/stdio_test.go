package host_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corral-dev/corral-host-sdk/host"
)

func Test_StdinStream_UnsetReadsAsClosed(t *testing.T) {
	s := host.NewStdinStream()

	buf := make([]byte, 8)
	n, err := s.Read(buf)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func Test_StdinStream_ReadFromBoundStream(t *testing.T) {
	s := host.NewStdinStream()
	s.Replace(host.NewReaderStream(strings.NewReader("hello")))

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func Test_StdinStream_ReplaceReturnsPrevious(t *testing.T) {
	s := host.NewStdinStream()

	first := host.NewReaderStream(strings.NewReader("a"))
	prev, had := s.Replace(first)
	assert.False(t, had)
	assert.Nil(t, prev)

	second := host.NewReaderStream(strings.NewReader("b"))
	prev, had = s.Replace(second)
	require.True(t, had)
	assert.Same(t, first, prev)

	// Reads land on the replacement.
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func Test_StdinStream_TakeTransitionsToUnset(t *testing.T) {
	s := host.NewStdinStream()
	bound := host.NewReaderStream(strings.NewReader("x"))
	s.Replace(bound)

	got, had := s.Take()
	require.True(t, had)
	assert.Same(t, bound, got)

	// A second take finds nothing.
	_, had = s.Take()
	assert.False(t, had)

	n, err := s.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func Test_StdinStream_ReadyOnUnsetReturnsImmediately(t *testing.T) {
	s := host.NewStdinStream()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Ready(ctx))
}

// slowReadyStream parks Ready until its context is done.
type slowReadyStream struct {
	io.Reader
}

func (s *slowReadyStream) Ready(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func Test_StdinStream_ReadyHonorsContext(t *testing.T) {
	s := host.NewStdinStream()
	s.Replace(&slowReadyStream{Reader: strings.NewReader("")})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Ready(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// heldStream occupies the multiplexer from another goroutine so I/O paths
// observe lock contention.
func holdLock(t *testing.T, ready func(ctx context.Context) error) (release func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		close(started)
		_ = ready(ctx)
	}()
	<-started
	// Give the goroutine a moment to acquire the lock.
	time.Sleep(10 * time.Millisecond)
	return cancel
}

func Test_StdinStream_ContendedReadYieldsZeroBytes(t *testing.T) {
	s := host.NewStdinStream()
	s.Replace(&slowReadyStream{Reader: strings.NewReader("data")})

	release := holdLock(t, s.Ready)
	defer release()

	// The lock is held by Ready; Read must not wait.
	n, err := s.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.NoError(t, err)
}

func Test_StdoutStream_UnsetFailsClosed(t *testing.T) {
	s := host.NewStdoutStream()

	_, err := s.Write([]byte("x"))
	assert.ErrorIs(t, err, host.ErrStreamClosed)

	assert.ErrorIs(t, s.Flush(), host.ErrStreamClosed)

	_, err = s.CheckWrite()
	assert.ErrorIs(t, err, host.ErrStreamClosed)
}

func Test_StdoutStream_WriteToBoundStream(t *testing.T) {
	var buf bytes.Buffer
	s := host.NewStdoutStream()
	s.Replace(host.NewWriterStream(&buf))

	n, err := s.Write([]byte("guest output"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	require.NoError(t, s.Flush())

	budget, err := s.CheckWrite()
	require.NoError(t, err)
	assert.NotZero(t, budget)

	assert.Equal(t, "guest output", buf.String())
}

// slowReadyWriter is an OutputStream whose Ready parks until ctx is done.
type slowReadyWriter struct {
	bytes.Buffer
}

func (w *slowReadyWriter) Flush() error               { return nil }
func (w *slowReadyWriter) CheckWrite() (uint64, error) { return 1, nil }
func (w *slowReadyWriter) Ready(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func Test_StdoutStream_ContendedWriteIsBusy(t *testing.T) {
	s := host.NewStdoutStream()
	s.Replace(&slowReadyWriter{})

	release := holdLock(t, s.Ready)
	defer release()

	_, err := s.Write([]byte("x"))
	assert.ErrorIs(t, err, host.ErrStreamBusy)

	assert.ErrorIs(t, s.Flush(), host.ErrStreamBusy)

	_, err = s.CheckWrite()
	assert.ErrorIs(t, err, host.ErrStreamBusy)
}

func Test_StdoutStream_ReplaceWhileOutputContinues(t *testing.T) {
	var first, second bytes.Buffer
	s := host.NewStdoutStream()

	s.Replace(host.NewWriterStream(&first))
	_, err := s.Write([]byte("one"))
	require.NoError(t, err)

	prev, had := s.Replace(host.NewWriterStream(&second))
	require.True(t, had)
	assert.NotNil(t, prev)

	_, err = s.Write([]byte("two"))
	require.NoError(t, err)

	assert.Equal(t, "one", first.String())
	assert.Equal(t, "two", second.String())
}
