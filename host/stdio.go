package host

import (
	"context"
	"errors"
	"io"
)

// Errors surfaced by the stream multiplexers.
var (
	// ErrStreamClosed is returned for writes and flushes on a multiplexer
	// with no bound stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrStreamBusy is the transient failure returned when an I/O operation
	// would have to wait for the multiplexer lock. The caller may retry;
	// waiting here could deadlock the execution engine driving the guest.
	ErrStreamBusy = errors.New("stream busy")
)

// InputStream is a readable guest stream. Ready returns once a read may
// make progress (possibly at end of stream).
type InputStream interface {
	io.Reader
	Ready(ctx context.Context) error
}

// OutputStream is a writable guest stream. CheckWrite reports how many
// bytes may currently be written without blocking.
type OutputStream interface {
	io.Writer
	Flush() error
	CheckWrite() (uint64, error)
	Ready(ctx context.Context) error
}

// mux is the swappable slot shared by both multiplexer directions: a
// channel-based lock so acquisition can be try-only (I/O paths) or
// context-aware (readiness waits), and the currently bound stream.
type mux[T any] struct {
	sem    chan struct{}
	stream T
	bound  bool
}

func newMux[T any]() *mux[T] {
	return &mux[T]{sem: make(chan struct{}, 1)}
}

func (m *mux[T]) tryLock() bool {
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (m *mux[T]) lock(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mux[T]) unlock() {
	<-m.sem
}

// replace binds a new stream and returns the previous one, if any. Unlike
// the I/O paths it may wait for the lock; only the embedder calls it.
func (m *mux[T]) replace(stream T) (T, bool) {
	m.sem <- struct{}{}
	defer m.unlock()
	prev, had := m.stream, m.bound
	m.stream, m.bound = stream, true
	return prev, had
}

// take unbinds and returns the current stream, leaving the slot Unset.
func (m *mux[T]) take() (T, bool) {
	m.sem <- struct{}{}
	defer m.unlock()
	prev, had := m.stream, m.bound
	var zero T
	m.stream, m.bound = zero, false
	return prev, had
}

// StdinStream presents one logical guest input stream whose backing
// implementation the embedder may replace at any time. With no stream
// bound it behaves as a permanently closed stream: reads return immediate
// end-of-stream with zero bytes.
//
// Read never waits for the multiplexer lock; contention with a concurrent
// Replace or Take yields zero bytes and no error, a transient state the
// guest's poll loop absorbs.
type StdinStream struct {
	m *mux[InputStream]
}

// NewStdinStream returns an Unset input multiplexer.
func NewStdinStream() *StdinStream {
	return &StdinStream{m: newMux[InputStream]()}
}

// Replace binds stream and returns the previously bound one, if any.
func (s *StdinStream) Replace(stream InputStream) (InputStream, bool) {
	return s.m.replace(stream)
}

// Take unbinds and returns the bound stream, leaving the multiplexer Unset.
func (s *StdinStream) Take() (InputStream, bool) {
	return s.m.take()
}

// Read implements io.Reader.
func (s *StdinStream) Read(p []byte) (int, error) {
	if !s.m.tryLock() {
		return 0, nil
	}
	defer s.m.unlock()
	if !s.m.bound {
		return 0, io.EOF
	}
	return s.m.stream.Read(p)
}

// Ready suspends until the bound stream is ready for reading, or returns
// immediately when Unset (a closed stream is always ready, at EOF). This is
// the only operation allowed to wait for the lock, and it waits under ctx.
func (s *StdinStream) Ready(ctx context.Context) error {
	if err := s.m.lock(ctx); err != nil {
		return err
	}
	defer s.m.unlock()
	if !s.m.bound {
		return nil
	}
	return s.m.stream.Ready(ctx)
}

// StdoutStream is the output counterpart of StdinStream. With no stream
// bound, writes and flushes fail with ErrStreamClosed. Write, Flush and
// CheckWrite never wait for the lock; contention yields ErrStreamBusy.
type StdoutStream struct {
	m *mux[OutputStream]
}

// NewStdoutStream returns an Unset output multiplexer.
func NewStdoutStream() *StdoutStream {
	return &StdoutStream{m: newMux[OutputStream]()}
}

// Replace binds stream and returns the previously bound one, if any.
func (s *StdoutStream) Replace(stream OutputStream) (OutputStream, bool) {
	return s.m.replace(stream)
}

// Take unbinds and returns the bound stream, leaving the multiplexer Unset.
func (s *StdoutStream) Take() (OutputStream, bool) {
	return s.m.take()
}

// Write implements io.Writer.
func (s *StdoutStream) Write(p []byte) (int, error) {
	if !s.m.tryLock() {
		return 0, ErrStreamBusy
	}
	defer s.m.unlock()
	if !s.m.bound {
		return 0, ErrStreamClosed
	}
	return s.m.stream.Write(p)
}

// Flush flushes the bound stream.
func (s *StdoutStream) Flush() error {
	if !s.m.tryLock() {
		return ErrStreamBusy
	}
	defer s.m.unlock()
	if !s.m.bound {
		return ErrStreamClosed
	}
	return s.m.stream.Flush()
}

// CheckWrite reports the writable budget of the bound stream.
func (s *StdoutStream) CheckWrite() (uint64, error) {
	if !s.m.tryLock() {
		return 0, ErrStreamBusy
	}
	defer s.m.unlock()
	if !s.m.bound {
		return 0, ErrStreamClosed
	}
	return s.m.stream.CheckWrite()
}

// Ready suspends until the bound stream is ready for writing, or returns
// immediately when Unset. Like StdinStream.Ready it waits only for the
// lock, under ctx.
func (s *StdoutStream) Ready(ctx context.Context) error {
	if err := s.m.lock(ctx); err != nil {
		return err
	}
	defer s.m.unlock()
	if !s.m.bound {
		return nil
	}
	return s.m.stream.Ready(ctx)
}
