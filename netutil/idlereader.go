package netutil

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrIdleTimeout is returned when an IdleTimeoutReader's per-read deadline
// elapses.
var ErrIdleTimeout = errors.New("idle timeout")

// IdleTimeoutError reports the deadline that elapsed between reads.
type IdleTimeoutError struct {
	Timeout time.Duration
}

func (e *IdleTimeoutError) Error() string {
	return fmt.Sprintf("no data within %s", e.Timeout)
}

// Is allows errors.Is(err, ErrIdleTimeout).
func (e *IdleTimeoutError) Is(target error) bool {
	return target == ErrIdleTimeout
}

// Timeout marks the error as a timeout for net.Error-style checks.
func (e *IdleTimeoutError) Timeout() bool { return true }

type idleReadResult struct {
	data []byte
	err  error
}

// IdleTimeoutReader bounds the gap between successive reads of the wrapped
// reader. A read that produces no data within the timeout fails with an
// IdleTimeoutError and poisons the reader; the abandoned inner read keeps
// running against an internal buffer, never the caller's.
//
// A non-positive timeout disables the bound entirely.
type IdleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration

	once     sync.Once
	requests chan int
	results  chan idleReadResult
	timedOut bool
	closed   bool
}

// NewIdleTimeoutReader wraps r with a per-read idle timeout.
func NewIdleTimeoutReader(r io.Reader, timeout time.Duration) *IdleTimeoutReader {
	return &IdleTimeoutReader{r: r, timeout: timeout}
}

func (t *IdleTimeoutReader) start() {
	t.requests = make(chan int)
	// Buffered so an abandoned read can park its result without blocking
	// the pump goroutine forever.
	t.results = make(chan idleReadResult, 1)
	go func() {
		for size := range t.requests {
			buf := make([]byte, size)
			n, err := t.r.Read(buf)
			t.results <- idleReadResult{data: buf[:n], err: err}
		}
	}()
}

// Read implements io.Reader.
func (t *IdleTimeoutReader) Read(p []byte) (int, error) {
	if t.timeout <= 0 {
		return t.r.Read(p)
	}
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	if t.timedOut {
		return 0, &IdleTimeoutError{Timeout: t.timeout}
	}
	t.once.Do(t.start)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case t.requests <- len(p):
	case <-timer.C:
		t.timedOut = true
		return 0, &IdleTimeoutError{Timeout: t.timeout}
	}

	select {
	case res := <-t.results:
		return copy(p, res.data), res.err
	case <-timer.C:
		t.timedOut = true
		return 0, &IdleTimeoutError{Timeout: t.timeout}
	}
}

// Close closes the wrapped reader if it is a Closer and stops the pump
// goroutine once its in-flight read, if any, returns.
func (t *IdleTimeoutReader) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.requests != nil {
		close(t.requests)
	}
	if c, ok := t.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
