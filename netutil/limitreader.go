package netutil

import (
	"errors"
	"fmt"
	"io"
)

// ErrSizeLimitExceeded is returned when a LimitedReader's limit is crossed.
var ErrSizeLimitExceeded = errors.New("size limit exceeded")

// SizeLimitExceededError reports how much was read before the limit hit.
type SizeLimitExceededError struct {
	Limit int64
	Read  int64
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("size limit of %d bytes exceeded after reading %d bytes", e.Limit, e.Read)
}

// Is allows errors.Is(err, ErrSizeLimitExceeded).
func (e *SizeLimitExceededError) Is(target error) bool {
	return target == ErrSizeLimitExceeded
}

// LimitedReader wraps an io.Reader with a hard size limit. Unlike
// io.LimitReader it fails loudly when the limit is crossed instead of
// silently truncating.
type LimitedReader struct {
	R     io.Reader
	N     int64 // max bytes remaining
	Limit int64
	read  int64
}

// NewLimitedReader returns a LimitedReader reading at most limit bytes.
func NewLimitedReader(r io.Reader, limit int64) *LimitedReader {
	return &LimitedReader{R: r, N: limit, Limit: limit}
}

// Read implements io.Reader.
func (l *LimitedReader) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, &SizeLimitExceededError{Limit: l.Limit, Read: l.read}
	}
	if int64(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= int64(n)
	l.read += int64(n)
	if l.N == 0 && err == nil {
		// Peek one byte to distinguish an exact fit from an overrun.
		var buf [1]byte
		extra, extraErr := l.R.Read(buf[:])
		if extra > 0 {
			return n, &SizeLimitExceededError{Limit: l.Limit, Read: l.read + 1}
		}
		if extraErr != nil && extraErr != io.EOF {
			return n, extraErr
		}
	}
	return n, err
}
