package host

import (
	"context"
	"io"
)

// checkWriteBudget is the budget reported by adapter streams, which accept
// writes of any size.
const checkWriteBudget = 64 * 1024

// readerStream adapts a plain io.Reader into an InputStream that is always
// ready.
type readerStream struct {
	r io.Reader
}

// NewReaderStream wraps an io.Reader for binding into a StdinStream.
func NewReaderStream(r io.Reader) InputStream {
	return &readerStream{r: r}
}

func (s *readerStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *readerStream) Ready(context.Context) error {
	return nil
}

// writerStream adapts a plain io.Writer into an OutputStream. Flush
// delegates when the writer supports it and is a no-op otherwise.
type writerStream struct {
	w io.Writer
}

// NewWriterStream wraps an io.Writer for binding into a StdoutStream.
func NewWriterStream(w io.Writer) OutputStream {
	return &writerStream{w: w}
}

func (s *writerStream) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *writerStream) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (s *writerStream) CheckWrite() (uint64, error) {
	return checkWriteBudget, nil
}

func (s *writerStream) Ready(context.Context) error {
	return nil
}
