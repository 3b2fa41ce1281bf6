package pcm

import "io"

// Writer is a writer for chunks of audio data.
type Writer interface {
	Write(Chunk) error
}

var _ Writer = WriteFunc(nil)

// WriteFunc is a function that implements the Writer interface.
type WriteFunc func(Chunk) error

// Write implements the Writer interface.
func (f WriteFunc) Write(c Chunk) error {
	return f(c)
}

// WriteCloser is a writer for chunks of audio data that also implements
// io.Closer.
type WriteCloser interface {
	Writer
	io.Closer
}

// Discard is a Writer that discards all written chunks.
var Discard Writer = discard{}

type discard struct{}

func (discard) Write(Chunk) error {
	return nil
}

// IOWriter adapts an io.Writer into a chunk Writer. Chunk formats are not
// checked; callers are expected to feed a single format.
func IOWriter(w io.Writer) Writer {
	return WriteFunc(func(c Chunk) error {
		_, err := w.Write(c.Bytes())
		return err
	})
}
