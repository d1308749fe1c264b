package classic

import (
	"errors"
	"fmt"
	"io"
)

var errReadOnly = errors.New("classic: granule opened read-only")

// readOnly adapts a reader to the ReaderWriterAt cdf.Open requires.
type readOnly struct {
	io.ReaderAt
}

func (readOnly) WriteAt([]byte, int64) (int, error) { return 0, errReadOnly }

// buffer is a growable in-memory file.
type buffer struct {
	data []byte
}

func (b *buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("classic: negative offset %d", off)
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("classic: negative offset %d", off)
	}
	end := int(off) + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	return copy(b.data[off:], p), nil
}
