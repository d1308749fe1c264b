// Package mmap maps granule files read-only into memory.
package mmap

import (
	"errors"
	"fmt"
	"io"
)

// ErrClosed is returned by reads after Close.
var ErrClosed = errors.New("mmap: closed")

// ReaderAt reads from a file mapped into memory.
type ReaderAt struct {
	data   []byte
	unmap  func([]byte) error
	closed bool
}

// Len returns the length of the mapping.
func (r *ReaderAt) Len() int { return len(r.data) }

// ReadAt implements io.ReaderAt.
func (r *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("mmap: negative offset %d", off)
	}
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the mapping. It is safe to call more than once.
func (r *ReaderAt) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	data := r.data
	r.data = nil
	if r.unmap == nil || len(data) == 0 {
		return nil
	}
	if err := r.unmap(data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
