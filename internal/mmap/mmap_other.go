//go:build !unix

package mmap

import "os"

// Open reads the named file into memory where mapping is unavailable.
func Open(path string) (*ReaderAt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &ReaderAt{data: data}, nil
}
