package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "granule.nc")
	require.NoError(t, os.WriteFile(path, []byte("CDF\x01granule"), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 11, r.Len())

	buf := make([]byte, 4)
	n, err := r.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "CDF\x01", string(buf))

	n, err = r.ReadAt(buf, 9)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "le", string(buf[:n]))

	_, err = r.ReadAt(buf, 11)
	assert.Equal(t, io.EOF, err)

	_, err = r.ReadAt(buf, -1)
	assert.Error(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	_, err = r.ReadAt(buf, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	_, err = r.ReadAt(make([]byte, 1), 0)
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Close())
}

func TestMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
