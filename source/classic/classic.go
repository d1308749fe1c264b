// Package classic reads granules stored as NetCDF classic (CDF-1 and CDF-2)
// files. Files ending in .gz or .zst are decompressed into memory on open.
package classic

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ctessum/cdf"
	logging "github.com/ipfs/go-log/v2"
	"github.com/qri-io/dataset/compression"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/granule"
	"github.com/robert-malhotra/go-granule/internal/hyperslab"
	"github.com/robert-malhotra/go-granule/internal/mmap"
)

var log = logging.Logger("classic")

// Option configures how a granule file is opened.
type Option func(*options)

type options struct {
	mmap bool
}

// WithMmap maps uncompressed files into memory instead of reading them
// through the file descriptor.
func WithMmap(enabled bool) Option {
	return func(o *options) {
		o.mmap = enabled
	}
}

// Granule is an open NetCDF classic granule.
type Granule struct {
	mu     sync.Mutex
	path   string
	f      *cdf.File
	closer io.Closer
	closed bool
}

var _ granule.Granule = (*Granule)(nil)

// compressionFormat returns the compression format implied by a file name.
func compressionFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return "gzip"
	case ".zst", ".zstd":
		return "zst"
	}
	return ""
}

// Open opens a granule file for reading.
func Open(path string, opts ...Option) (*Granule, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var (
		rw     cdf.ReaderWriterAt
		closer io.Closer
	)
	switch format := compressionFormat(path); {
	case format != "":
		buf, err := decompress(path, format)
		if err != nil {
			return nil, err
		}
		rw = buf
	case o.mmap:
		m, err := mmap.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening file: %w", err)
		}
		rw, closer = readOnly{m}, m
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening file: %w", err)
		}
		rw, closer = f, f
	}

	f, err := cdf.Open(rw)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	log.Debugw("opened granule", "path", path, "variables", len(f.Header.Variables()))
	return &Granule{path: path, f: f, closer: closer}, nil
}

// Opener returns a granule.Opener that opens files with the given options.
func Opener(opts ...Option) granule.Opener {
	return func(path string) (granule.Granule, error) {
		return Open(path, opts...)
	}
}

func decompress(path, format string) (*buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	r, err := compression.Decompressor(format, f)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer r.Close()

	var b bytes.Buffer
	if _, err := io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return &buffer{data: b.Bytes()}, nil
}

// Path returns the file the granule was opened from.
func (g *Granule) Path() string { return g.path }

func (g *Granule) check(name string) error {
	if g.closed {
		return granule.ErrClosed
	}
	for _, v := range g.f.Header.Variables() {
		if v == name {
			return nil
		}
	}
	return fmt.Errorf("%w: array %q in %s", granule.ErrNotFound, name, g.path)
}

// VariableNames lists the arrays in the file in sorted order.
func (g *Granule) VariableNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	names := append([]string(nil), g.f.Header.Variables()...)
	sort.Strings(names)
	return names
}

func (g *Granule) DimensionNames(name string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(name); err != nil {
		return nil, err
	}
	return append([]string(nil), g.f.Header.Dimensions(name)...), nil
}

func (g *Granule) DimensionLengths(name string) ([]int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(name); err != nil {
		return nil, err
	}
	return append([]int(nil), g.f.Header.Lengths(name)...), nil
}

func (g *Granule) ElementType(name string) (dtype.DataType, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(name); err != nil {
		return dtype.Invalid, err
	}
	zero := g.f.Reader(name, nil, nil).Zero(0)
	if _, ok := zero.(string); ok {
		return dtype.String, nil
	}
	if t := dtype.Of(zero); t != dtype.Invalid {
		return t, nil
	}
	return dtype.Compound, nil
}

// ReadRange reads the bounding box of the selection and then applies the
// stride in memory.
func (g *Granule) ReadRange(name string, start, count, stride []int) (interface{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.check(name); err != nil {
		return nil, err
	}
	lengths := g.f.Header.Lengths(name)
	sel := hyperslab.Selection{Start: start, Count: count, Stride: stride}
	if err := sel.Validate(lengths); err != nil {
		return nil, fmt.Errorf("array %q: %w", name, err)
	}

	rank := len(lengths)
	begin := make([]int, rank)
	end := make([]int, rank)
	box := make([]int, rank)
	unit := true
	for i := 0; i < rank; i++ {
		if count[i] == 0 {
			return g.f.Reader(name, nil, nil).Zero(0), nil
		}
		begin[i] = start[i]
		box[i] = (count[i]-1)*stride[i] + 1
		end[i] = start[i] + box[i]
		if stride[i] != 1 {
			unit = false
		}
	}

	r := g.f.Reader(name, begin, end)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading array %q: %w", name, err)
	}
	if _, ok := buf.(string); ok {
		return nil, fmt.Errorf("%w: character array %q", granule.ErrUnsupportedType, name)
	}
	if unit {
		return buf, nil
	}
	return hyperslab.ExtractValues(buf, box, hyperslab.Selection{
		Start:  make([]int, rank),
		Count:  count,
		Stride: stride,
	})
}

// FindAttribute returns an attribute of an array. An empty array name
// selects the global attributes.
func (g *Granule) FindAttribute(name, attr string) (*granule.Attribute, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if name != "" {
		if err := g.check(name); err != nil {
			return nil, err
		}
	} else if g.closed {
		return nil, granule.ErrClosed
	}
	v := g.f.Header.GetAttribute(name, attr)
	if v == nil {
		return nil, fmt.Errorf("%w: attribute %q of %q", granule.ErrNotFound, attr, name)
	}
	return granule.NewAttribute(attr, v), nil
}

// Close releases the file. It is safe to call more than once.
func (g *Granule) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}
