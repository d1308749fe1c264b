// Package mem provides granules held in memory, for synthetic data and tests.
package mem

import (
	"fmt"
	"sort"
	"sync"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/granule"
	"github.com/robert-malhotra/go-granule/internal/hyperslab"
)

type variable struct {
	dims    []string
	lengths []int
	typ     dtype.DataType
	values  interface{}
	attrs   map[string]*granule.Attribute
}

// Granule is an in-memory granule. It is safe for concurrent use.
type Granule struct {
	mu     sync.RWMutex
	vars   map[string]*variable
	reads  int
	closed bool
}

// New returns an empty granule.
func New() *Granule {
	return &Granule{vars: make(map[string]*variable)}
}

// Add stores an array. Values is a flat row-major typed slice; any other
// value is stored as an unreadable compound array.
func (g *Granule) Add(name string, dims []string, lengths []int, values interface{}) error {
	if len(dims) != len(lengths) {
		return fmt.Errorf("array %q: %d dimension names for %d lengths", name, len(dims), len(lengths))
	}
	typ := dtype.Of(values)
	if typ == dtype.Invalid {
		typ = dtype.Compound
	} else {
		n := 1
		for _, l := range lengths {
			n *= l
		}
		if got := dtype.Len(values); got != n {
			return fmt.Errorf("array %q: %d values for lengths %v", name, got, lengths)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.vars[name] = &variable{
		dims:    append([]string(nil), dims...),
		lengths: append([]int(nil), lengths...),
		typ:     typ,
		values:  values,
		attrs:   make(map[string]*granule.Attribute),
	}
	return nil
}

// SetAttribute attaches an attribute to a stored array.
func (g *Granule) SetAttribute(name, attr string, value interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.vars[name]
	if !ok {
		return fmt.Errorf("%w: array %q", granule.ErrNotFound, name)
	}
	v.attrs[attr] = granule.NewAttribute(attr, value)
	return nil
}

// Reads returns the number of ReadRange calls served.
func (g *Granule) Reads() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reads
}

// Closed reports whether Close was called.
func (g *Granule) Closed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closed
}

func (g *Granule) get(name string) (*variable, error) {
	if g.closed {
		return nil, granule.ErrClosed
	}
	v, ok := g.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: array %q", granule.ErrNotFound, name)
	}
	return v, nil
}

// VariableNames lists the stored arrays in sorted order.
func (g *Granule) VariableNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Granule) DimensionNames(name string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, err := g.get(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.dims...), nil
}

func (g *Granule) DimensionLengths(name string) ([]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, err := g.get(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), v.lengths...), nil
}

func (g *Granule) ElementType(name string) (dtype.DataType, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, err := g.get(name)
	if err != nil {
		return dtype.Invalid, err
	}
	return v.typ, nil
}

func (g *Granule) ReadRange(name string, start, count, stride []int) (interface{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.get(name)
	if err != nil {
		return nil, err
	}
	if v.typ == dtype.Compound {
		return nil, fmt.Errorf("%w: array %q", granule.ErrUnsupportedType, name)
	}
	g.reads++
	sel := hyperslab.Selection{Start: start, Count: count, Stride: stride}
	return hyperslab.ExtractValues(v.values, v.lengths, sel)
}

func (g *Granule) FindAttribute(name, attr string) (*granule.Attribute, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, err := g.get(name)
	if err != nil {
		return nil, err
	}
	a, ok := v.attrs[attr]
	if !ok {
		return nil, fmt.Errorf("%w: attribute %q of %q", granule.ErrNotFound, attr, name)
	}
	return a, nil
}

func (g *Granule) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

var _ granule.Granule = (*Granule)(nil)
