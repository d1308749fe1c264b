// Package nc4 reads granules stored as NetCDF-4/HDF5 files, the format of
// JPSS and NOAA-20 products. Arrays in subgroups are named by their group
// path, as in "All_Data/VIIRS-M5-SDR_All/Radiance". NetCDF classic files
// are accepted as well.
package nc4

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	logging "github.com/ipfs/go-log/v2"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/granule"
	"github.com/robert-malhotra/go-granule/internal/hyperslab"
)

var log = logging.Logger("nc4")

type variable struct {
	group   api.Group
	local   string
	dims    []string
	lengths []int
	typ     dtype.DataType
}

// Granule is an open NetCDF-4 granule.
type Granule struct {
	mu     sync.Mutex
	path   string
	root   api.Group
	groups []api.Group
	vars   map[string]*variable
	closed bool
}

var _ granule.Granule = (*Granule)(nil)

// Open opens a granule file and catalogs every array in every group.
func Open(path string) (*Granule, error) {
	root, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	g := &Granule{path: path, root: root, vars: make(map[string]*variable)}
	if err := g.walk(root, ""); err != nil {
		g.Close()
		return nil, err
	}
	log.Debugw("opened granule", "path", path, "variables", len(g.vars))
	return g, nil
}

// Opener opens granule files for granule.OpenAll.
func Opener(path string) (granule.Granule, error) {
	return Open(path)
}

func (g *Granule) walk(grp api.Group, prefix string) error {
	for _, name := range grp.ListVariables() {
		full := prefix + name
		v, err := describe(grp, name)
		if err != nil {
			log.Warnw("skipping array", "path", g.path, "array", full, "error", err)
			continue
		}
		g.vars[full] = v
	}
	for _, sub := range grp.ListSubgroups() {
		child, err := grp.GetGroup(sub)
		if err != nil {
			return fmt.Errorf("opening group %s%s: %w", prefix, sub, err)
		}
		g.groups = append(g.groups, child)
		if err := g.walk(child, prefix+sub+"/"); err != nil {
			return err
		}
	}
	return nil
}

// describe infers the shape of an array from its first row.
func describe(grp api.Group, name string) (*variable, error) {
	vg, err := grp.GetVarGetter(name)
	if err != nil {
		return nil, err
	}
	v := &variable{
		group: grp,
		local: name,
		dims:  append([]string(nil), vg.Dimensions()...),
		typ:   dtype.Parse(vg.GoType()),
	}
	n := int(vg.Len())
	if !v.typ.IsNumeric() || len(v.dims) == 0 || n == 0 {
		v.lengths = make([]int, len(v.dims))
		if len(v.dims) > 0 {
			v.lengths[0] = n
		}
		return v, nil
	}

	first, err := vg.GetSlice(0, 1)
	if err != nil {
		return nil, err
	}
	_, shape, err := dtype.Flatten(first)
	if err != nil {
		return nil, err
	}
	if len(shape) != len(v.dims) {
		return nil, fmt.Errorf("first row has rank %d, array has %d dimensions", len(shape), len(v.dims))
	}
	shape[0] = n
	v.lengths = shape
	return v, nil
}

func (g *Granule) get(name string) (*variable, error) {
	if g.closed {
		return nil, granule.ErrClosed
	}
	v, ok := g.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: array %q in %s", granule.ErrNotFound, name, g.path)
	}
	return v, nil
}

// Path returns the file the granule was opened from.
func (g *Granule) Path() string { return g.path }

// VariableNames lists the arrays by group path in sorted order.
func (g *Granule) VariableNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Granule) DimensionNames(name string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.get(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.dims...), nil
}

func (g *Granule) DimensionLengths(name string) ([]int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.get(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), v.lengths...), nil
}

func (g *Granule) ElementType(name string) (dtype.DataType, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.get(name)
	if err != nil {
		return dtype.Invalid, err
	}
	return v.typ, nil
}

// ReadRange reads the rows of the outermost dimension the selection spans
// and extracts the selection from them.
func (g *Granule) ReadRange(name string, start, count, stride []int) (interface{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, err := g.get(name)
	if err != nil {
		return nil, err
	}
	if !v.typ.IsNumeric() {
		return nil, fmt.Errorf("%w: array %q of %s", granule.ErrUnsupportedType, name, v.typ)
	}
	sel := hyperslab.Selection{Start: start, Count: count, Stride: stride}
	if err := sel.Validate(v.lengths); err != nil {
		return nil, fmt.Errorf("array %q: %w", name, err)
	}
	if sel.NumElements() == 0 {
		return dtype.Make(v.typ, 0)
	}

	vg, err := v.group.GetVarGetter(v.local)
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", name, err)
	}
	if len(v.lengths) == 0 {
		all, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("reading array %q: %w", name, err)
		}
		flat, _, err := dtype.Flatten(all)
		return flat, err
	}

	begin := start[0]
	end := start[0] + (count[0]-1)*stride[0] + 1
	rows, err := vg.GetSlice(int64(begin), int64(end))
	if err != nil {
		return nil, fmt.Errorf("reading array %q rows [%d,%d): %w", name, begin, end, err)
	}
	flat, _, err := dtype.Flatten(rows)
	if err != nil {
		return nil, fmt.Errorf("reading array %q: %w", name, err)
	}

	box := append([]int(nil), v.lengths...)
	box[0] = end - begin
	local := sel
	local.Start = append([]int(nil), start...)
	local.Start[0] = 0
	return hyperslab.ExtractValues(flat, box, local)
}

// FindAttribute returns an attribute of an array. An empty array name
// selects the root group attributes; a name ending in "/" selects the
// attributes of that group.
func (g *Granule) FindAttribute(name, attr string) (*granule.Attribute, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, granule.ErrClosed
	}

	var attrs api.AttributeMap
	switch {
	case name == "":
		attrs = g.root.Attributes()
	case strings.HasSuffix(name, "/"):
		grp, err := g.root.GetGroup(strings.TrimSuffix(name, "/"))
		if err != nil {
			return nil, fmt.Errorf("%w: group %q: %v", granule.ErrNotFound, name, err)
		}
		defer grp.Close()
		attrs = grp.Attributes()
	default:
		v, err := g.get(name)
		if err != nil {
			return nil, err
		}
		vg, err := v.group.GetVarGetter(v.local)
		if err != nil {
			return nil, fmt.Errorf("array %q: %w", name, err)
		}
		attrs = vg.Attributes()
	}
	if attrs == nil {
		return nil, fmt.Errorf("%w: attribute %q of %q", granule.ErrNotFound, attr, name)
	}
	val, ok := attrs.Get(attr)
	if !ok {
		return nil, fmt.Errorf("%w: attribute %q of %q", granule.ErrNotFound, attr, name)
	}
	return granule.NewAttribute(attr, val), nil
}

// Close closes every group the granule opened. It is safe to call more
// than once.
func (g *Granule) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	for i := len(g.groups) - 1; i >= 0; i-- {
		g.groups[i].Close()
	}
	g.root.Close()
	return nil
}
