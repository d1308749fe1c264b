package granule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robert-malhotra/go-granule/dtype"
)

// varKey identifies one array in one granule.
type varKey struct {
	granule int
	name    string
}

// descriptor is an array as one granule stores it.
type descriptor struct {
	dims    []string
	lengths []int
	typ     dtype.DataType
	inTrack int
}

// aggregate is an array as it appears across all granules.
type aggregate struct {
	name    string
	dims    []string
	lengths []int
	typ     dtype.DataType
	inTrack int
	// local is the post-cut in-track length contributed by each granule.
	local []int
	// cut marks granules whose fill scans are removed from this array.
	cut []bool
	// err is set when granules disagree on the array.
	err error
}

type catalog struct {
	entries map[varKey]*descriptor
	vars    map[string]*aggregate
	names   []string
}

var geoSuffixes = []string{"Latitude", "Longitude", "Latitude_TC", "Longitude_TC"}

func isGeo(name string) bool {
	for _, s := range geoSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func wanted(name string, substrings []string) bool {
	if len(substrings) == 0 {
		return true
	}
	for _, s := range substrings {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// inTrackIndex finds the axis granules are joined along, or -1.
func inTrackIndex(name string, dims []string, o *options) int {
	if len(dims) == 4 {
		return 0
	}
	target := o.inTrackDim
	if isGeo(name) && o.geoInTrackDim != "" {
		target = o.geoInTrackDim
	}
	for i, d := range dims {
		if d == "" {
			return 0
		}
		if d == target {
			return i
		}
	}
	return -1
}

func displayable(name string, dims []string, inTrack int, o *options) bool {
	if isGeo(name) {
		return true
	}
	for i, d := range dims {
		if i == inTrack || d == "" || d == o.crossTrackDim || strings.HasPrefix(d, "Band") {
			continue
		}
		return false
	}
	return true
}

// describe catalogs one array of one granule. A nil descriptor with a nil
// error means the array is left out.
func describe(g Granule, name string, o *options) (*descriptor, error) {
	typ, err := g.ElementType(name)
	if err != nil {
		return nil, err
	}
	if !typ.IsNumeric() {
		log.Debugw("skipping non-numeric array", "array", name, "type", typ)
		return nil, nil
	}
	dims, err := g.DimensionNames(name)
	if err != nil {
		return nil, err
	}
	lengths, err := g.DimensionLengths(name)
	if err != nil {
		return nil, err
	}
	if len(dims) != len(lengths) {
		return nil, fmt.Errorf("array %q has %d dimension names and %d lengths", name, len(dims), len(lengths))
	}
	if len(dims) < 2 {
		log.Debugw("skipping array of rank < 2", "array", name, "rank", len(dims))
		return nil, nil
	}
	inTrack := inTrackIndex(name, dims, o)
	if inTrack < 0 {
		log.Debugw("skipping array without in-track dimension", "array", name, "dims", dims)
		return nil, nil
	}
	if !displayable(name, dims, inTrack, o) {
		log.Debugw("skipping non-displayable array", "array", name, "dims", dims)
		return nil, nil
	}
	return &descriptor{dims: dims, lengths: lengths, typ: typ, inTrack: inTrack}, nil
}

func buildCatalog(granules []Granule, o *options) *catalog {
	c := &catalog{
		entries: make(map[varKey]*descriptor),
		vars:    make(map[string]*aggregate),
	}
	seen := make(map[string]bool)
	for gi, g := range granules {
		for _, name := range g.VariableNames() {
			if !wanted(name, o.wanted) {
				continue
			}
			d, err := describe(g, name, o)
			if err != nil {
				log.Warnw("skipping unreadable array", "granule", gi, "array", name, "err", err)
				continue
			}
			if d == nil {
				continue
			}
			c.entries[varKey{gi, name}] = d
			if !seen[name] {
				seen[name] = true
				c.names = append(c.names, name)
			}
		}
	}
	sort.Strings(c.names)
	return c
}

func (d *descriptor) matches(o *descriptor) error {
	if len(d.lengths) != len(o.lengths) {
		return fmt.Errorf("rank %d, want %d", len(o.lengths), len(d.lengths))
	}
	if d.typ != o.typ {
		return fmt.Errorf("type %v, want %v", o.typ, d.typ)
	}
	if d.inTrack != o.inTrack {
		return fmt.Errorf("in-track axis %d, want %d", o.inTrack, d.inTrack)
	}
	for i := range d.lengths {
		if i != d.inTrack && d.lengths[i] != o.lengths[i] {
			return fmt.Errorf("length %d on axis %d, want %d", o.lengths[i], i, d.lengths[i])
		}
	}
	return nil
}

// aggregate joins the per-granule descriptors. Arrays whose granules
// disagree stay in the catalog but every access to them fails.
func (c *catalog) aggregate(n int, cuts []*cutRanges) {
	for _, name := range c.names {
		agg := &aggregate{
			name:  name,
			local: make([]int, n),
			cut:   make([]bool, n),
		}
		var def *descriptor
		total := 0
		for g := 0; g < n; g++ {
			d, ok := c.entries[varKey{g, name}]
			if !ok {
				if agg.err == nil {
					agg.err = fmt.Errorf("%w: %q missing from granule %d", ErrShapeMismatch, name, g)
				}
				continue
			}
			if def == nil {
				def = d
				agg.dims = append([]string(nil), d.dims...)
				agg.lengths = append([]int(nil), d.lengths...)
				agg.typ = d.typ
				agg.inTrack = d.inTrack
			} else if err := def.matches(d); err != nil && agg.err == nil {
				agg.err = fmt.Errorf("%w: %q in granule %d: %v", ErrShapeMismatch, name, g, err)
			}
			l := d.lengths[d.inTrack]
			if cr := cuts[g]; cr.appliesTo(l) {
				l -= cr.cutScans
				agg.cut[g] = true
			}
			agg.local[g] = l
			total += l
		}
		agg.lengths[agg.inTrack] = total
		if agg.err != nil {
			log.Warnw("granules disagree on array", "array", name, "err", agg.err)
		}
		c.vars[name] = agg
	}
}

// latitude picks the array scanned for fill scans.
func (c *catalog) latitude(o *options) (string, bool) {
	if o.latitudeVar != "" {
		_, ok := c.entries[varKey{0, o.latitudeVar}]
		return o.latitudeVar, ok
	}
	for _, name := range c.names {
		if strings.HasSuffix(name, "Latitude") {
			if _, ok := c.entries[varKey{0, name}]; ok {
				return name, true
			}
		}
	}
	return "", false
}
