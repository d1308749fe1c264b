package granule

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"

	"github.com/robert-malhotra/go-granule/dtype"
)

var log = logging.Logger("granule")

// Aggregation serves reads of arrays joined across granules.
// A single lock serializes every read.
type Aggregation struct {
	mu sync.Mutex

	granules []Granule
	opts     *options
	cat      *catalog
	cuts     []*cutRanges

	processors   map[string]RangeProcessor
	qualityFlags map[string]QualityFlag

	cache  *lru.Cache[varKey, *dense]
	closed bool
}

// dense is a granule array with its fill scans removed.
type dense struct {
	values interface{}
	dims   []int
}

// New builds an aggregation over granules in time order. The aggregation
// owns the granules and closes them on Close.
func New(granules []Granule, opts ...Option) (*Aggregation, error) {
	if len(granules) == 0 {
		return nil, ErrNoGranules
	}
	for i, g := range granules {
		if g == nil {
			return nil, fmt.Errorf("granule %d is nil", i)
		}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	a := &Aggregation{
		granules:     granules,
		opts:         o,
		processors:   make(map[string]RangeProcessor),
		qualityFlags: make(map[string]QualityFlag),
	}
	log.Debugw("building catalog", "granules", len(granules), "inTrack", o.inTrackDim, "crossTrack", o.crossTrackDim, "edr", o.edr)
	a.cat = buildCatalog(granules, o)

	a.cuts = make([]*cutRanges, len(granules))
	if o.edr {
		if err := a.findCuts(); err != nil {
			return nil, err
		}
	}
	a.cat.aggregate(len(granules), a.cuts)

	if err := a.setQualityFlags(o.qualityFlags); err != nil {
		return nil, err
	}
	if o.spliceCache > 0 {
		cache, err := lru.New[varKey, *dense](o.spliceCache)
		if err != nil {
			return nil, err
		}
		a.cache = cache
	}
	log.Debugw("catalog built", "arrays", len(a.cat.names))
	return a, nil
}

func (a *Aggregation) findCuts() error {
	lat, ok := a.cat.latitude(a.opts)
	if !ok {
		log.Warnw("no latitude array, fill scans will not be cut", "latitude", a.opts.latitudeVar)
		return nil
	}
	for g, gr := range a.granules {
		d, ok := a.cat.entries[varKey{g, lat}]
		if !ok {
			log.Warnw("latitude array missing from granule", "granule", g, "latitude", lat)
			continue
		}
		cr, err := detectCuts(gr, lat, d, a.opts)
		if err != nil {
			return fmt.Errorf("granule %d: %w", g, err)
		}
		if cr.cutScans > 0 {
			log.Debugw("found fill scans", "granule", g, "cutScans", cr.cutScans, "ranges", len(cr.ranges))
		}
		a.cuts[g] = cr
	}
	return nil
}

// Granules returns the number of granules.
func (a *Aggregation) Granules() int {
	return len(a.granules)
}

// Variables returns the names of the cataloged arrays in sorted order.
func (a *Aggregation) Variables() []string {
	return append([]string(nil), a.cat.names...)
}

// lookup resolves quality flag names and finds the joined array.
func (a *Aggregation) lookup(name string) (*aggregate, *QualityFlag, error) {
	var qf *QualityFlag
	if f, ok := a.qualityFlags[name]; ok {
		qf = &f
		name = f.Packed
	}
	agg, ok := a.cat.vars[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownArray, name)
	}
	if agg.err != nil {
		return nil, nil, agg.err
	}
	return agg, qf, nil
}

// DimensionNames returns the dimension names of an array.
func (a *Aggregation) DimensionNames(name string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	agg, _, err := a.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), agg.dims...), nil
}

// DimensionLengths returns the joined dimension lengths of an array. The
// in-track length is the sum of every granule's length after cutting.
func (a *Aggregation) DimensionLengths(name string) ([]int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	agg, _, err := a.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), agg.lengths...), nil
}

// ArrayType returns the stored element type of an array.
func (a *Aggregation) ArrayType(name string) (dtype.DataType, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	agg, _, err := a.lookup(name)
	if err != nil {
		return dtype.Invalid, err
	}
	return agg.typ, nil
}

// InTrackIndex returns the axis an array is joined along.
func (a *Aggregation) InTrackIndex(name string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	agg, _, err := a.lookup(name)
	if err != nil {
		return -1, err
	}
	return agg.inTrack, nil
}

// LocalLengths returns the in-track length each granule contributes.
func (a *Aggregation) LocalLengths(name string) ([]int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	agg, _, err := a.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), agg.local...), nil
}

// ArrayAttribute returns an attribute of an array as the first granule stores it.
func (a *Aggregation) ArrayAttribute(name, attr string) (*Attribute, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	agg, _, err := a.lookup(name)
	if err != nil {
		return nil, err
	}
	return a.granules[0].FindAttribute(agg.name, attr)
}

// GlobalAttribute is not supported for aggregations.
func (a *Aggregation) GlobalAttribute(attr string) (*Attribute, error) {
	return nil, fmt.Errorf("%w: global attribute %q", ErrUnsupported, attr)
}

// CutRanges returns the valid scan runs of a granule and the number of
// fill scans removed from it. Granules without fill scans have no ranges.
func (a *Aggregation) CutRanges(granule int) ([]CutRange, int, error) {
	if granule < 0 || granule >= len(a.granules) {
		return nil, 0, fmt.Errorf("%w: granule %d of %d", ErrOutOfRange, granule, len(a.granules))
	}
	cr := a.cuts[granule]
	if cr == nil {
		return nil, 0, nil
	}
	return append([]CutRange(nil), cr.ranges...), cr.cutScans, nil
}

// AddRangeProcessor registers the processor that calibrates reads of name.
func (a *Aggregation) AddRangeProcessor(name string, p RangeProcessor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processors[name] = p
}

// SetQualityFlags replaces the registered quality flags.
func (a *Aggregation) SetQualityFlags(flags ...QualityFlag) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setQualityFlags(flags)
}

func (a *Aggregation) setQualityFlags(flags []QualityFlag) error {
	m := make(map[string]QualityFlag, len(flags))
	for _, f := range flags {
		if err := f.Validate(); err != nil {
			return err
		}
		if _, ok := a.cat.vars[f.Packed]; !ok {
			log.Warnw("quality flag packed array not cataloged", "flag", f.Name, "packed", f.Packed)
		}
		m[f.Name] = f
	}
	a.qualityFlags = m
	return nil
}

// QualityFlags returns the registered quality flags sorted by name.
func (a *Aggregation) QualityFlags() []QualityFlag {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]QualityFlag, 0, len(a.qualityFlags))
	for _, f := range a.qualityFlags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close closes every granule. All close errors are reported.
func (a *Aggregation) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if a.cache != nil {
		a.cache.Purge()
	}
	var result *multierror.Error
	for i, g := range a.granules {
		if err := g.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing granule %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}
