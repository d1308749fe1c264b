// Package profile loads YAML product profiles. A profile names the
// dimensions, arrays, quality flags and calibration of one satellite product
// so that its granules can be aggregated without code.
package profile

import (
	"context"
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-granule/calibrate"
	"github.com/robert-malhotra/go-granule/granule"
	"github.com/robert-malhotra/go-granule/source/classic"
	"github.com/robert-malhotra/go-granule/source/nc4"
)

var log = logging.Logger("profile")

// Formats of granule files.
const (
	FormatNC4     = "nc4"
	FormatClassic = "classic"
)

// Calibration kinds.
const (
	KindScaleOffset = "scale_offset"
	KindMultiScale  = "multi_scale"
	KindLUT         = "lut"
)

// Profile describes one product.
type Profile struct {
	Name string `yaml:"name"`
	// Format selects the granule reader: nc4 (default) or classic.
	Format string `yaml:"format"`
	Mmap   bool   `yaml:"mmap"`

	InTrackDim    string   `yaml:"in_track_dim"`
	GeoInTrackDim string   `yaml:"geo_in_track_dim"`
	CrossTrackDim string   `yaml:"cross_track_dim"`
	EDR           bool     `yaml:"edr"`
	Latitude      string   `yaml:"latitude"`
	FillThreshold *float64 `yaml:"fill_threshold"`
	SpliceCache   int      `yaml:"splice_cache"`
	Variables     []string `yaml:"variables"`

	QualityFlags []QualityFlag `yaml:"quality_flags"`
	Calibration  []Calibration `yaml:"calibration"`
	Granules     []string      `yaml:"granules"`
}

// QualityFlag is a bit field of a packed quality array.
type QualityFlag struct {
	Name     string         `yaml:"name"`
	Packed   string         `yaml:"packed"`
	Offset   int            `yaml:"offset"`
	Width    int            `yaml:"width"`
	Meanings map[int]string `yaml:"meanings"`
}

// Calibration says how the values of one array are calibrated.
type Calibration struct {
	Variable string `yaml:"variable"`
	Kind     string `yaml:"kind"`
	// Factors names an array of (scale, offset) pairs.
	Factors string `yaml:"factors"`
	// LUT names a lookup table array.
	LUT             string     `yaml:"lut"`
	MultiScaleDim   string     `yaml:"multi_scale_dim"`
	RangeAfterScale bool       `yaml:"range_after_scale"`
	Attributes      Attributes `yaml:"attributes"`
}

// Attributes overrides the calibration attribute names.
type Attributes struct {
	Scale      string `yaml:"scale"`
	Offset     string `yaml:"offset"`
	Fill       string `yaml:"fill"`
	ValidRange string `yaml:"valid_range"`
	Unsigned   string `yaml:"unsigned"`
}

// Load reads a profile file. A leading ~ in the path is expanded.
func Load(path string) (*Profile, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	log.Debugw("loaded profile", "path", path, "name", p.Name)
	return p, nil
}

// Parse decodes and validates a profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i, g := range p.Granules {
		path, err := homedir.Expand(g)
		if err != nil {
			return nil, err
		}
		p.Granules[i] = path
	}
	return &p, nil
}

// Validate checks the profile settings.
func (p *Profile) Validate() error {
	switch p.Format {
	case "", FormatNC4, FormatClassic:
	default:
		return fmt.Errorf("unknown format %q", p.Format)
	}
	if p.SpliceCache < 0 {
		return fmt.Errorf("splice_cache %d is negative", p.SpliceCache)
	}
	for _, qf := range p.qualityFlags() {
		if err := qf.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]bool)
	for _, c := range p.Calibration {
		if c.Variable == "" {
			return fmt.Errorf("calibration without a variable")
		}
		if seen[c.Variable] {
			return fmt.Errorf("calibration for %q defined twice", c.Variable)
		}
		seen[c.Variable] = true
		switch c.Kind {
		case "", KindScaleOffset:
		case KindMultiScale:
			if c.MultiScaleDim == "" || c.Factors == "" {
				return fmt.Errorf("calibration for %q: multi_scale needs multi_scale_dim and factors", c.Variable)
			}
		case KindLUT:
			if c.LUT == "" {
				return fmt.Errorf("calibration for %q: lut needs a table name", c.Variable)
			}
		default:
			return fmt.Errorf("calibration for %q: unknown kind %q", c.Variable, c.Kind)
		}
	}
	return nil
}

func (p *Profile) qualityFlags() []granule.QualityFlag {
	out := make([]granule.QualityFlag, len(p.QualityFlags))
	for i, qf := range p.QualityFlags {
		out[i] = granule.QualityFlag{
			Name:     qf.Name,
			Packed:   qf.Packed,
			Offset:   qf.Offset,
			Width:    qf.Width,
			Meanings: qf.Meanings,
		}
	}
	return out
}

// Options returns the aggregation options the profile sets.
func (p *Profile) Options() []granule.Option {
	var opts []granule.Option
	if p.InTrackDim != "" {
		opts = append(opts, granule.WithInTrackDim(p.InTrackDim))
	}
	if p.GeoInTrackDim != "" {
		opts = append(opts, granule.WithGeoInTrackDim(p.GeoInTrackDim))
	}
	if p.CrossTrackDim != "" {
		opts = append(opts, granule.WithCrossTrackDim(p.CrossTrackDim))
	}
	if p.Latitude != "" {
		opts = append(opts, granule.WithLatitudeVariable(p.Latitude))
	}
	if p.FillThreshold != nil {
		opts = append(opts, granule.WithFillThreshold(*p.FillThreshold))
	}
	if p.SpliceCache > 0 {
		opts = append(opts, granule.WithSpliceCache(p.SpliceCache))
	}
	if len(p.Variables) > 0 {
		opts = append(opts, granule.WithVariables(p.Variables...))
	}
	if len(p.QualityFlags) > 0 {
		opts = append(opts, granule.WithQualityFlags(p.qualityFlags()...))
	}
	return append(opts, granule.WithEDR(p.EDR))
}

// Opener returns the granule reader for the profile's format.
func (p *Profile) Opener() granule.Opener {
	if p.Format == FormatClassic {
		return classic.Opener(classic.WithMmap(p.Mmap))
	}
	return nc4.Opener
}

func (c Calibration) attributeNames() calibrate.AttributeNames {
	names := calibrate.DefaultAttributeNames
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&names.Scale, c.Attributes.Scale)
	override(&names.Offset, c.Attributes.Offset)
	override(&names.Fill, c.Attributes.Fill)
	override(&names.ValidRange, c.Attributes.ValidRange)
	override(&names.Unsigned, c.Attributes.Unsigned)
	names.Factors = c.Factors
	return names
}

// processor builds the calibration of one granule.
func (c Calibration) processor(g granule.Granule) (granule.RangeProcessor, error) {
	switch c.Kind {
	case KindLUT:
		return calibrate.LUTFromGranule(g, c.LUT)
	case KindMultiScale:
		so, err := calibrate.FromGranule(g, c.Variable, c.attributeNames())
		if err != nil {
			return nil, err
		}
		so.Dim = c.MultiScaleDim
		so.RangeAfterScale = c.RangeAfterScale
		return &calibrate.MultiScale{ScaleOffset: *so}, nil
	default:
		so, err := calibrate.FromGranule(g, c.Variable, c.attributeNames())
		if err != nil {
			return nil, err
		}
		so.Dim = c.MultiScaleDim
		so.RangeAfterScale = c.RangeAfterScale
		return so, nil
	}
}

// Processors builds the per-granule calibration of every calibrated array.
func (p *Profile) Processors(granules []granule.Granule) (map[string]granule.RangeProcessor, error) {
	procs := make(map[string]granule.RangeProcessor, len(p.Calibration))
	for _, c := range p.Calibration {
		agg, err := calibrate.Build(granules, c.processor)
		if err != nil {
			return nil, fmt.Errorf("calibration for %q: %w", c.Variable, err)
		}
		procs[c.Variable] = agg
	}
	return procs, nil
}

// Aggregate builds an aggregation over open granules with the profile's
// options and calibration. Extra options apply after the profile's.
func (p *Profile) Aggregate(granules []granule.Granule, opts ...granule.Option) (*granule.Aggregation, error) {
	a, err := granule.New(granules, append(p.Options(), opts...)...)
	if err != nil {
		return nil, err
	}
	procs, err := p.Processors(granules)
	if err != nil {
		a.Close()
		return nil, err
	}
	for name, proc := range procs {
		a.AddRangeProcessor(name, proc)
	}
	return a, nil
}

// Open opens granule files with the profile's reader and aggregates them.
// With no paths the profile's own granule list is used.
func (p *Profile) Open(ctx context.Context, paths []string, opts ...granule.Option) (*granule.Aggregation, error) {
	if len(paths) == 0 {
		paths = p.Granules
	}
	granules, err := granule.OpenAll(ctx, paths, p.Opener())
	if err != nil {
		return nil, err
	}
	a, err := p.Aggregate(granules, opts...)
	if err != nil {
		for _, g := range granules {
			g.Close()
		}
		return nil, err
	}
	return a, nil
}
