package calibrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/granule"
)

// AttributeNames names the attributes ScaleOffset is built from.
type AttributeNames struct {
	Scale      string
	Offset     string
	Fill       string
	ValidRange string
	Unsigned   string
	// Factors names an array of (scale, offset) pairs, one pair per
	// multi-scale index, as VIIRS SDR products store them.
	Factors string
}

// DefaultAttributeNames follows the NetCDF conventions.
var DefaultAttributeNames = AttributeNames{
	Scale:      "scale_factor",
	Offset:     "add_offset",
	Fill:       "_FillValue",
	ValidRange: "valid_range",
	Unsigned:   "_Unsigned",
}

// FromGranule builds a ScaleOffset for an array from the attributes the
// granule stores for it. Missing attributes leave the defaults in place.
func FromGranule(g granule.Granule, name string, names AttributeNames) (*ScaleOffset, error) {
	p := &ScaleOffset{}

	floats := func(attr string) ([]float64, error) {
		if attr == "" {
			return nil, nil
		}
		a, err := g.FindAttribute(name, attr)
		if errors.Is(err, granule.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return a.ReadFloat64()
	}

	var err error
	if p.Scale, err = floats(names.Scale); err != nil {
		return nil, fmt.Errorf("%s: %w", names.Scale, err)
	}
	if p.Offset, err = floats(names.Offset); err != nil {
		return nil, fmt.Errorf("%s: %w", names.Offset, err)
	}
	if p.Fill, err = floats(names.Fill); err != nil {
		return nil, fmt.Errorf("%s: %w", names.Fill, err)
	}
	valid, err := floats(names.ValidRange)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", names.ValidRange, err)
	}
	if len(valid) == 2 {
		p.ValidMin, p.ValidMax, p.HasValidRange = valid[0], valid[1], true
	}

	if names.Unsigned != "" {
		a, err := g.FindAttribute(name, names.Unsigned)
		switch {
		case errors.Is(err, granule.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			s, err := a.ReadString()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", names.Unsigned, err)
			}
			p.Unsigned = strings.EqualFold(s, "true")
		}
	}

	if names.Factors != "" {
		scale, offset, err := ReadFactors(g, names.Factors)
		if err != nil {
			return nil, err
		}
		p.Scale, p.Offset = scale, offset
	}
	log.Debugw("calibration", "array", name, "scale", p.Scale, "offset", p.Offset, "fill", p.Fill, "unsigned", p.Unsigned)
	return p, nil
}

// ReadFactors reads an array of (scale, offset) pairs.
func ReadFactors(g granule.Granule, name string) (scale, offset []float64, err error) {
	lengths, err := g.DimensionLengths(name)
	if err != nil {
		return nil, nil, err
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	if n < 2 || n%2 != 0 {
		return nil, nil, fmt.Errorf("factors %q: %d values do not form pairs", name, n)
	}
	start := make([]int, len(lengths))
	stride := make([]int, len(lengths))
	for i := range stride {
		stride[i] = 1
	}
	raw, err := g.ReadRange(name, start, lengths, stride)
	if err != nil {
		return nil, nil, fmt.Errorf("factors %q: %w", name, err)
	}
	vals, err := dtype.ToFloat64(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("factors %q: %w", name, err)
	}
	for i := 0; i+1 < len(vals); i += 2 {
		scale = append(scale, vals[i])
		offset = append(offset, vals[i+1])
	}
	return scale, offset, nil
}
