package calibrate

import (
	"fmt"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/granule"
)

// LUTFill marks table entries with no value.
const LUTFill = float32(-999.9)

// LUT converts stored values to physical ones by table lookup, using each
// value as an unsigned 16-bit index. Indices past the table and fill entries
// become NaN.
type LUT struct {
	Table []float32
}

var _ granule.RangeProcessor = (*LUT)(nil)

// LUTFromGranule reads the lookup table stored in a granule array.
func LUTFromGranule(g granule.Granule, name string) (*LUT, error) {
	lengths, err := g.DimensionLengths(name)
	if err != nil {
		return nil, err
	}
	if len(lengths) != 1 {
		return nil, fmt.Errorf("lookup table %q has rank %d, want 1", name, len(lengths))
	}
	raw, err := g.ReadRange(name, []int{0}, lengths, []int{1})
	if err != nil {
		return nil, fmt.Errorf("lookup table %q: %w", name, err)
	}
	table, err := dtype.ToFloat32(raw)
	if err != nil {
		return nil, fmt.Errorf("lookup table %q: %w", name, err)
	}
	return &LUT{Table: table}, nil
}

func (p *LUT) MultiScaleDim() string { return "" }

func (p *LUT) ProcessRange(g int, values interface{}, sub granule.Subset) (interface{}, error) {
	raw, err := toFloat64(values, true)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = nan32
		idx := int(uint16(v))
		if v < 0 || v > 65535 || idx >= len(p.Table) {
			continue
		}
		if bt := p.Table[idx]; bt != LUTFill {
			out[i] = bt
		}
	}
	return out, nil
}

func (p *LUT) ProcessRangeQualityFlag(g int, values interface{}, sub granule.Subset, qf granule.QualityFlag) (interface{}, error) {
	return qualityFlag(values, qf, nil)
}

func (p *LUT) ProcessAlongMultiScaleDim(g int, values interface{}, sub granule.Subset) (interface{}, error) {
	return p.ProcessRange(g, values, sub)
}
