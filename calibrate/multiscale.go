package calibrate

import (
	"fmt"

	"github.com/robert-malhotra/go-granule/granule"
)

// MultiScale is a ScaleOffset whose reads across several indices of the
// multi-scale dimension are fully calibrated, each element with the factors
// of its own index.
type MultiScale struct {
	ScaleOffset
}

var _ granule.RangeProcessor = (*MultiScale)(nil)

// NewMultiScale returns a processor with one (scale, offset) pair per index
// of dim.
func NewMultiScale(dim string, scale, offset []float64) (*MultiScale, error) {
	if dim == "" {
		return nil, fmt.Errorf("multi-scale dimension name is empty")
	}
	if len(scale) != len(offset) {
		return nil, fmt.Errorf("%d scale factors for %d offsets", len(scale), len(offset))
	}
	return &MultiScale{ScaleOffset{Scale: scale, Offset: offset, Dim: dim}}, nil
}

// ProcessAlongMultiScaleDim calibrates values read from several indices of
// the multi-scale dimension.
func (p *MultiScale) ProcessAlongMultiScaleDim(g int, values interface{}, sub granule.Subset) (interface{}, error) {
	k := sub.Index(p.Dim)
	if k < 0 {
		return p.ProcessRange(g, values, sub)
	}
	raw, err := toFloat64(values, p.Unsigned)
	if err != nil {
		return nil, err
	}
	inner := 1
	for _, c := range sub.Count[k+1:] {
		inner *= c
	}
	if n := inner * sub.Count[k]; n > 0 && len(raw)%n != 0 {
		return nil, fmt.Errorf("%d values do not fit subset counts %v", len(raw), sub.Count)
	}

	out := make([]float32, len(raw))
	for i, v := range raw {
		index := sub.Start[k] + (i/inner)%sub.Count[k]*sub.Stride[k]
		scale, offset := p.factors(index)
		out[i] = p.unpack(v, scale, offset)
	}
	return out, nil
}
