// Package calibrate provides granule.RangeProcessor implementations that turn
// stored granule values into physical values.
package calibrate

import (
	"fmt"
	"math"

	logging "github.com/ipfs/go-log/v2"

	"github.com/robert-malhotra/go-granule/granule"
)

var log = logging.Logger("calibrate")

var nan32 = float32(math.NaN())

// ScaleOffset unpacks values as value*scale + offset. Fill values and values
// outside the valid range become NaN.
//
// With a multi-scale dimension, Scale and Offset hold one entry per index of
// that dimension and the entry is chosen by the subset being read. Otherwise
// the first entry applies.
type ScaleOffset struct {
	Scale  []float64
	Offset []float64
	Fill   []float64

	ValidMin, ValidMax float64
	HasValidRange      bool
	// RangeAfterScale checks the valid range against unpacked values
	// instead of stored ones.
	RangeAfterScale bool
	// Unsigned reads signed integer storage as unsigned.
	Unsigned bool

	Dim string
}

var _ granule.RangeProcessor = (*ScaleOffset)(nil)

// MultiScaleDim returns the multi-scale dimension, if any.
func (p *ScaleOffset) MultiScaleDim() string { return p.Dim }

func (p *ScaleOffset) factors(index int) (float64, float64) {
	scale, offset := 1.0, 0.0
	if index < 0 {
		index = 0
	}
	if len(p.Scale) > 0 {
		scale = p.Scale[min(index, len(p.Scale)-1)]
	}
	if len(p.Offset) > 0 {
		offset = p.Offset[min(index, len(p.Offset)-1)]
	}
	return scale, offset
}

func (p *ScaleOffset) isFill(v float64) bool {
	for _, f := range p.Fill {
		if v == f {
			return true
		}
	}
	return false
}

func (p *ScaleOffset) outside(v float64) bool {
	return p.HasValidRange && (v < p.ValidMin || v > p.ValidMax)
}

// ProcessRange calibrates values with the factors for the multi-scale index
// being read.
func (p *ScaleOffset) ProcessRange(g int, values interface{}, sub granule.Subset) (interface{}, error) {
	raw, err := toFloat64(values, p.Unsigned)
	if err != nil {
		return nil, err
	}
	index := 0
	if p.Dim != "" {
		if k := sub.Index(p.Dim); k >= 0 {
			index = sub.Start[k]
		}
	}
	scale, offset := p.factors(index)
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = p.unpack(v, scale, offset)
	}
	return out, nil
}

func (p *ScaleOffset) unpack(v, scale, offset float64) float32 {
	if p.isFill(v) || math.IsNaN(v) {
		return nan32
	}
	if !p.RangeAfterScale && p.outside(v) {
		return nan32
	}
	u := v*scale + offset
	if p.RangeAfterScale && p.outside(u) {
		return nan32
	}
	return float32(u)
}

// ProcessRangeQualityFlag extracts category codes. Packed values that are
// fill stay NaN.
func (p *ScaleOffset) ProcessRangeQualityFlag(g int, values interface{}, sub granule.Subset, qf granule.QualityFlag) (interface{}, error) {
	return qualityFlag(values, qf, p.Fill)
}

// ProcessAlongMultiScaleDim masks fill and out-of-range values but leaves
// scaling to the caller, since each index of the dimension has its own factors.
func (p *ScaleOffset) ProcessAlongMultiScaleDim(g int, values interface{}, sub granule.Subset) (interface{}, error) {
	raw, err := toFloat64(values, p.Unsigned)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(raw))
	for i, v := range raw {
		if p.isFill(v) || (!p.RangeAfterScale && p.outside(v)) {
			out[i] = nan32
			continue
		}
		out[i] = float32(v)
	}
	return out, nil
}

func qualityFlag(values interface{}, qf granule.QualityFlag, fill []float64) ([]float32, error) {
	codes, err := qf.Unpack(values)
	if err != nil {
		return nil, err
	}
	raw, err := toFloat64(values, true)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(codes))
	for i, c := range codes {
		out[i] = float32(c)
		for _, f := range fill {
			if raw[i] == f {
				out[i] = nan32
				break
			}
		}
	}
	return out, nil
}

// toFloat64 widens stored values, optionally reading signed integers as unsigned.
func toFloat64(values interface{}, unsigned bool) ([]float64, error) {
	var out []float64
	switch v := values.(type) {
	case []int8:
		out = make([]float64, len(v))
		for i, x := range v {
			if unsigned {
				out[i] = float64(uint8(x))
			} else {
				out[i] = float64(x)
			}
		}
	case []int16:
		out = make([]float64, len(v))
		for i, x := range v {
			if unsigned {
				out[i] = float64(uint16(x))
			} else {
				out[i] = float64(x)
			}
		}
	case []int32:
		out = make([]float64, len(v))
		for i, x := range v {
			if unsigned {
				out[i] = float64(uint32(x))
			} else {
				out[i] = float64(x)
			}
		}
	case []uint8:
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	case []uint16:
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	case []uint32:
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	case []int64:
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	case []uint64:
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	case []float32:
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	case []float64:
		out = v
	default:
		return nil, fmt.Errorf("cannot calibrate %T", values)
	}
	return out, nil
}
