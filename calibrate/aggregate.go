package calibrate

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-granule/granule"
)

// ErrMixedMultiScale is returned when only some granules define a
// multi-scale dimension.
var ErrMixedMultiScale = errors.New("all or none of the granule processors can define a multi-scale dimension")

// Aggregate calibrates each granule with its own processor.
type Aggregate struct {
	procs []granule.RangeProcessor
	dim   string
}

var _ granule.RangeProcessor = (*Aggregate)(nil)

// NewAggregate combines one processor per granule, in granule order.
func NewAggregate(procs ...granule.RangeProcessor) (*Aggregate, error) {
	if len(procs) == 0 {
		return nil, granule.ErrNoGranules
	}
	dim := ""
	multi := 0
	for i, p := range procs {
		if p == nil {
			return nil, fmt.Errorf("processor %d is nil", i)
		}
		if d := p.MultiScaleDim(); d != "" {
			if multi > 0 && d != dim {
				return nil, fmt.Errorf("processor %d: multi-scale dimension %q, want %q", i, d, dim)
			}
			dim = d
			multi++
		}
	}
	if multi > 0 && multi != len(procs) {
		return nil, ErrMixedMultiScale
	}
	return &Aggregate{procs: procs, dim: dim}, nil
}

// Build builds one processor per granule.
func Build(granules []granule.Granule, build func(g granule.Granule) (granule.RangeProcessor, error)) (*Aggregate, error) {
	procs := make([]granule.RangeProcessor, len(granules))
	for i, g := range granules {
		p, err := build(g)
		if err != nil {
			return nil, fmt.Errorf("granule %d: %w", i, err)
		}
		procs[i] = p
	}
	return NewAggregate(procs...)
}

func (a *Aggregate) processor(g int) (granule.RangeProcessor, error) {
	if g < 0 || g >= len(a.procs) {
		return nil, fmt.Errorf("%w: granule %d of %d", granule.ErrOutOfRange, g, len(a.procs))
	}
	return a.procs[g], nil
}

func (a *Aggregate) MultiScaleDim() string { return a.dim }

func (a *Aggregate) ProcessRange(g int, values interface{}, sub granule.Subset) (interface{}, error) {
	p, err := a.processor(g)
	if err != nil {
		return nil, err
	}
	return p.ProcessRange(g, values, sub)
}

func (a *Aggregate) ProcessRangeQualityFlag(g int, values interface{}, sub granule.Subset, qf granule.QualityFlag) (interface{}, error) {
	p, err := a.processor(g)
	if err != nil {
		return nil, err
	}
	return p.ProcessRangeQualityFlag(g, values, sub, qf)
}

func (a *Aggregate) ProcessAlongMultiScaleDim(g int, values interface{}, sub granule.Subset) (interface{}, error) {
	p, err := a.processor(g)
	if err != nil {
		return nil, err
	}
	return p.ProcessAlongMultiScaleDim(g, values, sub)
}
