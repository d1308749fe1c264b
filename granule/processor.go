package granule

// Subset is the granule-local region a chunk of values was read from.
// Count holds element counts.
type Subset struct {
	Dims   []string
	Start  []int
	Count  []int
	Stride []int
}

// Index returns the position of a named dimension, or -1.
func (s Subset) Index(dim string) int {
	for i, d := range s.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// RangeProcessor calibrates the raw values read from one granule. The
// granule index selects per-granule calibration constants. Every method must
// return one value per input element.
type RangeProcessor interface {
	ProcessRange(granule int, values interface{}, sub Subset) (interface{}, error)
	ProcessRangeQualityFlag(granule int, values interface{}, sub Subset, qf QualityFlag) (interface{}, error)
	// ProcessAlongMultiScaleDim handles reads spanning several indices of the
	// multi-scale dimension, where per-index calibration is left to the caller.
	ProcessAlongMultiScaleDim(granule int, values interface{}, sub Subset) (interface{}, error)
	// MultiScaleDim names the dimension with per-index calibration, or "".
	MultiScaleDim() string
}
