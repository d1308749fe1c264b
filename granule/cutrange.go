package granule

import (
	"fmt"

	"github.com/robert-malhotra/go-granule/dtype"
)

// Interval is an inclusive range of indices.
type Interval struct {
	First, Last int
}

// Len returns the number of indices in the interval.
func (r Interval) Len() int { return r.Last - r.First + 1 }

// CutRange is a run of valid scan lines in an EDR granule.
type CutRange struct {
	Rows    Interval
	Columns Interval
}

// cutRanges records the valid runs of one granule.
type cutRanges struct {
	ranges   []CutRange
	cutScans int
	// length is the in-track length of the latitude array before cutting.
	// Only arrays of the same in-track length are cut.
	length int
}

func (c *cutRanges) appliesTo(inTrackLen int) bool {
	return c != nil && c.cutScans > 0 && inTrackLen == c.length
}

// findCutRanges splits a latitude column into runs of valid scan lines.
// A line whose latitude is below threshold is fill. No ranges are returned
// when there is no fill.
func findCutRanges(lat []float64, columns int, threshold float64) ([]CutRange, int) {
	cols := Interval{0, columns - 1}
	var ranges []CutRange
	cut := 0
	first := -1
	for i, v := range lat {
		if v < threshold {
			cut++
			if first >= 0 {
				ranges = append(ranges, CutRange{Rows: Interval{first, i - 1}, Columns: cols})
				first = -1
			}
			continue
		}
		if first < 0 {
			first = i
		}
	}
	if first >= 0 {
		ranges = append(ranges, CutRange{Rows: Interval{first, len(lat) - 1}, Columns: cols})
	}
	if cut == 0 {
		return nil, 0
	}
	return ranges, cut
}

// detectCuts reads the first cross-track column of the latitude array.
func detectCuts(g Granule, name string, d *descriptor, o *options) (*cutRanges, error) {
	rank := len(d.lengths)
	start := make([]int, rank)
	count := make([]int, rank)
	stride := make([]int, rank)
	columns := 1
	for i := range count {
		count[i] = 1
		stride[i] = 1
		if i != d.inTrack && (d.dims[i] == o.crossTrackDim || columns == 1) {
			columns = d.lengths[i]
		}
	}
	count[d.inTrack] = d.lengths[d.inTrack]

	raw, err := g.ReadRange(name, start, count, stride)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	lat, err := dtype.ToFloat64(raw)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	ranges, cut := findCutRanges(lat, columns, o.fillThreshold)
	return &cutRanges{ranges: ranges, cutScans: cut, length: d.lengths[d.inTrack]}, nil
}
