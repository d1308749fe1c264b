package granule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCutRanges(t *testing.T) {
	const fill = -999.3
	tests := []struct {
		name     string
		lat      []float64
		expected []Interval
		cut      int
	}{
		{
			name:     "fill at rows 3 and 7",
			lat:      []float64{10, 11, 12, fill, 14, 15, 16, fill, 18, 19},
			expected: []Interval{{0, 2}, {4, 6}, {8, 9}},
			cut:      2,
		},
		{
			name: "no fill",
			lat:  []float64{10, 11, 12},
		},
		{
			name:     "leading and trailing fill",
			lat:      []float64{fill, fill, 1, 2, fill},
			expected: []Interval{{2, 3}},
			cut:      3,
		},
		{
			name:     "adjacent fill",
			lat:      []float64{1, fill, fill, 2},
			expected: []Interval{{0, 0}, {3, 3}},
			cut:      2,
		},
		{
			name:     "all fill",
			lat:      []float64{fill, fill},
			expected: nil,
			cut:      2,
		},
		{
			name: "threshold is exclusive",
			lat:  []float64{-90, -89.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges, cut := findCutRanges(tt.lat, 4, DefaultFillThreshold)
			assert.Equal(t, tt.cut, cut)
			var rows []Interval
			for _, r := range ranges {
				rows = append(rows, r.Rows)
				assert.Equal(t, Interval{0, 3}, r.Columns)
			}
			assert.Equal(t, tt.expected, rows)

			valid := 0
			for _, r := range rows {
				valid += r.Len()
			}
			if cut > 0 {
				assert.Equal(t, len(tt.lat)-cut, valid)
			}
		})
	}
}

func TestCutRangesApply(t *testing.T) {
	var none *cutRanges
	assert.False(t, none.appliesTo(10))

	cr := &cutRanges{cutScans: 2, length: 10}
	assert.True(t, cr.appliesTo(10))
	assert.False(t, cr.appliesTo(20))

	assert.False(t, (&cutRanges{length: 10}).appliesTo(10))
}
