package granule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planned struct {
	granule int
	start   []int
	count   []int
}

func summarize(plan []localRead) []planned {
	out := make([]planned, len(plan))
	for i, lr := range plan {
		out[i] = planned{lr.granule, lr.start, lr.count}
	}
	return out
}

func TestPlanRead(t *testing.T) {
	tests := []struct {
		name     string
		local    []int
		lengths  []int
		inTrack  int
		start    []int
		count    []int
		stride   []int
		expected []planned
	}{
		{
			name:    "inside one granule",
			local:   []int{10, 10},
			lengths: []int{20, 4},
			start:   []int{12, 1}, count: []int{3, 2}, stride: []int{1, 1},
			expected: []planned{{1, []int{2, 1}, []int{3, 2}}},
		},
		{
			name:    "two granules full",
			local:   []int{100, 50},
			lengths: []int{150, 4},
			start:   []int{0, 0}, count: []int{150, 4}, stride: []int{1, 1},
			expected: []planned{
				{0, []int{0, 0}, []int{100, 4}},
				{1, []int{0, 0}, []int{50, 4}},
			},
		},
		{
			name:    "middle granule",
			local:   []int{5, 5, 5},
			lengths: []int{15, 2},
			start:   []int{3, 0}, count: []int{9, 2}, stride: []int{1, 1},
			expected: []planned{
				{0, []int{3, 0}, []int{2, 2}},
				{1, []int{0, 0}, []int{5, 2}},
				{2, []int{0, 0}, []int{2, 2}},
			},
		},
		{
			name:    "stride keeps phase across granules",
			local:   []int{5, 5, 5},
			lengths: []int{15, 2},
			start:   []int{3, 0}, count: []int{6, 1}, stride: []int{2, 1},
			// global rows 3 | 5 7 9 | 11 13
			expected: []planned{
				{0, []int{3, 0}, []int{1, 1}},
				{1, []int{0, 0}, []int{3, 1}},
				{2, []int{1, 0}, []int{2, 1}},
			},
		},
		{
			name:    "stride steps over a granule",
			local:   []int{2, 1, 2},
			lengths: []int{5, 1},
			start:   []int{0, 0}, count: []int{2, 1}, stride: []int{4, 1},
			// global rows 0 | - | 4
			expected: []planned{
				{0, []int{0, 0}, []int{1, 1}},
				{2, []int{1, 0}, []int{1, 1}},
			},
		},
		{
			name:    "in-track axis 1",
			local:   []int{10, 5},
			lengths: []int{2, 15},
			inTrack: 1,
			start:   []int{0, 8}, count: []int{2, 4}, stride: []int{1, 1},
			expected: []planned{
				{0, []int{0, 8}, []int{2, 2}},
				{1, []int{0, 0}, []int{2, 2}},
			},
		},
		{
			name:    "empty granule in span",
			local:   []int{3, 0, 3},
			lengths: []int{6, 1},
			start:   []int{1, 0}, count: []int{4, 1}, stride: []int{1, 1},
			expected: []planned{
				{0, []int{1, 0}, []int{2, 1}},
				{2, []int{0, 0}, []int{2, 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planRead(tt.local, tt.lengths, tt.inTrack, tt.start, tt.count, tt.stride)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, summarize(plan))

			total := 0
			for _, lr := range plan {
				total += lr.count[tt.inTrack]
			}
			assert.Equal(t, tt.count[tt.inTrack], total)
		})
	}
}

func TestPlanReadExtent(t *testing.T) {
	plan, err := planRead([]int{10}, []int{10, 9}, 0, []int{0, 1}, []int{4, 3}, []int{2, 3})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, []int{8, 9}, plan[0].extent)
	assert.Equal(t, []int{4, 3}, plan[0].count)
}

func TestPlanReadEmpty(t *testing.T) {
	plan, err := planRead([]int{10}, []int{10, 4}, 0, []int{0, 0}, []int{0, 4}, []int{1, 1})
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestPlanReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		local  []int
		start  []int
		count  []int
		stride []int
		err    error
	}{
		{"negative count", []int{10, 10}, []int{0, 0}, []int{-1, 4}, []int{1, 1}, ErrNegativeCount},
		{"negative granule length", []int{10, -3, 10}, []int{5, 0}, []int{8, 4}, []int{1, 1}, ErrNegativeCount},
		{"zero stride", []int{10, 10}, []int{0, 0}, []int{1, 4}, []int{0, 1}, ErrInvalidStride},
		{"past in-track end", []int{10, 10}, []int{15, 0}, []int{6, 4}, []int{1, 1}, ErrOutOfRange},
		{"past cross-track end", []int{10, 10}, []int{0, 2}, []int{1, 3}, []int{1, 1}, ErrOutOfRange},
		{"negative start", []int{10, 10}, []int{-1, 0}, []int{1, 4}, []int{1, 1}, ErrOutOfRange},
		{"rank", []int{10, 10}, []int{0}, []int{1}, []int{1}, ErrRank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planRead(tt.local, []int{20, 4}, 0, tt.start, tt.count, tt.stride)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
