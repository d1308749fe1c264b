package hyperslab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestExtract(t *testing.T) {
	// 4x5 array holding 0..19
	src := seq(20)
	dims := []int{4, 5}

	tests := []struct {
		name     string
		sel      Selection
		expected []int
	}{
		{"all", All(dims), src},
		{"row", Selection{Start: []int{2, 0}, Count: []int{1, 5}, Stride: []int{1, 1}}, []int{10, 11, 12, 13, 14}},
		{"block", Selection{Start: []int{1, 1}, Count: []int{2, 2}, Stride: []int{1, 1}}, []int{6, 7, 11, 12}},
		{"strided", Selection{Start: []int{0, 0}, Count: []int{2, 3}, Stride: []int{2, 2}}, []int{0, 2, 4, 10, 12, 14}},
		{"column", Selection{Start: []int{0, 4}, Count: []int{4, 1}, Stride: []int{1, 1}}, []int{4, 9, 14, 19}},
		{"empty", Selection{Start: []int{0, 0}, Count: []int{0, 5}, Stride: []int{1, 1}}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(src, dims, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	src := seq(20)
	dims := []int{4, 5}

	tests := []struct {
		name string
		sel  Selection
	}{
		{"rank", Selection{Start: []int{0}, Count: []int{1}, Stride: []int{1}}},
		{"negative count", Selection{Start: []int{0, 0}, Count: []int{-1, 1}, Stride: []int{1, 1}}},
		{"zero stride", Selection{Start: []int{0, 0}, Count: []int{1, 1}, Stride: []int{0, 1}}},
		{"past end", Selection{Start: []int{3, 0}, Count: []int{2, 1}, Stride: []int{1, 1}}},
		{"strided past end", Selection{Start: []int{0, 0}, Count: []int{1, 3}, Stride: []int{1, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(src, dims, tt.sel)
			assert.Error(t, err)
		})
	}

	_, err := Extract(seq(19), dims, All(dims))
	assert.Error(t, err)
}

func TestConcat(t *testing.T) {
	t.Run("axis 0", func(t *testing.T) {
		out, shape, err := Concat([][]int{{1, 2, 3, 4}, {5, 6}}, [][]int{{2, 2}, {1, 2}}, 0)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, out)
		assert.Equal(t, []int{3, 2}, shape)
	})

	t.Run("axis 1", func(t *testing.T) {
		// [[1 2] [3 4]] joined with [[5] [6]] along columns
		out, shape, err := Concat([][]int{{1, 2, 3, 4}, {5, 6}}, [][]int{{2, 2}, {2, 1}}, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 5, 3, 4, 6}, out)
		assert.Equal(t, []int{2, 3}, shape)
	})

	t.Run("mismatch", func(t *testing.T) {
		_, _, err := Concat([][]int{{1, 2}, {3, 4, 5}}, [][]int{{1, 2}, {1, 3}}, 0)
		assert.Error(t, err)
	})

	t.Run("bad element count", func(t *testing.T) {
		_, _, err := Concat([][]int{{1}}, [][]int{{1, 2}}, 0)
		assert.Error(t, err)
	})
}

func TestValues(t *testing.T) {
	got, err := ExtractValues([]float32{0, 1, 2, 3, 4, 5}, []int{3, 2}, Selection{
		Start: []int{1, 1}, Count: []int{2, 1}, Stride: []int{1, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 5}, got)

	_, err = ExtractValues([]bool{true}, []int{1}, All([]int{1}))
	assert.Error(t, err)

	out, shape, err := ConcatValues([]interface{}{[]int16{1, 2}, []int16{3, 4}}, [][]int{{1, 2}, {1, 2}}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3, 4}, out)
	assert.Equal(t, []int{2, 2}, shape)

	_, _, err = ConcatValues([]interface{}{[]int16{1}, []float32{2}}, [][]int{{1, 1}, {1, 1}}, 0)
	assert.Error(t, err)
}
