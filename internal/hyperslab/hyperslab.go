// Package hyperslab selects and joins rectangular regions of row-major
// arrays held in memory.
package hyperslab

import (
	"fmt"
)

// Selection is a (start, count, stride) region with one entry per dimension.
// Count is a number of elements, not an index extent.
type Selection struct {
	Start  []int
	Count  []int
	Stride []int
}

// All selects every element of an array with the given dimensions.
func All(dims []int) Selection {
	sel := Selection{
		Start:  make([]int, len(dims)),
		Count:  append([]int(nil), dims...),
		Stride: make([]int, len(dims)),
	}
	for i := range sel.Stride {
		sel.Stride[i] = 1
	}
	return sel
}

// NumElements returns the number of elements the selection produces.
func (s Selection) NumElements() int {
	n := 1
	for _, c := range s.Count {
		n *= c
	}
	return n
}

// Validate checks the selection against array dimensions.
func (s Selection) Validate(dims []int) error {
	ndims := len(dims)
	if len(s.Start) != ndims || len(s.Count) != ndims || len(s.Stride) != ndims {
		return fmt.Errorf("selection rank (%d,%d,%d) does not match array rank %d",
			len(s.Start), len(s.Count), len(s.Stride), ndims)
	}
	for d := 0; d < ndims; d++ {
		if s.Start[d] < 0 || s.Count[d] < 0 {
			return fmt.Errorf("dimension %d: negative start %d or count %d", d, s.Start[d], s.Count[d])
		}
		if s.Stride[d] < 1 {
			return fmt.Errorf("dimension %d: stride %d must be positive", d, s.Stride[d])
		}
		if s.Count[d] == 0 {
			continue
		}
		if last := s.Start[d] + (s.Count[d]-1)*s.Stride[d]; last >= dims[d] {
			return fmt.Errorf("dimension %d: last index %d exceeds length %d", d, last, dims[d])
		}
	}
	return nil
}

// Extract copies the selected region of src, laid out with dims, into a new slice.
func Extract[T any](src []T, dims []int, sel Selection) ([]T, error) {
	ndims := len(dims)
	if ndims == 0 {
		return nil, fmt.Errorf("cannot extract hyperslab from scalar array")
	}
	if err := sel.Validate(dims); err != nil {
		return nil, err
	}
	total := 1
	for _, n := range dims {
		total *= n
	}
	if len(src) != total {
		return nil, fmt.Errorf("array has %d elements, dimensions %v need %d", len(src), dims, total)
	}

	result := make([]T, sel.NumElements())
	if len(result) == 0 {
		return result, nil
	}

	// Row-major strides of the source
	srcStrides := make([]int, ndims)
	srcStrides[ndims-1] = 1
	for d := ndims - 2; d >= 0; d-- {
		srcStrides[d] = srcStrides[d+1] * dims[d+1]
	}

	dst := 0
	var copyDim func(dim, srcOffset int)
	copyDim = func(dim, srcOffset int) {
		base := srcOffset + sel.Start[dim]*srcStrides[dim]
		step := sel.Stride[dim] * srcStrides[dim]
		if dim == ndims-1 {
			if sel.Stride[dim] == 1 {
				dst += copy(result[dst:], src[base:base+sel.Count[dim]])
				return
			}
			for i := 0; i < sel.Count[dim]; i++ {
				result[dst] = src[base+i*step]
				dst++
			}
			return
		}
		for i := 0; i < sel.Count[dim]; i++ {
			copyDim(dim+1, base+i*step)
		}
	}
	copyDim(0, 0)
	return result, nil
}

// Concat joins arrays along axis. Every part must match the others on all
// other axes; the joined length along axis is the sum of the parts'.
func Concat[T any](parts [][]T, shapes [][]int, axis int) ([]T, []int, error) {
	if len(parts) == 0 || len(parts) != len(shapes) {
		return nil, nil, fmt.Errorf("have %d parts and %d shapes", len(parts), len(shapes))
	}
	rank := len(shapes[0])
	if axis < 0 || axis >= rank {
		return nil, nil, fmt.Errorf("axis %d out of range for rank %d", axis, rank)
	}

	out := append([]int(nil), shapes[0]...)
	out[axis] = 0
	inner := make([]int, len(parts))
	total := 0
	for i, shape := range shapes {
		if len(shape) != rank {
			return nil, nil, fmt.Errorf("part %d has rank %d, want %d", i, len(shape), rank)
		}
		n := 1
		for d, l := range shape {
			if d != axis && l != shapes[0][d] {
				return nil, nil, fmt.Errorf("part %d has length %d on axis %d, want %d", i, l, d, shapes[0][d])
			}
			n *= l
		}
		if len(parts[i]) != n {
			return nil, nil, fmt.Errorf("part %d has %d elements, shape %v needs %d", i, len(parts[i]), shape, n)
		}
		out[axis] += shape[axis]
		inner[i] = 1
		for d := axis; d < rank; d++ {
			inner[i] *= shape[d]
		}
		total += n
	}

	outer := 1
	for d := 0; d < axis; d++ {
		outer *= out[d]
	}
	result := make([]T, 0, total)
	if axis == 0 {
		for _, p := range parts {
			result = append(result, p...)
		}
		return result, out, nil
	}
	for o := 0; o < outer; o++ {
		for i, p := range parts {
			result = append(result, p[o*inner[i]:(o+1)*inner[i]]...)
		}
	}
	return result, out, nil
}
