package hyperslab

import "fmt"

// ExtractValues is Extract for a typed slice held in an interface.
func ExtractValues(data interface{}, dims []int, sel Selection) (interface{}, error) {
	switch v := data.(type) {
	case []int8:
		return box[int8](Extract(v, dims, sel))
	case []uint8:
		return box[uint8](Extract(v, dims, sel))
	case []int16:
		return box[int16](Extract(v, dims, sel))
	case []uint16:
		return box[uint16](Extract(v, dims, sel))
	case []int32:
		return box[int32](Extract(v, dims, sel))
	case []uint32:
		return box[uint32](Extract(v, dims, sel))
	case []int64:
		return box[int64](Extract(v, dims, sel))
	case []uint64:
		return box[uint64](Extract(v, dims, sel))
	case []float32:
		return box[float32](Extract(v, dims, sel))
	case []float64:
		return box[float64](Extract(v, dims, sel))
	case []string:
		return box[string](Extract(v, dims, sel))
	}
	return nil, fmt.Errorf("unsupported array type %T", data)
}

// ConcatValues is Concat for typed slices held in interfaces.
func ConcatValues(parts []interface{}, shapes [][]int, axis int) (interface{}, []int, error) {
	if len(parts) == 0 {
		return nil, nil, fmt.Errorf("nothing to concatenate")
	}
	switch parts[0].(type) {
	case []int8:
		return concatAs[int8](parts, shapes, axis)
	case []uint8:
		return concatAs[uint8](parts, shapes, axis)
	case []int16:
		return concatAs[int16](parts, shapes, axis)
	case []uint16:
		return concatAs[uint16](parts, shapes, axis)
	case []int32:
		return concatAs[int32](parts, shapes, axis)
	case []uint32:
		return concatAs[uint32](parts, shapes, axis)
	case []int64:
		return concatAs[int64](parts, shapes, axis)
	case []uint64:
		return concatAs[uint64](parts, shapes, axis)
	case []float32:
		return concatAs[float32](parts, shapes, axis)
	case []float64:
		return concatAs[float64](parts, shapes, axis)
	case []string:
		return concatAs[string](parts, shapes, axis)
	}
	return nil, nil, fmt.Errorf("unsupported array type %T", parts[0])
}

func box[T any](v []T, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func concatAs[T any](parts []interface{}, shapes [][]int, axis int) (interface{}, []int, error) {
	typed := make([][]T, len(parts))
	for i, p := range parts {
		v, ok := p.([]T)
		if !ok {
			return nil, nil, fmt.Errorf("part %d has type %T, want %T", i, p, typed[0])
		}
		typed[i] = v
	}
	out, shape, err := Concat(typed, shapes, axis)
	if err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}
