package dtype

import (
	"fmt"
	"reflect"
)

// Number is the set of element types that convert between each other.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Convert converts a numeric slice to []T with Go conversion semantics.
// A slice that is already []T is returned as is.
func Convert[T Number](v interface{}) ([]T, error) {
	if out, ok := v.([]T); ok {
		return out, nil
	}
	switch src := v.(type) {
	case []int8:
		return convertSlice[T](src), nil
	case []uint8:
		return convertSlice[T](src), nil
	case []int16:
		return convertSlice[T](src), nil
	case []uint16:
		return convertSlice[T](src), nil
	case []int32:
		return convertSlice[T](src), nil
	case []uint32:
		return convertSlice[T](src), nil
	case []int64:
		return convertSlice[T](src), nil
	case []uint64:
		return convertSlice[T](src), nil
	case []float32:
		return convertSlice[T](src), nil
	case []float64:
		return convertSlice[T](src), nil
	}
	return nil, fmt.Errorf("cannot convert %T to numeric slice", v)
}

func convertSlice[T, S Number](src []S) []T {
	out := make([]T, len(src))
	for i, x := range src {
		out[i] = T(x)
	}
	return out
}

// ToFloat32 converts a numeric slice to float32.
func ToFloat32(v interface{}) ([]float32, error) { return Convert[float32](v) }

// ToFloat64 converts a numeric slice to float64.
func ToFloat64(v interface{}) ([]float64, error) { return Convert[float64](v) }

// ToInt16 converts a numeric slice to int16.
func ToInt16(v interface{}) ([]int16, error) { return Convert[int16](v) }

// ToInt32 converts a numeric slice to int32.
func ToInt32(v interface{}) ([]int32, error) { return Convert[int32](v) }

// ToBytes converts a numeric slice to bytes. Signed bytes keep their bit pattern.
func ToBytes(v interface{}) ([]byte, error) { return Convert[uint8](v) }

// Flatten turns a scalar or a nested slice ([][]float32, [][][]int16, ...)
// into a flat row-major slice and its shape. Ragged input is an error.
func Flatten(v interface{}) (interface{}, []int, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("nil value")
	}
	if rv.Kind() != reflect.Slice {
		out := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
		out.Index(0).Set(rv)
		return out.Interface(), nil, nil
	}

	var shape []int
	elem := rv.Type()
	for probe := rv; elem.Kind() == reflect.Slice; elem = elem.Elem() {
		shape = append(shape, probe.Len())
		if probe.Len() > 0 {
			probe = probe.Index(0)
		} else {
			probe = reflect.Zero(elem.Elem())
		}
	}
	if len(shape) == 1 {
		return v, shape, nil
	}

	total := 1
	for _, n := range shape {
		total *= n
	}
	out := reflect.MakeSlice(reflect.SliceOf(elem), 0, total)
	var walk func(reflect.Value, int) error
	walk = func(cur reflect.Value, depth int) error {
		if cur.Len() != shape[depth] {
			return fmt.Errorf("ragged slice at depth %d: length %d, want %d", depth, cur.Len(), shape[depth])
		}
		if depth == len(shape)-1 {
			out = reflect.AppendSlice(out, cur)
			return nil
		}
		for i := 0; i < cur.Len(); i++ {
			if err := walk(cur.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return out.Interface(), shape, nil
}

// Concat joins typed slices of the same element type end to end.
func Concat(parts []interface{}) (interface{}, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("nothing to concatenate")
	}
	first := reflect.ValueOf(parts[0])
	if first.Kind() != reflect.Slice {
		return nil, fmt.Errorf("cannot concatenate %T", parts[0])
	}
	total := 0
	for i, p := range parts {
		rv := reflect.ValueOf(p)
		if rv.Type() != first.Type() {
			return nil, fmt.Errorf("part %d has type %T, want %T", i, p, parts[0])
		}
		total += rv.Len()
	}
	out := reflect.MakeSlice(first.Type(), 0, total)
	for _, p := range parts {
		out = reflect.AppendSlice(out, reflect.ValueOf(p))
	}
	return out.Interface(), nil
}
