// Package dtype describes the element types of granule arrays and provides
// conversion between the typed Go slices that carry their values.
package dtype

import (
	"fmt"
	"reflect"
)

// DataType identifies the element type of an array.
type DataType int

// Element types. Byte is signed like the 8-bit type of classic NetCDF.
const (
	Invalid DataType = iota
	Byte
	UByte
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double
	String
	Compound
)

var names = map[DataType]string{
	Invalid:  "invalid",
	Byte:     "int8",
	UByte:    "uint8",
	Short:    "int16",
	UShort:   "uint16",
	Int:      "int32",
	UInt:     "uint32",
	Long:     "int64",
	ULong:    "uint64",
	Float:    "float32",
	Double:   "float64",
	String:   "string",
	Compound: "compound",
}

func (t DataType) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// IsNumeric reports whether values of t can be calibrated and concatenated.
func (t DataType) IsNumeric() bool {
	return t >= Byte && t <= Double
}

// Size returns the element size in bytes, or 0 for non-numeric types.
func (t DataType) Size() int {
	switch t {
	case Byte, UByte:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Float:
		return 4
	case Long, ULong, Double:
		return 8
	}
	return 0
}

// GoType returns the Go element type for t.
func (t DataType) GoType() (reflect.Type, error) {
	switch t {
	case Byte:
		return reflect.TypeOf(int8(0)), nil
	case UByte:
		return reflect.TypeOf(uint8(0)), nil
	case Short:
		return reflect.TypeOf(int16(0)), nil
	case UShort:
		return reflect.TypeOf(uint16(0)), nil
	case Int:
		return reflect.TypeOf(int32(0)), nil
	case UInt:
		return reflect.TypeOf(uint32(0)), nil
	case Long:
		return reflect.TypeOf(int64(0)), nil
	case ULong:
		return reflect.TypeOf(uint64(0)), nil
	case Float:
		return reflect.TypeOf(float32(0)), nil
	case Double:
		return reflect.TypeOf(float64(0)), nil
	case String:
		return reflect.TypeOf(""), nil
	default:
		return nil, fmt.Errorf("no Go type for %v", t)
	}
}

// Parse maps a Go type name ("int16", "float32", ...) to a DataType.
// Unknown names, including user-defined types, map to Compound.
func Parse(name string) DataType {
	for t, s := range names {
		if s == name && t != Invalid {
			return t
		}
	}
	return Compound
}

// Of returns the element type of a typed slice.
func Of(v interface{}) DataType {
	switch v.(type) {
	case []int8:
		return Byte
	case []uint8:
		return UByte
	case []int16:
		return Short
	case []uint16:
		return UShort
	case []int32:
		return Int
	case []uint32:
		return UInt
	case []int64:
		return Long
	case []uint64:
		return ULong
	case []float32:
		return Float
	case []float64:
		return Double
	case []string:
		return String
	}
	return Invalid
}

// Make allocates a zeroed slice of n elements of type t.
func Make(t DataType, n int) (interface{}, error) {
	gt, err := t.GoType()
	if err != nil {
		return nil, err
	}
	return reflect.MakeSlice(reflect.SliceOf(gt), n, n).Interface(), nil
}

// Len returns the number of elements in a typed slice, or -1 if v is not a slice.
func Len(v interface{}) int {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return -1
	}
	return rv.Len()
}
