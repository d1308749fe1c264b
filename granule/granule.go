// Package granule presents a time-ordered list of satellite granule files as
// one array per variable, joined along the in-track dimension.
//
// An Aggregation is built once from open granules. It catalogs the arrays
// every granule shares, optionally finds fill scans embedded in EDR
// granules, and serves rectangular (start, count, stride) reads against the
// joined arrays by translating them into per-granule reads.
package granule

import (
	"fmt"

	"github.com/robert-malhotra/go-granule/dtype"
)

// Granule is one open granule file.
type Granule interface {
	// VariableNames lists the arrays in the granule.
	VariableNames() []string

	DimensionNames(name string) ([]string, error)
	DimensionLengths(name string) ([]int, error)
	ElementType(name string) (dtype.DataType, error)

	// ReadRange reads a rectangular region of an array. Count is the number
	// of elements per dimension. The result is a flat row-major typed slice.
	ReadRange(name string, start, count, stride []int) (interface{}, error)

	// FindAttribute returns an attribute of an array, or ErrNotFound.
	FindAttribute(name, attr string) (*Attribute, error)

	Close() error
}

// Attribute is a named attribute value: a numeric slice or a string.
type Attribute struct {
	Name  string
	Value interface{}
}

// NewAttribute normalizes a scalar or slice attribute value.
func NewAttribute(name string, value interface{}) *Attribute {
	switch v := value.(type) {
	case int8:
		value = []int8{v}
	case uint8:
		value = []uint8{v}
	case int16:
		value = []int16{v}
	case uint16:
		value = []uint16{v}
	case int32:
		value = []int32{v}
	case uint32:
		value = []uint32{v}
	case int64:
		value = []int64{v}
	case uint64:
		value = []uint64{v}
	case int:
		value = []int64{int64(v)}
	case float32:
		value = []float32{v}
	case float64:
		value = []float64{v}
	case []string:
		if len(v) == 1 {
			value = v[0]
		}
	}
	return &Attribute{Name: name, Value: value}
}

// Type returns the element type of the attribute value.
func (a *Attribute) Type() dtype.DataType {
	if _, ok := a.Value.(string); ok {
		return dtype.String
	}
	return dtype.Of(a.Value)
}

// ReadFloat64 reads the attribute as float64 values.
func (a *Attribute) ReadFloat64() ([]float64, error) {
	return dtype.ToFloat64(a.Value)
}

// ReadFloat32 reads the attribute as float32 values.
func (a *Attribute) ReadFloat32() ([]float32, error) {
	return dtype.ToFloat32(a.Value)
}

// ReadInt32 reads the attribute as int32 values.
func (a *Attribute) ReadInt32() ([]int32, error) {
	return dtype.ToInt32(a.Value)
}

// ReadInt16 reads the attribute as int16 values.
func (a *Attribute) ReadInt16() ([]int16, error) {
	return dtype.ToInt16(a.Value)
}

// ReadString reads the attribute as a string.
func (a *Attribute) ReadString() (string, error) {
	s, ok := a.Value.(string)
	if !ok {
		return "", fmt.Errorf("attribute %q is %T, not a string", a.Name, a.Value)
	}
	return s, nil
}

// ReadScalarFloat64 reads the first value of a numeric attribute.
func (a *Attribute) ReadScalarFloat64() (float64, error) {
	vals, err := a.ReadFloat64()
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("attribute %q is empty", a.Name)
	}
	return vals[0], nil
}
