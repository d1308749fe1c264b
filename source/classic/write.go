package classic

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/qri-io/dataset/compression"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/granule"
)

// Array is an array to write.
type Array struct {
	Name    string
	Dims    []string
	Lengths []int
	// Values is a flat row-major slice of int8, int16, int32, float32
	// or float64.
	Values     interface{}
	Attributes map[string]interface{}
}

func writable(v interface{}) bool {
	switch v.(type) {
	case []int8, []int16, []int32, []float32, []float64:
		return true
	}
	return false
}

// template returns a one-element slice of the same type as values.
func template(values interface{}) interface{} {
	rv := reflect.MakeSlice(reflect.TypeOf(values), 1, 1)
	return rv.Interface()
}

func header(arrays []Array, global map[string]interface{}) (*cdf.Header, error) {
	var dims []string
	lengths := make(map[string]int)
	for _, a := range arrays {
		if len(a.Dims) != len(a.Lengths) {
			return nil, fmt.Errorf("array %q: %d dimension names for %d lengths", a.Name, len(a.Dims), len(a.Lengths))
		}
		if !writable(a.Values) {
			return nil, fmt.Errorf("%w: array %q of %T", granule.ErrUnsupportedType, a.Name, a.Values)
		}
		n := 1
		for i, d := range a.Dims {
			n *= a.Lengths[i]
			if l, ok := lengths[d]; ok {
				if l != a.Lengths[i] {
					return nil, fmt.Errorf("dimension %q: length %d in %q, %d elsewhere", d, a.Lengths[i], a.Name, l)
				}
				continue
			}
			lengths[d] = a.Lengths[i]
			dims = append(dims, d)
		}
		if got := dtype.Len(a.Values); got != n {
			return nil, fmt.Errorf("array %q: %d values for lengths %v", a.Name, got, a.Lengths)
		}
	}

	dimLengths := make([]int, len(dims))
	for i, d := range dims {
		dimLengths[i] = lengths[d]
	}
	h := cdf.NewHeader(dims, dimLengths)

	if err := addAttributes(h, "", global); err != nil {
		return nil, err
	}
	for _, a := range arrays {
		h.AddVariable(a.Name, a.Dims, template(a.Values))
		if err := addAttributes(h, a.Name, a.Attributes); err != nil {
			return nil, err
		}
	}
	h.Define()
	return h, nil
}

func addAttributes(h *cdf.Header, name string, attrs map[string]interface{}) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := granule.NewAttribute(k, attrs[k]).Value
		if _, ok := v.(string); !ok && !writable(v) {
			return fmt.Errorf("%w: attribute %q of %q is %T", granule.ErrUnsupportedType, k, name, v)
		}
		h.AddAttribute(name, k, v)
	}
	return nil
}

func write(rw cdf.ReaderWriterAt, arrays []Array, global map[string]interface{}) error {
	h, err := header(arrays, global)
	if err != nil {
		return err
	}
	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, a := range arrays {
		begin := make([]int, len(a.Lengths))
		w := f.Writer(a.Name, begin, a.Lengths)
		if _, err := w.Write(a.Values); err != nil {
			return fmt.Errorf("writing array %q: %w", a.Name, err)
		}
	}
	return cdf.UpdateNumRecs(rw)
}

// Create writes arrays to a new NetCDF classic file. A .gz or .zst suffix
// compresses the file.
func Create(path string, arrays []Array, global map[string]interface{}) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	format := compressionFormat(path)
	if format == "" {
		return write(out, arrays, global)
	}

	buf := &buffer{}
	if err := write(buf, arrays, global); err != nil {
		return err
	}
	w, err := compression.Compressor(format, out)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	if _, err := w.Write(buf.data); err != nil {
		w.Close()
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	return w.Close()
}
