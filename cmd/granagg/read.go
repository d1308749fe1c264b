package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/source/classic"
)

type readFlags struct {
	variable string
	start    []int
	count    []int
	stride   []int
	raw      bool
	out      string
}

func newReadCmd(f *rootFlags) *cobra.Command {
	r := &readFlags{}
	cmd := &cobra.Command{
		Use:   "read [granule...]",
		Short: "Read a slab of an aggregated array",
		Long: `read reads a (start, count, stride) slab of an aggregated array and prints
summary statistics, the values themselves, or writes them to a NetCDF file.
Unset start, count and stride select the whole array.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&r.variable, "var", "v", "", "array or quality flag to read")
	fl.IntSliceVar(&r.start, "start", nil, "start index per dimension")
	fl.IntSliceVar(&r.count, "count", nil, "element count per dimension")
	fl.IntSliceVar(&r.stride, "stride", nil, "stride per dimension")
	fl.BoolVar(&r.raw, "raw", false, "print every value")
	fl.StringVarP(&r.out, "out", "o", "", "write the slab to a NetCDF classic file")
	cmd.MarkFlagRequired("var")
	return cmd
}

// selection fills in the unset parts of the requested slab.
func (r *readFlags) selection(lengths []int) (start, count, stride []int, err error) {
	n := len(lengths)
	start, count, stride = r.start, r.count, r.stride
	if start == nil {
		start = make([]int, n)
	}
	if stride == nil {
		stride = make([]int, n)
		for i := range stride {
			stride[i] = 1
		}
	}
	if count == nil {
		if len(start) != n || len(stride) != n {
			return nil, nil, nil, fmt.Errorf("array has %d dimensions", n)
		}
		count = make([]int, n)
		for i := range count {
			if stride[i] > 0 && start[i] < lengths[i] {
				count[i] = (lengths[i] - start[i] + stride[i] - 1) / stride[i]
			}
		}
	}
	return start, count, stride, nil
}

func (r *readFlags) run(cmd *cobra.Command, f *rootFlags, args []string) error {
	a, err := f.open(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	lengths, err := a.DimensionLengths(r.variable)
	if err != nil {
		return err
	}
	start, count, stride, err := r.selection(lengths)
	if err != nil {
		return err
	}
	values, err := a.ReadArray(r.variable, start, count, stride)
	if err != nil {
		return err
	}
	log.Debugw("read slab", "var", r.variable, "start", start, "count", count, "stride", stride, "type", dtype.Of(values))

	out := cmd.OutOrStdout()
	if r.out != "" {
		dims, err := a.DimensionNames(r.variable)
		if err != nil {
			return err
		}
		if err := writeSlab(r.out, r.variable, dims, count, values); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %d values to %s\n", dtype.Len(values), r.out)
		return nil
	}
	if r.raw {
		fmt.Fprintln(out, values)
		return nil
	}

	s, err := summarize(values)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s shape %v: %d values, %d valid", r.variable, dtype.Of(values), count, s.n, s.valid)
	if s.valid > 0 {
		fmt.Fprintf(out, ", min %g max %g mean %g", s.min, s.max, s.mean)
	}
	fmt.Fprintln(out)
	return nil
}

type summary struct {
	n, valid       int
	min, max, mean float64
}

func summarize(values interface{}) (summary, error) {
	vals, err := dtype.ToFloat64(values)
	if err != nil {
		return summary{}, err
	}
	s := summary{n: len(vals), min: math.Inf(1), max: math.Inf(-1)}
	sum := 0.0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		s.valid++
		sum += v
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	if s.valid > 0 {
		s.mean = sum / float64(s.valid)
	}
	return s, nil
}

// writeSlab writes values to a NetCDF classic file, widening element types
// the format cannot store.
func writeSlab(path, name string, dims []string, count []int, values interface{}) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	switch values.(type) {
	case []int8, []int16, []int32, []float32, []float64:
	case []uint8:
		if values, err = dtype.Convert[int16](values); err != nil {
			return err
		}
	case []uint16:
		if values, err = dtype.Convert[int32](values); err != nil {
			return err
		}
	default:
		if values, err = dtype.ToFloat64(values); err != nil {
			return err
		}
	}

	// slab dimensions may not keep the lengths they have in the granules
	slabDims := make([]string, len(dims))
	for i, d := range dims {
		slabDims[i] = fmt.Sprintf("%s_%d", d, count[i])
	}
	return classic.Create(path, []classic.Array{{
		Name:    strings.ReplaceAll(name, "/", "_"),
		Dims:    slabDims,
		Lengths: count,
		Values:  values,
	}}, map[string]interface{}{"source": "granagg"})
}
