package granule

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/robert-malhotra/go-granule/dtype"
	"github.com/robert-malhotra/go-granule/internal/hyperslab"
	"github.com/robert-malhotra/go-granule/internal/metrics"
)

// ReadArray reads a (start, count, stride) region of a joined array. Count
// is the number of elements per dimension. The result is a flat row-major
// slice: the stored element type, the type a registered RangeProcessor
// returns, or []byte category codes for a quality flag without a processor.
func (a *Aggregation) ReadArray(name string, start, count, stride []int) (interface{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	begin := time.Now()
	out, nread, err := a.readArray(name, start, count, stride)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}

	ctx, _ := tag.New(context.Background(), tag.Upsert(metrics.Variable, name))
	stats.Record(ctx,
		metrics.Reads.M(1),
		metrics.GranuleReads.M(int64(nread)),
		metrics.Elements.M(int64(dtype.Len(out))),
		metrics.ReadLatency.M(metrics.SinceInMilliseconds(begin)),
	)
	return out, nil
}

// ReadFloat32 reads a region as float32 values.
func (a *Aggregation) ReadFloat32(name string, start, count, stride []int) ([]float32, error) {
	v, err := a.ReadArray(name, start, count, stride)
	if err != nil {
		return nil, err
	}
	return typed(dtype.ToFloat32(v))
}

// ReadFloat64 reads a region as float64 values.
func (a *Aggregation) ReadFloat64(name string, start, count, stride []int) ([]float64, error) {
	v, err := a.ReadArray(name, start, count, stride)
	if err != nil {
		return nil, err
	}
	return typed(dtype.ToFloat64(v))
}

// ReadInt16 reads a region as int16 values.
func (a *Aggregation) ReadInt16(name string, start, count, stride []int) ([]int16, error) {
	v, err := a.ReadArray(name, start, count, stride)
	if err != nil {
		return nil, err
	}
	return typed(dtype.ToInt16(v))
}

// ReadInt32 reads a region as int32 values.
func (a *Aggregation) ReadInt32(name string, start, count, stride []int) ([]int32, error) {
	v, err := a.ReadArray(name, start, count, stride)
	if err != nil {
		return nil, err
	}
	return typed(dtype.ToInt32(v))
}

// ReadBytes reads a region as bytes.
func (a *Aggregation) ReadBytes(name string, start, count, stride []int) ([]byte, error) {
	v, err := a.ReadArray(name, start, count, stride)
	if err != nil {
		return nil, err
	}
	return typed(dtype.ToBytes(v))
}

func typed[T any](v []T, err error) ([]T, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return v, nil
}

// readArray returns the joined values and the number of granule reads.
func (a *Aggregation) readArray(name string, start, count, stride []int) (interface{}, int, error) {
	agg, qf, err := a.lookup(name)
	if err != nil {
		return nil, 0, err
	}
	if !agg.typ.IsNumeric() {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnsupportedType, agg.typ)
	}
	plan, err := planRead(agg.local, agg.lengths, agg.inTrack, start, count, stride)
	if err != nil {
		return nil, 0, err
	}
	proc := a.processors[name]

	if len(plan) == 0 {
		typ := agg.typ
		if qf != nil && proc == nil {
			typ = dtype.UByte
		}
		empty, err := dtype.Make(typ, 0)
		return empty, 0, err
	}

	parts := make([]interface{}, 0, len(plan))
	shapes := make([][]int, 0, len(plan))
	for _, lr := range plan {
		raw, err := a.readLocal(agg, lr)
		if err != nil {
			return nil, 0, fmt.Errorf("granule %d: %w", lr.granule, err)
		}
		sub := Subset{Dims: agg.dims, Start: lr.start, Count: lr.count, Stride: lr.stride}
		out, err := process(proc, qf, lr.granule, raw, sub)
		if err != nil {
			return nil, 0, fmt.Errorf("granule %d: processing: %w", lr.granule, err)
		}
		n := 1
		for _, c := range lr.count {
			n *= c
		}
		if got := dtype.Len(out); got != n {
			return nil, 0, fmt.Errorf("%w: granule %d returned %d values, want %d", ErrShapeMismatch, lr.granule, got, n)
		}
		parts = append(parts, out)
		shapes = append(shapes, lr.count)
	}
	if len(parts) == 1 {
		return parts[0], 1, nil
	}
	out, _, err := hyperslab.ConcatValues(parts, shapes, agg.inTrack)
	if err != nil {
		return nil, 0, err
	}
	return out, len(parts), nil
}

// readLocal reads one granule's part of a read.
func (a *Aggregation) readLocal(agg *aggregate, lr localRead) (interface{}, error) {
	if !agg.cut[lr.granule] {
		return a.granules[lr.granule].ReadRange(agg.name, lr.start, lr.count, lr.stride)
	}
	d, err := a.splice(lr.granule, agg.name)
	if err != nil {
		return nil, err
	}
	sel := hyperslab.Selection{Start: lr.start, Count: lr.count, Stride: lr.stride}
	return hyperslab.ExtractValues(d.values, d.dims, sel)
}

// splice reads every valid scan run of a granule array and joins them.
func (a *Aggregation) splice(g int, name string) (*dense, error) {
	key := varKey{g, name}
	if a.cache != nil {
		if d, ok := a.cache.Get(key); ok {
			stats.Record(context.Background(), metrics.SpliceCacheHit.M(1))
			return d, nil
		}
	}

	desc := a.cat.entries[key]
	cr := a.cuts[g]
	rank := len(desc.lengths)
	parts := make([]interface{}, 0, len(cr.ranges))
	shapes := make([][]int, 0, len(cr.ranges))
	for _, r := range cr.ranges {
		start := make([]int, rank)
		count := append([]int(nil), desc.lengths...)
		stride := make([]int, rank)
		for i := range stride {
			stride[i] = 1
		}
		start[desc.inTrack] = r.Rows.First
		count[desc.inTrack] = r.Rows.Len()
		v, err := a.granules[g].ReadRange(name, start, count, stride)
		if err != nil {
			return nil, fmt.Errorf("reading rows %d-%d: %w", r.Rows.First, r.Rows.Last, err)
		}
		parts = append(parts, v)
		shapes = append(shapes, count)
	}

	d := &dense{}
	if len(parts) == 0 {
		values, err := dtype.Make(desc.typ, 0)
		if err != nil {
			return nil, err
		}
		d.values = values
		d.dims = append([]int(nil), desc.lengths...)
		d.dims[desc.inTrack] = 0
	} else {
		values, dims, err := hyperslab.ConcatValues(parts, shapes, desc.inTrack)
		if err != nil {
			return nil, err
		}
		d.values, d.dims = values, dims
	}

	ctx, _ := tag.New(context.Background(), tag.Upsert(metrics.Variable, name))
	stats.Record(ctx, metrics.SplicedReads.M(1))
	if a.cache != nil {
		a.cache.Add(key, d)
	}
	return d, nil
}

// process calibrates one granule's raw values.
func process(proc RangeProcessor, qf *QualityFlag, g int, raw interface{}, sub Subset) (interface{}, error) {
	if proc == nil {
		if qf != nil {
			return qf.Unpack(raw)
		}
		return raw, nil
	}
	if dim := proc.MultiScaleDim(); dim != "" {
		if k := sub.Index(dim); k >= 0 && sub.Count[k] > 1 {
			return proc.ProcessAlongMultiScaleDim(g, raw, sub)
		}
	}
	if qf != nil {
		return proc.ProcessRangeQualityFlag(g, raw, sub, *qf)
	}
	return proc.ProcessRange(g, raw, sub)
}
