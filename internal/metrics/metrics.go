// Package metrics defines the opencensus measures recorded by granule reads.
package metrics

import (
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Tags
var (
	Variable, _ = tag.NewKey("variable")
)

// Measures
var (
	Reads          = stats.Int64("granule/reads", "Aggregate array reads", stats.UnitDimensionless)
	GranuleReads   = stats.Int64("granule/granule_reads", "Per-granule range reads", stats.UnitDimensionless)
	SplicedReads   = stats.Int64("granule/spliced_reads", "Granule arrays rebuilt around fill scans", stats.UnitDimensionless)
	SpliceCacheHit = stats.Int64("granule/splice_cache_hits", "Rebuilt granule arrays served from cache", stats.UnitDimensionless)
	Elements       = stats.Int64("granule/elements", "Elements returned by aggregate reads", stats.UnitDimensionless)
	ReadLatency    = stats.Float64("granule/read_latency", "Aggregate read latency", stats.UnitMilliseconds)
)

var defaultMillisecondsDistribution = view.Distribution(0.1, 0.5, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000)

// Views
var (
	ReadsView = &view.View{
		Measure:     Reads,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Variable},
	}
	GranuleReadsView = &view.View{
		Measure:     GranuleReads,
		Aggregation: view.Sum(),
		TagKeys:     []tag.Key{Variable},
	}
	SplicedReadsView = &view.View{
		Measure:     SplicedReads,
		Aggregation: view.Sum(),
		TagKeys:     []tag.Key{Variable},
	}
	SpliceCacheHitView = &view.View{
		Measure:     SpliceCacheHit,
		Aggregation: view.Sum(),
	}
	ElementsView = &view.View{
		Measure:     Elements,
		Aggregation: view.Sum(),
		TagKeys:     []tag.Key{Variable},
	}
	ReadLatencyView = &view.View{
		Measure:     ReadLatency,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{Variable},
	}
)

// Views holds every view for registration with view.Register.
var Views = []*view.View{
	ReadsView,
	GranuleReadsView,
	SplicedReadsView,
	SpliceCacheHitView,
	ElementsView,
	ReadLatencyView,
}

// SinceInMilliseconds returns the time elapsed since start in milliseconds.
func SinceInMilliseconds(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
