package granule

// Default dimension names used by Suomi NPP granules.
const (
	DefaultInTrackDim    = "Track"
	DefaultCrossTrackDim = "XTrack"
	DefaultFillThreshold = -90.0
)

// Option configures an Aggregation.
type Option func(*options)

type options struct {
	inTrackDim    string
	geoInTrackDim string
	crossTrackDim string
	edr           bool
	wanted        []string
	qualityFlags  []QualityFlag
	latitudeVar   string
	fillThreshold float64
	spliceCache   int
}

func defaultOptions() *options {
	return &options{
		inTrackDim:    DefaultInTrackDim,
		crossTrackDim: DefaultCrossTrackDim,
		fillThreshold: DefaultFillThreshold,
	}
}

// WithInTrackDim sets the name of the dimension granules are joined along.
func WithInTrackDim(name string) Option {
	return func(o *options) {
		if name != "" {
			o.inTrackDim = name
		}
	}
}

// WithGeoInTrackDim sets a separate in-track dimension name for latitude and
// longitude arrays. By default they use the in-track dimension.
func WithGeoInTrackDim(name string) Option {
	return func(o *options) {
		o.geoInTrackDim = name
	}
}

// WithCrossTrackDim sets the name of the cross-track dimension.
func WithCrossTrackDim(name string) Option {
	return func(o *options) {
		if name != "" {
			o.crossTrackDim = name
		}
	}
}

// WithEDR marks the granules as EDR products, which may contain fill scans
// that are cut out of every read.
func WithEDR(edr bool) Option {
	return func(o *options) {
		o.edr = edr
	}
}

// WithVariables restricts the catalog to arrays whose name contains one of
// the given substrings.
func WithVariables(substrings ...string) Option {
	return func(o *options) {
		o.wanted = append(o.wanted, substrings...)
	}
}

// WithQualityFlags registers quality flags derived from packed arrays.
func WithQualityFlags(flags ...QualityFlag) Option {
	return func(o *options) {
		o.qualityFlags = append(o.qualityFlags, flags...)
	}
}

// WithLatitudeVariable names the latitude array scanned for fill scans.
// When unset, the first cataloged array ending in "Latitude" is used.
func WithLatitudeVariable(name string) Option {
	return func(o *options) {
		o.latitudeVar = name
	}
}

// WithFillThreshold sets the latitude below which a scan line is fill.
func WithFillThreshold(degrees float64) Option {
	return func(o *options) {
		o.fillThreshold = degrees
	}
}

// WithSpliceCache keeps up to n reconstructed granule arrays for EDR reads.
// Zero disables the cache.
func WithSpliceCache(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.spliceCache = n
		}
	}
}
