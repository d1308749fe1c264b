package granule

import "errors"

// Common errors
var (
	ErrNoGranules      = errors.New("no granules to aggregate")
	ErrClosed          = errors.New("aggregation is closed")
	ErrUnknownArray    = errors.New("unknown array")
	ErrNotFound        = errors.New("not found")
	ErrUnsupportedType = errors.New("unsupported element type")
	ErrNegativeCount   = errors.New("negative count")
	ErrInvalidStride   = errors.New("stride must be positive")
	ErrRank            = errors.New("selection rank does not match array rank")
	ErrOutOfRange      = errors.New("selection out of range")
	ErrShapeMismatch   = errors.New("granules disagree on array shape or type")
	ErrTypeMismatch    = errors.New("array type does not match requested type")
	ErrUnsupported     = errors.New("unsupported operation")
)
