package granule

import "fmt"

// localRead is the part of a read served by one granule.
type localRead struct {
	granule int
	start   []int
	// extent is the index span each axis covers, count×stride away from
	// the in-track axis, as the file layer receives it.
	extent []int
	count  []int
	stride []int
}

func validateSelection(lengths []int, start, count, stride []int) error {
	rank := len(lengths)
	if len(start) != rank || len(count) != rank || len(stride) != rank {
		return fmt.Errorf("%w: got (%d,%d,%d), want %d", ErrRank, len(start), len(count), len(stride), rank)
	}
	for d := 0; d < rank; d++ {
		if count[d] < 0 {
			return fmt.Errorf("%w: count %d on axis %d", ErrNegativeCount, count[d], d)
		}
		if stride[d] < 1 {
			return fmt.Errorf("%w: stride %d on axis %d", ErrInvalidStride, stride[d], d)
		}
		if start[d] < 0 {
			return fmt.Errorf("%w: start %d on axis %d", ErrOutOfRange, start[d], d)
		}
	}
	for d := 0; d < rank; d++ {
		if count[d] == 0 {
			continue
		}
		if last := start[d] + (count[d]-1)*stride[d]; last >= lengths[d] {
			return fmt.Errorf("%w: last index %d on axis %d, length %d", ErrOutOfRange, last, d, lengths[d])
		}
	}
	return nil
}

// planRead splits a read of the joined array into per-granule reads.
// local holds each granule's in-track length; lengths the joined lengths.
// A read selecting no elements yields an empty plan.
func planRead(local, lengths []int, inTrack int, start, count, stride []int) ([]localRead, error) {
	if err := validateSelection(lengths, start, count, stride); err != nil {
		return nil, err
	}
	for _, c := range count {
		if c == 0 {
			return nil, nil
		}
	}

	s := stride[inTrack]
	lo := start[inTrack]
	hi := lo + (count[inTrack]-1)*s
	span := count[inTrack] * s

	cum := make([]int, len(local))
	total := 0
	for g, l := range local {
		if l < 0 {
			return nil, fmt.Errorf("%w: granule %d in-track length %d", ErrNegativeCount, g, l)
		}
		total += l
		cum[g] = total
	}
	loG, hiG := -1, -1
	for g := range cum {
		if loG < 0 && cum[g] > lo {
			loG = g
		}
		if cum[g] > hi {
			hiG = g
			break
		}
	}
	if loG < 0 || hiG < 0 {
		return nil, fmt.Errorf("%w: in-track index %d, length %d", ErrOutOfRange, hi, total)
	}

	plan := make([]localRead, 0, hiG-loG+1)
	for g := loG; g <= hiG; g++ {
		base := 0
		if g > 0 {
			base = cum[g-1]
		}
		lr := localRead{
			granule: g,
			start:   make([]int, len(start)),
			extent:  make([]int, len(start)),
			count:   make([]int, len(start)),
			stride:  append([]int(nil), stride...),
		}
		for d := range start {
			if d == inTrack {
				continue
			}
			lr.start[d] = start[d]
			lr.extent[d] = count[d] * stride[d]
			lr.count[d] = count[d]
		}

		var localStart, extent int
		switch {
		case g == loG:
			localStart = lo - base
			if g == hiG {
				extent = span
			} else {
				extent = local[g] - localStart
			}
		default:
			// first index of this granule on the requested stride
			localStart = (s - (base-lo)%s) % s
			if g == hiG {
				extent = lo + span - base - localStart
				if c := local[g] - localStart; c < extent {
					extent = c
				}
			} else {
				extent = local[g] - localStart
				if extent <= 0 {
					// the stride steps over this granule
					continue
				}
			}
		}
		if extent < 0 {
			return nil, fmt.Errorf("%w: granule %d in-track extent %d", ErrNegativeCount, g, extent)
		}
		lr.start[inTrack] = localStart
		lr.extent[inTrack] = extent
		lr.count[inTrack] = (extent + s - 1) / s
		if lr.count[inTrack] == 0 {
			continue
		}
		plan = append(plan, lr)
	}
	return plan, nil
}
