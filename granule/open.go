package granule

import (
	"context"
	"fmt"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Opener opens the granule stored at path.
type Opener func(path string) (Granule, error)

// OpenAll opens granule files in parallel and returns them in path order.
// If any open fails, the granules already opened are closed.
func OpenAll(ctx context.Context, paths []string, open Opener) ([]Granule, error) {
	if len(paths) == 0 {
		return nil, ErrNoGranules
	}
	granules := make([]Granule, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g, err := open(path)
			if err != nil {
				return fmt.Errorf("opening granule %s: %w", path, err)
			}
			granules[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		var result *multierror.Error
		result = multierror.Append(result, err)
		for _, g := range granules {
			if g == nil {
				continue
			}
			if cerr := g.Close(); cerr != nil {
				result = multierror.Append(result, cerr)
			}
		}
		return nil, result.ErrorOrNil()
	}
	log.Debugw("opened granules", "count", len(granules))
	return granules, nil
}

// Open opens granule files and builds an aggregation over them.
func Open(ctx context.Context, paths []string, open Opener, opts ...Option) (*Aggregation, error) {
	granules, err := OpenAll(ctx, paths, open)
	if err != nil {
		return nil, err
	}
	a, err := New(granules, opts...)
	if err != nil {
		for _, g := range granules {
			g.Close()
		}
		return nil, err
	}
	return a, nil
}
