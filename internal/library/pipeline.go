package library

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultFanOutLimit = 8

// fanOut runs fetch for every parent with at most limit calls in flight
// and returns the results in parent order. The first error cancels the
// remaining calls.
func fanOut[P, R any](ctx context.Context, limit int, parents []P, fetch func(context.Context, P) (R, error)) ([]R, error) {
	results := make([]R, len(parents))
	if len(parents) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, parent := range parents {
		g.Go(func() error {
			result, err := fetch(gctx, parent)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
