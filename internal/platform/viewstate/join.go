package viewstate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pair is the joined result of two queries.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Both runs fa and fb concurrently and returns once both have settled. If
// either fails the join fails with the first error; no partial result is
// returned.
func Both[A, B any](ctx context.Context, fa func(context.Context) (A, error), fb func(context.Context) (B, error)) (Pair[A, B], error) {
	var (
		a A
		b B
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = fa(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = fb(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Pair[A, B]{}, err
	}
	return Pair[A, B]{First: a, Second: b}, nil
}
