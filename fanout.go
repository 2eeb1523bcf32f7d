package meridian

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FanOutDelete issues one delete call per item as independent parallel
// requests with no cross-call dependency and returns the first failure.
// Providers use it to implement the bulk delete operations.
func FanOutDelete[T any](ctx context.Context, items []T, del func(context.Context, T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, item := range items {
		item := item
		g.Go(func() error {
			return del(ctx, item)
		})
	}

	return g.Wait()
}
