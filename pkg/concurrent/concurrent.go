package concurrent

import (
	"context"
	"runtime"

	"github.com/zeusync/movingmnist/pkg/sequence"
	"golang.org/x/sync/errgroup"
)

// ParallelMap applies mapFn to each element of the iterator on at most workers
// goroutines, preserving input order in the result. A non-positive workers count
// means runtime.NumCPU(). The first error cancels the context passed to the
// remaining calls and is returned; elements not yet started are skipped.
func ParallelMap[T any, R any](
	ctx context.Context,
	i *sequence.Iterator[T],
	workers int,
	mapFn func(context.Context, T) (R, error),
) ([]R, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	in := i.Collect()
	out := make([]R, len(in))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, val := range in {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := mapFn(gctx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
