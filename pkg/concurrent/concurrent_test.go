package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/movingmnist/pkg/sequence"
)

func TestParallelMap_PreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}

	out, err := ParallelMap(context.Background(), sequence.From(in), 8, func(_ context.Context, v int) (int, error) {
		// Later elements finish first.
		time.Sleep(time.Duration(100-v) * 10 * time.Microsecond)
		return v * v, nil
	})
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestParallelMap_BoundsWorkers(t *testing.T) {
	var running, peak atomic.Int32
	_, err := ParallelMap(context.Background(), sequence.Repeat(0, 64), 3, func(_ context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestParallelMap_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	out, err := ParallelMap(context.Background(), sequence.From([]int{1, 2, 3, 4}), 2, func(_ context.Context, v int) (int, error) {
		if v == 3 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

func TestParallelMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := ParallelMap(ctx, sequence.Repeat(1, 10), 2, func(_ context.Context, v int) (int, error) {
		calls.Add(1)
		return v, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
