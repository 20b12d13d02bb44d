package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()
		f := async.Async(context.Background(), 21, func(_ context.Context, v int) (int, error) {
			return v * 2, nil
		})
		res, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, res)
		assert.True(t, f.IsComplete())
	})

	t.Run("pre-cancelled context skips fn", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var called atomic.Bool
		f := async.Async(ctx, 0, func(context.Context, int) (int, error) {
			called.Store(true)
			return 1, nil
		})
		_, err := f.Await()
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})

	t.Run("recovers panic", func(t *testing.T) {
		t.Parallel()
		f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			panic("boom")
		})
		_, err := f.Await()
		require.ErrorIs(t, err, async.ErrPanic)
	})

	t.Run("await with timeout", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			<-release
			return 1, nil
		})

		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		require.ErrorIs(t, err, async.ErrTimeout)
		assert.False(t, f.IsComplete())

		close(release)
		res, err := f.AwaitWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, res)
	})
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	errOdd := errors.New("odd")
	futures := make([]*async.Future[string], 0, 4)
	for i := range 4 {
		futures = append(futures, async.Async(context.Background(), i, func(_ context.Context, v int) (string, error) {
			if v%2 == 1 {
				return "", fmt.Errorf("%d: %w", v, errOdd)
			}
			return fmt.Sprint(v), nil
		}))
	}

	results, err := async.WaitAll(futures...)
	require.ErrorIs(t, err, errOdd)
	assert.Equal(t, []string{"0", "", "2", ""}, results)

	results, err = async.WaitAll[string]()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("bounds concurrency", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(2, 0, async.WithBacklog(6))

		var active, peak atomic.Int32
		futures := make([]*async.Future[struct{}], 0, 8)
		for range 8 {
			futures = append(futures, async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
				cur := active.Add(1)
				for {
					prev := peak.Load()
					if cur <= prev || peak.CompareAndSwap(prev, cur) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				active.Add(-1)
				return struct{}{}, nil
			}))
		}

		_, err := async.WaitAll(futures...)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
		assert.Equal(t, 0, pool.InFlight())
	})

	t.Run("rejects beyond backlog", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(2, 0, async.WithBacklog(3))
		release := make(chan struct{})

		var accepted []*async.Future[struct{}]
		rejected := 0
		for range 20 {
			f := async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
				<-release
				return struct{}{}, nil
			})
			if f.IsComplete() {
				_, err := f.Await()
				require.ErrorIs(t, err, async.ErrPoolSaturated)
				rejected++
				continue
			}
			accepted = append(accepted, f)
		}

		assert.Len(t, accepted, 5)
		assert.Equal(t, 15, rejected)
		assert.Equal(t, 5, pool.InFlight())

		close(release)
		_, err := async.WaitAll(accepted...)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return pool.InFlight() == 0 }, time.Second, time.Millisecond)

		_, err = async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
			return struct{}{}, nil
		}).Await()
		require.NoError(t, err, "slots are released after tasks finish")
	})

	t.Run("applies task timeout", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(1, 10*time.Millisecond)
		f := async.Submit(pool, context.Background(), func(ctx context.Context) (struct{}, error) {
			<-ctx.Done()
			return struct{}{}, ctx.Err()
		})
		_, err := f.AwaitWithTimeout(time.Second)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("caller cancellation does not abort task", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(1, 0)
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		f := async.Submit(pool, ctx, func(ctx context.Context) (struct{}, error) {
			close(started)
			time.Sleep(10 * time.Millisecond)
			return struct{}{}, ctx.Err()
		})
		<-started
		cancel()

		_, err := f.Await()
		require.NoError(t, err)
	})

	t.Run("close waits and rejects", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(4, 0)
		var finished atomic.Int32
		for range 3 {
			async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
				time.Sleep(5 * time.Millisecond)
				finished.Add(1)
				return struct{}{}, nil
			})
		}

		require.NoError(t, pool.Close(context.Background()))
		assert.Equal(t, int32(3), finished.Load())
		require.NoError(t, pool.Close(context.Background()))

		_, err := async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
			return struct{}{}, nil
		}).Await()
		require.ErrorIs(t, err, async.ErrPoolClosed)

		pool.Reopen()
		_, err = async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
			return struct{}{}, nil
		}).Await()
		require.NoError(t, err)
	})

	t.Run("close honours context", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(1, 0)
		release := make(chan struct{})
		t.Cleanup(func() { close(release) })
		async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
			<-release
			return struct{}{}, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, pool.Close(ctx), context.DeadlineExceeded)
	})

	t.Run("recovers task panic", func(t *testing.T) {
		t.Parallel()
		pool := async.NewPool(1, 0)
		_, err := async.Submit(pool, context.Background(), func(context.Context) (struct{}, error) {
			panic("boom")
		}).Await()
		require.ErrorIs(t, err, async.ErrPanic)
	})
}
