package async

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

func newFuture[U any]() *Future[U] {
	return &Future[U]{done: make(chan struct{})}
}

func (f *Future[U]) complete(result U, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Await waits for the computation to complete and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits at most timeout and returns ErrTimeout if the
// computation has not completed by then.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// Done is closed when the computation completes.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports without blocking whether the computation has completed.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async runs fn in its own goroutine and returns a Future for its result.
// A pre-cancelled ctx completes the future with ctx.Err() without calling fn.
// A panic in fn completes the future with an error wrapping ErrPanic.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := newFuture[U]()

	go func() {
		var zero U
		if err := ctx.Err(); err != nil {
			f.complete(zero, err)
			return
		}
		res, err := call(ctx, param, fn)
		f.complete(res, err)
	}()

	return f
}

func call[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) (res U, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero U
			res, err = zero, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(ctx, param)
}

// WaitAll waits for every future and returns all results in order together
// with the joined errors of the futures that failed.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var errs []error

	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}
