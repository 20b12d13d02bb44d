// Package async provides generic helpers for running work concurrently.
//
// Future holds the eventual result of a computation started with Async.
// Callers wait with Await or AwaitWithTimeout, or poll with IsComplete.
// WaitAll collects several futures and joins their errors.
//
// Pool bounds fire-and-forget work: Submit returns immediately, tasks run
// with at most the configured concurrency and a per-task timeout, and Close
// stops intake and waits for what is already running.
//
//	pool := async.NewPool(16, 15*time.Second)
//	async.Submit(pool, ctx, func(ctx context.Context) (struct{}, error) {
//		return struct{}{}, channel.Send(ctx, n)
//	})
//	...
//	_ = pool.Close(shutdownCtx)
//
// Panics inside tasks are recovered and reported as errors wrapping ErrPanic.
package async
