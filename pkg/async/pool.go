package async

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Pool runs fire-and-forget tasks with bounded concurrency and a per-task
// timeout. At most limit tasks run and at most backlog more wait for a slot;
// Submit never blocks and fails with ErrPoolSaturated beyond that.
type Pool struct {
	slots   chan struct{} // running + waiting
	sem     chan struct{} // running
	timeout time.Duration

	wg       sync.WaitGroup
	mu       sync.Mutex // guards closed together with wg.Add
	closed   bool
	inFlight atomic.Int64
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	backlog int
}

// WithBacklog lets up to n tasks wait for a running slot. Negative values
// are ignored.
func WithBacklog(n int) PoolOption {
	return func(c *poolConfig) {
		if n >= 0 {
			c.backlog = n
		}
	}
}

// NewPool creates a pool running at most limit tasks at once. Each task gets
// a context bounded by timeout; zero disables the bound.
func NewPool(limit int, timeout time.Duration, opts ...PoolOption) *Pool {
	if limit <= 0 {
		limit = 1
	}
	var cfg poolConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pool{
		slots:   make(chan struct{}, limit+cfg.backlog),
		sem:     make(chan struct{}, limit),
		timeout: timeout,
	}
}

// Submit schedules fn on p. The task context does not inherit cancellation
// from ctx, only its values, so stopping a caller loop does not abort
// deliveries already handed off. A rejected task returns a completed future
// holding ErrPoolClosed or ErrPoolSaturated.
func Submit[U any](p *Pool, ctx context.Context, fn func(context.Context) (U, error)) *Future[U] {
	f := newFuture[U]()
	var zero U

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		f.complete(zero, ErrPoolClosed)
		return f
	}
	select {
	case p.slots <- struct{}{}:
	default:
		p.mu.Unlock()
		f.complete(zero, ErrPoolSaturated)
		return f
	}
	p.wg.Add(1)
	p.mu.Unlock()

	p.inFlight.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Add(-1)
		defer func() { <-p.slots }()

		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		taskCtx := context.WithoutCancel(ctx)
		if p.timeout > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(taskCtx, p.timeout)
			defer cancel()
		}

		res, err := call(taskCtx, struct{}{}, func(ctx context.Context, _ struct{}) (U, error) {
			return fn(ctx)
		})
		f.complete(res, err)
	}()

	return f
}

// InFlight returns the number of submitted tasks that have not finished,
// including those waiting for a slot.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Close rejects further submissions and blocks until every submitted task
// has finished or ctx is done. Safe to call more than once.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reopen accepts submissions again after a Close that returned nil.
func (p *Pool) Reopen() {
	p.mu.Lock()
	p.closed = false
	p.mu.Unlock()
}
