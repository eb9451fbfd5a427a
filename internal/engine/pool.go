package engine

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Future is a handle to a submitted task's eventual result: a blocking
// Get() yields the result once the task completes.
type Future interface {
	// Get blocks until the task completes and returns its result, or the
	// error that caused it to fail.
	Get() (int, error)
}

// Pool is the worker abstraction the pipeline submits batches to. A
// single-worker configuration uses InlinePool, which runs each task
// synchronously on the caller's goroutine instead of paying for real
// concurrency.
type Pool interface {
	// Submit schedules fn for execution and returns a Future for its
	// result. fn's error return is treated as fatal: the first error
	// from any task cancels the pool's context, causing subsequent and
	// in-flight Submit/Get calls to fail fast.
	Submit(fn func(ctx context.Context) (int, error)) Future
	// Close waits for all outstanding tasks to finish and releases
	// resources. Safe to call once, after the last Submit.
	Close()
}

type inlineFuture struct {
	result int
	err    error
}

func (f inlineFuture) Get() (int, error) { return f.result, f.err }

// InlinePool runs every submitted task synchronously, in Submit itself.
// Once a task has failed, later Submit calls return that error without
// running their task.
type InlinePool struct {
	ctx context.Context
	err error
}

// NewInlinePool returns a Pool that executes tasks inline on the
// submitting goroutine.
func NewInlinePool(ctx context.Context) *InlinePool {
	return &InlinePool{ctx: ctx}
}

func (p *InlinePool) Submit(fn func(ctx context.Context) (int, error)) Future {
	if p.err != nil {
		return inlineFuture{err: p.err}
	}
	n, err := fn(p.ctx)
	if err != nil {
		p.err = err
	}
	return inlineFuture{result: n, err: err}
}

func (p *InlinePool) Close() {}

type threadFuture struct {
	done   chan struct{}
	result int
	err    error
}

func (f *threadFuture) Get() (int, error) {
	<-f.done
	return f.result, f.err
}

// ThreadPool runs submitted tasks on a bounded number of goroutines,
// using a weighted semaphore to cap concurrency and a cancelable context
// to translate the first worker error into a fast-failing stop for every
// other in-flight and future task.
type ThreadPool struct {
	sem     *semaphore.Weighted
	workers int64
	ctx     context.Context
	cancel  context.CancelCauseFunc
}

// NewThreadPool returns a Pool bounding concurrency to workers.
func NewThreadPool(parent context.Context, workers int) *ThreadPool {
	ctx, cancel := context.WithCancelCause(parent)
	return &ThreadPool{
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: int64(workers),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Err returns the first error reported by any task submitted to this
// pool, or nil if none has failed (or a plain context cancellation came
// from outside the pool).
func (p *ThreadPool) Err() error {
	if err := context.Cause(p.ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (p *ThreadPool) Submit(fn func(ctx context.Context) (int, error)) Future {
	f := &threadFuture{done: make(chan struct{})}

	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		f.err = err
		close(f.done)
		return f
	}

	go func() {
		defer p.sem.Release(1)
		defer close(f.done)
		n, err := fn(p.ctx)
		f.result, f.err = n, err
		if err != nil {
			p.cancel(err)
		}
	}()
	return f
}

// Close blocks until every in-flight task has released its semaphore
// slot, then cancels the pool's context. Uses a background context for
// the wait itself so a task error that already canceled p.ctx doesn't
// make Close return before its goroutines actually finish.
func (p *ThreadPool) Close() {
	_ = p.sem.Acquire(context.Background(), p.workers)
	p.cancel(nil)
}
