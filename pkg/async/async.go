package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the eventual result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	once   sync.Once
	done   chan struct{}
}

// Await blocks until the computation completes and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout blocks until the computation completes or the timeout elapses.
// On timeout it returns the zero value and ErrTimeout; the underlying goroutine
// keeps running and its result is still available through a later Await.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async runs fn in its own goroutine and returns a Future for its result.
// If ctx is already cancelled the Future completes immediately with ctx.Err().
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine leak when context is pre-canceled
		select {
		case <-ctx.Done():
			var zero U
			f.err = ctx.Err()
			f.result = zero
			return
		default:
		}

		res, err := fn(ctx, param)

		f.once.Do(func() {
			f.result = res
			f.err = err
		})
	}()

	return f
}

// SettleAll waits for every future to complete, sharing one deadline across
// all of them. Unlike a short-circuiting join it never stops early: each
// future's result and error are collected independently, index-aligned with
// the input. Futures still running once the deadline passes are settled with
// ErrTimeout without waiting for the stragglers.
func SettleAll[U any](timeout time.Duration, futures ...*Future[U]) ([]U, []error) {
	results := make([]U, len(futures))
	errs := make([]error, len(futures))

	deadline := time.Now().Add(timeout)
	for i, future := range futures {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			if future.IsComplete() {
				results[i], errs[i] = future.Await()
			} else {
				errs[i] = ErrTimeout
			}
			continue
		}
		results[i], errs[i] = future.AwaitWithTimeout(remaining)
	}

	return results, errs
}
