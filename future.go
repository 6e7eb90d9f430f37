package framecall

import "context"

// Future is a one-shot result cell resolved when its job runs on the render
// goroutine. A nil *Future (returned by [SubmitCallback] when the per-frame
// budget is exhausted) represents a dropped submission.
type Future[T any] struct {
	done  chan struct{}
	value T
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve publishes the value. Called exactly once, by the executing job.
func (f *Future[T]) resolve(v T) {
	f.value = v
	close(f.done)
}

// Done returns a channel closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Resolved reports whether the result is available.
func (f *Future[T]) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// TryResult returns the result without blocking, reporting ok=false if the
// job has not run yet.
func (f *Future[T]) TryResult() (T, bool) {
	select {
	case <-f.done:
		return f.value, true
	default:
		var zero T
		return zero, false
	}
}

// Result blocks until the result is available or ctx expires.
func (f *Future[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
