package async

import (
	"context"
	"sync/atomic"
)

// Once runs an initialization function at most once and shares its outcome
// with every caller. The first caller installs a pending Future with a
// compare-and-swap and runs the function; concurrent and later callers get the
// same Future and wait on it. Errors are memoized like successful results.
//
// The zero value is ready to use. A Once must not be copied after first use.
type Once[T any] struct {
	future atomic.Pointer[Future[T]]
}

// Do starts the initialization if nobody has started it yet. It reports
// whether this call was the one that ran fn.
func (o *Once[T]) Do(fn func() (T, error)) (*Future[T], bool) {
	if f := o.future.Load(); f != nil {
		return f, false
	}

	f := NewFuture[T]()
	if !o.future.CompareAndSwap(nil, f) {
		return o.future.Load(), false
	}

	var (
		result T
		err    error
	)
	// Resolve even if fn panics so that waiters are not stuck forever.
	defer func() {
		if r := recover(); r != nil {
			f.Resolve(result, &PanicError{Value: r})
			panic(r)
		}
		f.Resolve(result, err)
	}()
	result, err = fn()

	return f, true
}

// Future returns the installed Future or nil when Do was never called.
func (o *Once[T]) Future() *Future[T] {
	return o.future.Load()
}

// Started reports whether an initialization has been installed.
func (o *Once[T]) Started() bool {
	return o.future.Load() != nil
}

// Get waits for the initialization result.
// Returns ErrNotReady when Do was never called.
func (o *Once[T]) Get(ctx context.Context) (T, error) {
	f := o.future.Load()
	if f == nil {
		var zero T
		return zero, ErrNotReady
	}
	return f.AwaitContext(ctx)
}
