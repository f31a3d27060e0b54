// Package async provides small generic primitives for results that are
// produced once and awaited by many goroutines.
//
// Future is a write-once result cell: it is resolved exactly once and every
// waiter observes the same value and error. Once builds on Future to implement
// exactly-once initialization: the first caller installs a pending Future with
// an atomic compare-and-swap and runs the initializer, while every other
// caller, concurrent or later, awaits that same Future instead of starting its
// own work.
//
// # Usage
//
//	var storage async.Once[*Storage]
//
//	func configure(cfg Config) (*Storage, error) {
//	    f, _ := storage.Do(func() (*Storage, error) {
//	        return newStorage(cfg)
//	    })
//	    return f.Await()
//	}
//
//	func get(ctx context.Context) (*Storage, error) {
//	    return storage.Get(ctx) // ErrNotReady if configure was never called
//	}
//
// # Error Handling
//
//   - ErrNotReady – Get called before any Do.
//   - ErrTimeout  – AwaitWithTimeout elapsed before the future resolved.
//   - *PanicError – the initializer panicked; the panic is re-raised in the
//     initializing goroutine and stored for every waiter.
package async
