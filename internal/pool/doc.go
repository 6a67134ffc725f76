// Package pool provides a fixed-size worker pool that runs submitted
// computations on background goroutines and returns a future for each.
//
// # Basic Usage
//
//	p := pool.New(4)
//	if err := p.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Shutdown()
//
//	fut, err := pool.Submit(p, func() (int, error) {
//	    return multiply(10, 20), nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := fut.Await() // 200
//
// Arguments are bound by the closure. Computations without a result use
// Exec, whose future yields struct{} once the computation has run.
//
// # Lifecycle
//
// A pool moves Created -> Running -> Stopped. Init starts the workers and
// may only be called once. Submit is accepted only while Running.
// Shutdown wakes every worker and blocks until all of them have exited.
//
// # Shutdown Semantics
//
// Workers wait on a condition variable with the predicate
// "queue not empty or shutdown" checked under the pool lock, so a wake-up
// cannot be lost. Tasks accepted before Shutdown are drained before the
// workers exit. Submit after Shutdown fails with ErrPoolClosed, so no
// accepted task is ever left without a result.
//
// # Failures
//
// An error returned by a computation, or a panic recovered from it, is
// stored in that task's future and returned by Await. The worker that ran
// it keeps serving the queue. Failed tasks are never retried.
package pool
