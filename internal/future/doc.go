// Package future provides a one-shot result channel split into a producer
// side (Promise) and a consumer side (Future).
//
//	promise, fut := future.New[int]()
//	go func() { promise.Resolve(42) }()
//	v, err := fut.Await()
//
// Only the first Resolve or Reject takes effect. Await may be called any
// number of times from any goroutine and always observes the same outcome.
package future
