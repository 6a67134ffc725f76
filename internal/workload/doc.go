// Package workload provides demo computations for exercising a pool.
//
// The core computation multiplies two integers after a simulated hard
// computation delay. A Generator wraps it with optional fault injection so
// scenarios can observe how failures and panics surface through futures.
package workload
