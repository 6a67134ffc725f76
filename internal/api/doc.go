// Package api exposes a running pool over HTTP.
//
// Endpoints:
//
//	GET  /api/status    pool state and counters
//	GET  /api/metrics   task latency and error metrics
//	POST /api/multiply  {"a": 10, "b": 20} -> {"a": 10, "b": 20, "result": 200}
//	GET  /ws            websocket stream of pool events and periodic status
//
// The multiply handler submits a task to the pool and waits for its
// future. If the client goes away first, the task still runs.
package api
