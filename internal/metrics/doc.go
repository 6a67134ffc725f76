// Package metrics collects task execution statistics for a pool.
//
// Metrics tracks how many tasks finished, how many failed, how long they
// ran and the resulting throughput. It is safe for concurrent use by every
// worker of a pool.
//
// # Basic Usage
//
//	m := metrics.New()
//
//	start := time.Now()
//	err := task()
//	if err != nil {
//	    m.RecordFailure(time.Since(start))
//	} else {
//	    m.RecordSuccess(time.Since(start))
//	}
//
//	snap := m.Snapshot()
//	fmt.Printf("done=%d failed=%d p99=%v\n",
//	    snap.CompletedTasks, snap.FailedTasks, snap.P99Latency)
//
// # Configuration
//
// Use NewWithConfig to change how many latency samples are retained for
// percentile estimation:
//
//	m := metrics.NewWithConfig(metrics.Config{MaxLatencySamples: 5000})
package metrics
