// Package logger provides a simple, thread-safe logging facility.
//
// The logger supports four levels: Debug, Info, Warn, and Error.
// Each log entry includes a timestamp, level, optional source tag, and
// message. The source tag names the component that emitted the entry,
// such as "pool", "worker-3" or "api".
//
// # Basic Usage
//
// Using the default logger:
//
//	logger.Info("", "threadpool started")
//	logger.Info("worker-1", "task %s finished", id)
//	logger.Error("pool", "task panicked: %v", r)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stderr, logger.LevelDebug)
//	l.Debug("worker-1", "waiting for work")
//
// The level can be configured from text with ParseLevel:
//
//	level, err := logger.ParseLevel("warn")
//
// # Thread Safety
//
// All logging operations are protected by a mutex and safe for concurrent use.
package logger
