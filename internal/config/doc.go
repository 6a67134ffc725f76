// Package config loads threadpool settings from YAML or JSON files.
//
// The format is chosen by file extension (.yaml, .yml or .json):
//
//	pool:
//	  workers: 4
//	  log_level: info
//	scenario:
//	  preset: basic
//	  tasks: 100
//	  task_delay: 20ms
//	server:
//	  addr: ":8080"
//
// Durations are strings accepted by time.ParseDuration. Zero values fall
// back to the pool and scenario defaults.
package config
