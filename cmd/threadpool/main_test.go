package main

import (
	"testing"
	"time"

	"threadpool/internal/config"
	"threadpool/internal/logger"
)

func TestBuildScenarioConfigFromPreset(t *testing.T) {
	opts := options{presetName: "faulty", workers: 6, tasks: 30, delay: 3 * time.Millisecond}

	cfg, err := buildScenarioConfig(&config.FileConfig{}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "faulty" {
		t.Errorf("expected preset 'faulty', got '%s'", cfg.Name)
	}
	if cfg.Workers != 6 || cfg.Tasks != 30 {
		t.Errorf("expected 6 workers / 30 tasks, got %d / %d", cfg.Workers, cfg.Tasks)
	}
	if cfg.TaskDelay != 3*time.Millisecond {
		t.Errorf("expected 3ms delay, got %v", cfg.TaskDelay)
	}
	if cfg.FailureRate == 0 {
		t.Error("expected failure rate from the preset")
	}
}

func TestBuildScenarioConfigKeepsDelayWhenUnset(t *testing.T) {
	opts := options{presetName: "basic", delay: -1}

	cfg, err := buildScenarioConfig(&config.FileConfig{}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TaskDelay != 20*time.Millisecond {
		t.Errorf("expected preset delay 20ms, got %v", cfg.TaskDelay)
	}
}

func TestBuildScenarioConfigUnknownPreset(t *testing.T) {
	if _, err := buildScenarioConfig(&config.FileConfig{}, options{presetName: "nope", delay: -1}); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestApplyLogLevel(t *testing.T) {
	defer logger.Default.SetLevel(logger.LevelInfo)

	fileConfig := &config.FileConfig{Pool: config.PoolConfig{LogLevel: "warn"}}
	if err := applyLogLevel(fileConfig, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Default.Enabled(logger.LevelInfo) {
		t.Error("expected INFO to be filtered at WARN level")
	}

	if err := applyLogLevel(fileConfig, "debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Default.Enabled(logger.LevelDebug) {
		t.Error("flag level should override the config file")
	}

	if err := applyLogLevel(fileConfig, "shout"); err == nil {
		t.Error("expected error for unknown level")
	}
}
