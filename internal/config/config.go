package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"threadpool/internal/logger"
	"threadpool/internal/pool"
	"threadpool/internal/scenario"

	"gopkg.in/yaml.v3"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Pool     PoolConfig     `yaml:"pool" json:"pool"`
	Scenario ScenarioConfig `yaml:"scenario" json:"scenario"`
	Server   ServerConfig   `yaml:"server" json:"server"`
}

// PoolConfig はプール設定
type PoolConfig struct {
	Workers  int    `yaml:"workers" json:"workers"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// ScenarioConfig はシナリオ設定
type ScenarioConfig struct {
	Preset      string  `yaml:"preset" json:"preset"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Tasks       int     `yaml:"tasks" json:"tasks"`
	TaskDelay   string  `yaml:"task_delay" json:"task_delay"`
	FailureRate float64 `yaml:"failure_rate" json:"failure_rate"`
	PanicRate   float64 `yaml:"panic_rate" json:"panic_rate"`
	Seed        int64   `yaml:"seed" json:"seed"`
}

// ServerConfig はAPIサーバー設定
type ServerConfig struct {
	Addr        string `yaml:"addr" json:"addr"`
	TaskDelay   string `yaml:"task_delay" json:"task_delay"`
	EventBuffer int    `yaml:"event_buffer" json:"event_buffer"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	if f.Pool.Workers < 0 {
		return fmt.Errorf("pool.workers must be non-negative")
	}
	if _, err := logger.ParseLevel(f.Pool.LogLevel); err != nil {
		return fmt.Errorf("pool.log_level: %w", err)
	}

	sc := f.Scenario
	if sc.Preset != "" {
		if _, ok := scenario.GetPreset(sc.Preset); !ok {
			return fmt.Errorf("unknown scenario.preset: %s", sc.Preset)
		}
	}
	if sc.Tasks < 0 {
		return fmt.Errorf("scenario.tasks must be non-negative")
	}
	if sc.FailureRate < 0 || sc.FailureRate > 1 {
		return fmt.Errorf("scenario.failure_rate must be between 0 and 1")
	}
	if sc.PanicRate < 0 || sc.PanicRate > 1 {
		return fmt.Errorf("scenario.panic_rate must be between 0 and 1")
	}
	if sc.FailureRate+sc.PanicRate > 1 {
		return fmt.Errorf("scenario.failure_rate + scenario.panic_rate must not exceed 1")
	}

	if f.Server.EventBuffer < 0 {
		return fmt.Errorf("server.event_buffer must be non-negative")
	}

	return nil
}

// LogLevel は設定されたログレベルを返す
func (f *FileConfig) LogLevel() (logger.Level, error) {
	return logger.ParseLevel(f.Pool.LogLevel)
}

// ToPoolConfig はFileConfigをpool.Configに変換する
// Logger、Metrics、Bus は呼び出し側で設定する
func (f *FileConfig) ToPoolConfig() pool.Config {
	config := pool.DefaultConfig()
	if f.Pool.Workers > 0 {
		config.Workers = f.Pool.Workers
	}
	return config
}

// ToScenarioConfig はFileConfigをscenario.Configに変換する
func (f *FileConfig) ToScenarioConfig() (scenario.Config, error) {
	sc := f.Scenario

	// プリセットまたはデフォルト値
	config := scenario.DefaultConfig()
	if sc.Preset != "" {
		preset, ok := scenario.GetPreset(sc.Preset)
		if !ok {
			return config, fmt.Errorf("unknown preset: %s", sc.Preset)
		}
		config = preset
	}

	if f.Pool.Workers > 0 {
		config.Workers = f.Pool.Workers
	}
	if sc.Name != "" {
		config.Name = sc.Name
	}
	if sc.Description != "" {
		config.Description = sc.Description
	}
	if sc.Tasks > 0 {
		config.Tasks = sc.Tasks
	}
	if sc.TaskDelay != "" {
		d, err := time.ParseDuration(sc.TaskDelay)
		if err != nil {
			return config, fmt.Errorf("invalid task delay: %w", err)
		}
		config.TaskDelay = d
	}
	if sc.FailureRate > 0 {
		config.FailureRate = sc.FailureRate
	}
	if sc.PanicRate > 0 {
		config.PanicRate = sc.PanicRate
	}
	if sc.Seed != 0 {
		config.Seed = sc.Seed
	}

	return config, nil
}

// ServerTaskDelay はAPI経由の乗算タスクの計算時間を返す
func (f *FileConfig) ServerTaskDelay() (time.Duration, error) {
	if f.Server.TaskDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Server.TaskDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid server task delay: %w", err)
	}
	return d, nil
}
