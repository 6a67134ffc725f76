package scenario

import "time"

// QuickScenario はクイックテスト用シナリオを返す
// 短時間での動作確認用
func QuickScenario() Config {
	return Config{
		Name:        "quick",
		Description: "Quick test for verification",
		Workers:     4,
		Tasks:       12,
		TaskDelay:   50 * time.Millisecond,
	}
}

// BasicScenario は基本シナリオを返す
// 故障なし、100タスクを4ワーカーで処理
func BasicScenario() Config {
	return Config{
		Name:        "basic",
		Description: "100 multiply tasks on 4 workers without faults",
		Workers:     4,
		Tasks:       100,
		TaskDelay:   20 * time.Millisecond,
	}
}

// StressScenario は高負荷シナリオを返す
// 多数の短いタスクでキューとロックの競合を確認する
func StressScenario() Config {
	return Config{
		Name:        "stress",
		Description: "Many short tasks to stress queue contention",
		Workers:     16,
		Tasks:       20000,
		TaskDelay:   0,
	}
}

// FaultyScenario は故障注入シナリオを返す
// エラーとpanicがFutureに伝搬し、ワーカーが生き残ることを確認する
func FaultyScenario() Config {
	return Config{
		Name:        "faulty",
		Description: "Failure and panic injection",
		Workers:     4,
		Tasks:       200,
		TaskDelay:   5 * time.Millisecond,
		FailureRate: 0.1,
		PanicRate:   0.05,
	}
}

// GetPreset は名前からプリセットシナリオを取得する
func GetPreset(name string) (Config, bool) {
	presets := map[string]func() Config{
		"quick":  QuickScenario,
		"basic":  BasicScenario,
		"stress": StressScenario,
		"faulty": FaultyScenario,
	}

	if fn, ok := presets[name]; ok {
		return fn(), true
	}
	return Config{}, false
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	return []string{"quick", "basic", "stress", "faulty"}
}
