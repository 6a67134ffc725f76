package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/future"
	"threadpool/internal/logger"
	"threadpool/internal/metrics"
	"threadpool/internal/pool"
	"threadpool/internal/workload"
)

// Config はシナリオの設定
type Config struct {
	Name        string        // シナリオ名
	Description string        // 説明
	Workers     int           // ワーカー数
	Tasks       int           // 投入するタスク数
	TaskDelay   time.Duration // 1タスクあたりの計算時間

	// 故障注入
	FailureRate float64 // エラーを返す確率
	PanicRate   float64 // panicする確率
	Seed        int64   // 乱数シード（0で現在時刻）
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		Description: "Default scenario",
		Workers:     pool.DefaultWorkers,
		Tasks:       100,
		TaskDelay:   10 * time.Millisecond,
	}
}

// Validate は設定を検証する
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	if c.Tasks <= 0 {
		return fmt.Errorf("tasks must be positive")
	}
	if c.TaskDelay < 0 {
		return fmt.Errorf("task delay must be non-negative")
	}
	if c.FailureRate < 0 || c.PanicRate < 0 || c.FailureRate+c.PanicRate > 1 {
		return fmt.Errorf("failure_rate + panic_rate must be between 0 and 1")
	}
	return nil
}

// Result はシナリオ実行結果
type Result struct {
	ScenarioName string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Workers      int

	// タスク統計
	Submitted  int
	Succeeded  int
	Failed     int
	Panicked   int
	Mismatched int // 値が a*b と一致しなかった数
	Unfinished int // コンテキスト終了時に未完了だった数

	// 期待値と実測値の検証
	InjectedFaults int
	ExpectedBound  time.Duration // ceil(Tasks/Workers) * TaskDelay

	// メトリクス
	ErrorRate  float64
	AvgLatency time.Duration
	P99Latency time.Duration
	Throughput float64
}

// Engine はシナリオ実行エンジン
type Engine struct {
	config   Config
	eventBus *events.Bus
	log      *logger.Logger

	mu      sync.RWMutex
	running bool
	pool    *pool.Pool
}

// New は新しいEngineを作成する
func New(config Config) *Engine {
	return &Engine{
		config: config,
		log:    logger.Default,
	}
}

// SetEventBus はイベントバスを設定する
func (e *Engine) SetEventBus(bus *events.Bus) {
	e.eventBus = bus
}

// SetLogger はロガーを設定する
func (e *Engine) SetLogger(l *logger.Logger) {
	if l != nil {
		e.log = l
	}
}

type pending struct {
	a, b  int
	fault workload.FaultType
	fut   *future.Future[int]
}

// Run はシナリオを実行する
// ctx が終了すると残りの待ち合わせを打ち切るが、投入済みタスクはプール停止時に処理される
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("scenario is already running")
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	e.log.Info("", "=== Scenario '%s' started ===", e.config.Name)
	e.log.Info("", "Description: %s", e.config.Description)

	m := metrics.New()
	p := pool.NewWithConfig(pool.Config{
		Workers: e.config.Workers,
		Logger:  e.log,
		Metrics: m,
		Bus:     e.eventBus,
	})
	if err := p.Init(); err != nil {
		return nil, fmt.Errorf("failed to start pool: %w", err)
	}

	e.mu.Lock()
	e.pool = p
	e.mu.Unlock()

	result := &Result{
		ScenarioName:  e.config.Name,
		StartTime:     time.Now(),
		Workers:       p.NumWorkers(),
		ExpectedBound: expectedBound(e.config.Tasks, p.NumWorkers(), e.config.TaskDelay),
	}

	gen := workload.NewGenerator(workload.Config{
		Delay:       e.config.TaskDelay,
		FailureRate: e.config.FailureRate,
		PanicRate:   e.config.PanicRate,
		Seed:        e.config.Seed,
	})

	jobs, err := e.submitAll(p, gen, result)
	if err != nil {
		p.Shutdown()
		return nil, err
	}

	e.awaitAll(ctx, jobs, result)
	p.Shutdown()

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	snap := m.Snapshot()
	result.ErrorRate = snap.ErrorRate
	result.AvgLatency = snap.AverageLatency
	result.P99Latency = snap.P99Latency
	result.Throughput = snap.OverallThroughput

	e.log.Info("", "=== Scenario '%s' completed ===", e.config.Name)

	return result, nil
}

// submitAll は全タスクを投入する
func (e *Engine) submitAll(p *pool.Pool, gen *workload.Generator, result *Result) ([]pending, error) {
	jobs := make([]pending, 0, e.config.Tasks)
	for i := 0; i < e.config.Tasks; i++ {
		a, b := i+1, i%10+1
		job, fault := gen.Job(a, b)

		fut, err := pool.Submit(p, job)
		if err != nil {
			return nil, fmt.Errorf("failed to submit task %d: %w", i, err)
		}
		if fault != workload.FaultNone {
			result.InjectedFaults++
		}
		jobs = append(jobs, pending{a: a, b: b, fault: fault, fut: fut})
	}
	result.Submitted = len(jobs)
	return jobs, nil
}

// awaitAll は全ての Future を待ち合わせて結果を分類する
func (e *Engine) awaitAll(ctx context.Context, jobs []pending, result *Result) {
	for i, job := range jobs {
		select {
		case <-job.fut.Done():
		case <-ctx.Done():
			result.Unfinished = len(jobs) - i
			e.log.Warn("", "Scenario interrupted, %d tasks not awaited", result.Unfinished)
			return
		}

		v, err := job.fut.Await()
		switch {
		case err == nil:
			result.Succeeded++
			if v != job.a*job.b {
				result.Mismatched++
			}
		case pool.IsPanic(err):
			result.Panicked++
		case errors.Is(err, workload.ErrInjected):
			result.Failed++
		default:
			result.Failed++
			e.log.Warn("", "Unexpected task error: %v", err)
		}
	}
}

func expectedBound(tasks, workers int, delay time.Duration) time.Duration {
	if workers <= 0 {
		return 0
	}
	batches := (tasks + workers - 1) / workers
	return time.Duration(batches) * delay
}

// Report は結果をフォーマットして返す
func (r *Result) Report() string {
	return fmt.Sprintf(`
================================================================================
                         SCENARIO REPORT: %s
================================================================================

EXECUTION SUMMARY
-----------------
  Start Time:     %s
  End Time:       %s
  Duration:       %v
  Expected Bound: %v
  Workers:        %d

TASK RESULTS
------------
  Submitted:        %d
  Succeeded:        %d
  Failed:           %d
  Panicked:         %d
  Wrong Results:    %d
  Not Awaited:      %d
  Injected Faults:  %d

TASK METRICS
------------
  Error Rate:       %.2f%%
  Avg Latency:      %v
  P99 Latency:      %v
  Throughput:       %.2f tasks/s

================================================================================`,
		r.ScenarioName,
		r.StartTime.Format("2006-01-02 15:04:05"),
		r.EndTime.Format("2006-01-02 15:04:05"),
		r.Duration.Round(time.Millisecond),
		r.ExpectedBound,
		r.Workers,
		r.Submitted,
		r.Succeeded,
		r.Failed,
		r.Panicked,
		r.Mismatched,
		r.Unfinished,
		r.InjectedFaults,
		r.ErrorRate*100,
		r.AvgLatency.Round(time.Microsecond),
		r.P99Latency.Round(time.Microsecond),
		r.Throughput,
	)
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Stats は直近に実行したプールの統計を返す
func (e *Engine) Stats() *pool.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.pool == nil {
		return nil
	}
	stats := e.pool.Stats()
	return &stats
}

// Metrics は直近に実行したプールのメトリクスを返す
func (e *Engine) Metrics() *metrics.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.pool == nil {
		return nil
	}
	snapshot := e.pool.Metrics().Snapshot()
	return &snapshot
}
