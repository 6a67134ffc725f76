package pool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/logger"
	"threadpool/internal/metrics"
	"threadpool/internal/queue"

	"github.com/google/uuid"
)

// DefaultWorkers はワーカー数未指定時の既定値
const DefaultWorkers = 4

// State はプールのライフサイクル状態
type State int

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Config はプールの設定
type Config struct {
	Workers int              // ワーカー数（0以下で DefaultWorkers）
	Logger  *logger.Logger   // nil で logger.Default
	Metrics *metrics.Metrics // nil で新規作成
	Bus     *events.Bus      // nil ならイベントを発行しない
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{Workers: DefaultWorkers}
}

// shared は全ワーカーと投入側が共有するプールの状態
// queue への追加・取り出しと shutdown の変更は mu を保持して行う
type shared struct {
	mu       sync.Mutex
	wake     *sync.Cond
	queue    *queue.Queue
	started  bool
	shutdown bool
}

// Pool は固定数のワーカーでタスクを実行する
type Pool struct {
	numWorkers int
	sh         *shared
	wg         sync.WaitGroup
	stopOnce   sync.Once

	log     *logger.Logger
	metrics *metrics.Metrics
	bus     *events.Bus

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	active    atomic.Int64
}

// New は新しいプールを作成する。ワーカーは Init まで起動しない
func New(numWorkers int) *Pool {
	config := DefaultConfig()
	config.Workers = numWorkers
	return NewWithConfig(config)
}

// NewWithConfig は設定を指定してプールを作成する
func NewWithConfig(config Config) *Pool {
	numWorkers := config.Workers
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	log := config.Logger
	if log == nil {
		log = logger.Default
	}
	m := config.Metrics
	if m == nil {
		m = metrics.New()
	}

	sh := &shared{queue: queue.New()}
	sh.wake = sync.NewCond(&sh.mu)

	return &Pool{
		numWorkers: numWorkers,
		sh:         sh,
		log:        log,
		metrics:    m,
		bus:        config.Bus,
	}
}

// Init はワーカーを起動する
func (p *Pool) Init() error {
	p.sh.mu.Lock()
	defer p.sh.mu.Unlock()

	if p.sh.shutdown {
		return ErrPoolClosed
	}
	if p.sh.started {
		return ErrAlreadyStarted
	}
	p.sh.started = true

	for i := 0; i < p.numWorkers; i++ {
		w := &worker{
			name: fmt.Sprintf("worker-%d", i+1),
			sh:   p.sh,
			log:  p.log,
		}
		p.wg.Add(1)
		go w.run(&p.wg)
	}

	p.log.Info("pool", "started %d workers", p.numWorkers)
	p.bus.Publish(events.NewPoolStartedEvent(p.numWorkers))
	return nil
}

// enqueue はタスクをキューに積み、待機中のワーカーを1つ起こす
func (p *Pool) enqueue(id uuid.UUID, task queue.Task) error {
	p.sh.mu.Lock()
	defer p.sh.mu.Unlock()

	if p.sh.shutdown {
		return ErrPoolClosed
	}
	if !p.sh.started {
		return ErrNotStarted
	}

	p.sh.queue.Enqueue(task)
	p.submitted.Add(1)
	// ワーカーが取り出す前に発行して完了イベントより先に届ける
	p.bus.Publish(events.NewTaskSubmittedEvent(id, p.sh.queue.Size()))
	p.sh.wake.Signal()
	return nil
}

// Shutdown は全ワーカーを起こし、キューを処理し終えて終了するまで待つ
// 2回目以降の呼び出しは最初の停止完了を待つだけ
func (p *Pool) Shutdown() {
	p.sh.mu.Lock()
	wasRunning := p.sh.started && !p.sh.shutdown
	p.sh.shutdown = true
	p.sh.wake.Broadcast()
	p.sh.mu.Unlock()

	p.wg.Wait()

	if !wasRunning {
		return
	}
	p.stopOnce.Do(func() {
		p.log.Info("pool", "stopped %d workers", p.numWorkers)
		p.bus.Publish(events.NewPoolStoppedEvent(p.numWorkers))
	})
}

// State は現在の状態を返す
func (p *Pool) State() State {
	p.sh.mu.Lock()
	defer p.sh.mu.Unlock()

	switch {
	case p.sh.shutdown:
		return StateStopped
	case p.sh.started:
		return StateRunning
	default:
		return StateCreated
	}
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// QueueSize は未処理タスク数を返す
func (p *Pool) QueueSize() int {
	return p.sh.queue.Size()
}

// Metrics はプールのメトリクスを返す
func (p *Pool) Metrics() *metrics.Metrics {
	return p.metrics
}

// Stats はプールの統計情報
type Stats struct {
	State     string `json:"state"`
	Workers   int    `json:"workers"`
	Queued    int    `json:"queued"`
	Active    int64  `json:"active"`
	Submitted uint64 `json:"submitted"`
	Completed uint64 `json:"completed"`
	Failed    uint64 `json:"failed"`
}

// Stats は現在の統計情報を返す
func (p *Pool) Stats() Stats {
	return Stats{
		State:     p.State().String(),
		Workers:   p.numWorkers,
		Queued:    p.QueueSize(),
		Active:    p.active.Load(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// finish は実行結果をメトリクスとイベントに反映する
func (p *Pool) finish(id uuid.UUID, took time.Duration, err error) {
	if err != nil {
		p.failed.Add(1)
		p.metrics.RecordFailure(took)
		if IsPanic(err) {
			p.log.Error("pool", "task %s panicked: %v", id, err)
		} else {
			p.log.Debug("pool", "task %s failed after %v: %v", id, took, err)
		}
		p.bus.Publish(events.NewTaskFailedEvent(id, took, err))
		return
	}

	p.completed.Add(1)
	p.metrics.RecordSuccess(took)
	p.bus.Publish(events.NewTaskCompletedEvent(id, took))
}
