package workload

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"
)

// ErrInjected は故障注入で返されるエラー
var ErrInjected = errors.New("injected failure")

// SimulateHardComputation は重い計算を模して d だけ待つ
func SimulateHardComputation(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Multiply は遅延の後に a*b を返す
func Multiply(delay time.Duration, a, b int) int {
	SimulateHardComputation(delay)
	return a * b
}

// MultiplyInto は結果を out に書き込む
func MultiplyInto(delay time.Duration, out *int, a, b int) {
	SimulateHardComputation(delay)
	*out = a * b
}

// MultiplyPrint は結果を w に出力する
func MultiplyPrint(delay time.Duration, w io.Writer, a, b int) error {
	res := Multiply(delay, a, b)
	_, err := fmt.Fprintf(w, "%d * %d = %d\n", a, b, res)
	return err
}

// FaultType は注入する故障の種類
type FaultType int

const (
	FaultNone FaultType = iota
	FaultError
	FaultPanic
)

func (f FaultType) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultError:
		return "error"
	case FaultPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Config はワークロードの設定
type Config struct {
	Delay       time.Duration // 1タスクあたりの計算時間
	FailureRate float64       // エラーを返す確率
	PanicRate   float64       // panicする確率
	Seed        int64         // 0で現在時刻
}

// Generator は故障注入付きの乗算タスクを生成する
type Generator struct {
	config Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator は新しい Generator を作成する
func NewGenerator(config Config) *Generator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// pickFault はタスク生成時に故障の種類を決める
func (g *Generator) pickFault() FaultType {
	g.mu.Lock()
	r := g.rng.Float64()
	g.mu.Unlock()

	switch {
	case r < g.config.PanicRate:
		return FaultPanic
	case r < g.config.PanicRate+g.config.FailureRate:
		return FaultError
	default:
		return FaultNone
	}
}

// Job は a*b を計算するタスクと、注入された故障の種類を返す
func (g *Generator) Job(a, b int) (func() (int, error), FaultType) {
	fault := g.pickFault()
	delay := g.config.Delay

	return func() (int, error) {
		res := Multiply(delay, a, b)
		switch fault {
		case FaultError:
			return 0, fmt.Errorf("multiply %d * %d: %w", a, b, ErrInjected)
		case FaultPanic:
			panic(fmt.Sprintf("multiply %d * %d: injected panic", a, b))
		}
		return res, nil
	}, fault
}
