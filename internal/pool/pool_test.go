package pool

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/future"
	"threadpool/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogLevel keeps pool logs out of test output
const testLogLevel = logger.LevelError

func newTestPool(t *testing.T, workers int) *Pool {
	t.Helper()
	p := NewWithConfig(Config{
		Workers: workers,
		Logger:  logger.New(io.Discard, testLogLevel),
	})
	require.NoError(t, p.Init())
	t.Cleanup(p.Shutdown)
	return p
}

func multiply(a, b int) int {
	return a * b
}

func TestNewPool(t *testing.T) {
	p := New(8)
	assert.Equal(t, 8, p.NumWorkers())
	assert.Equal(t, StateCreated, p.State())

	assert.Equal(t, DefaultWorkers, New(0).NumWorkers())
	assert.Equal(t, DefaultWorkers, New(-3).NumWorkers())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Created", StateCreated.String())
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Stopped", StateStopped.String())
	assert.Equal(t, "Unknown", State(42).String())
}

func TestLifecycle(t *testing.T) {
	p := NewWithConfig(Config{Workers: 2, Logger: logger.New(io.Discard, testLogLevel)})

	_, err := Submit(p, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, p.Init())
	assert.Equal(t, StateRunning, p.State())
	assert.ErrorIs(t, p.Init(), ErrAlreadyStarted)

	p.Shutdown()
	assert.Equal(t, StateStopped, p.State())

	_, err = Submit(p, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.ErrorIs(t, p.Init(), ErrPoolClosed)

	// Double shutdown should be no-op
	p.Shutdown()
}

func TestShutdownBeforeInit(t *testing.T) {
	p := New(2)

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown of a never-started pool should return immediately")
	}
	assert.Equal(t, StateStopped, p.State())
}

func TestSubmitResult(t *testing.T) {
	p := newTestPool(t, 4)

	fut, err := Submit(p, func() (int, error) {
		return multiply(10, 20), nil
	})
	require.NoError(t, err)

	v, err := fut.Await()
	require.NoError(t, err)
	assert.Equal(t, 200, v)
}

func TestSubmitNil(t *testing.T) {
	p := newTestPool(t, 1)

	_, err := Submit[int](p, nil)
	assert.ErrorIs(t, err, ErrNilTask)

	_, err = Exec(p, nil)
	assert.ErrorIs(t, err, ErrNilTask)
}

func TestExec(t *testing.T) {
	p := newTestPool(t, 2)

	var out int
	fut, err := Exec(p, func() error {
		out = multiply(10, 20)
		return nil
	})
	require.NoError(t, err)

	_, err = fut.Await()
	require.NoError(t, err)
	assert.Equal(t, 200, out)
}

func TestFailurePropagation(t *testing.T) {
	p := newTestPool(t, 2)
	errDivide := errors.New("division by zero")

	bad, err := Submit(p, func() (int, error) {
		return 0, errDivide
	})
	require.NoError(t, err)

	_, err = bad.Await()
	assert.ErrorIs(t, err, errDivide)

	// The pool must keep serving after a failure
	good, err := Submit(p, func() (int, error) { return multiply(20, 30), nil })
	require.NoError(t, err)

	v, err := good.Await()
	require.NoError(t, err)
	assert.Equal(t, 600, v)
}

func TestPanicIsCaptured(t *testing.T) {
	p := newTestPool(t, 1)
	errCause := errors.New("cause")

	fut, err := Submit(p, func() (int, error) {
		panic(errCause)
	})
	require.NoError(t, err)

	_, err = fut.Await()
	require.Error(t, err)
	assert.True(t, IsPanic(err))
	assert.ErrorIs(t, err, errCause)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.NotEmpty(t, pe.Stack)

	strPanic, err := Exec(p, func() error { panic("plain value") })
	require.NoError(t, err)
	_, err = strPanic.Await()
	assert.True(t, IsPanic(err))
	assert.Contains(t, err.Error(), "plain value")

	// The single worker survived both panics
	after, err := Submit(p, func() (string, error) { return "alive", nil })
	require.NoError(t, err)
	v, err := after.Await()
	require.NoError(t, err)
	assert.Equal(t, "alive", v)
}

func TestConcurrentThroughput(t *testing.T) {
	const (
		numTasks = 100
		workers  = 4
		perTask  = 10 * time.Millisecond
	)
	p := newTestPool(t, workers)

	futures := make([]*future.Future[int], numTasks)
	start := time.Now()
	for i := 0; i < numTasks; i++ {
		i := i
		fut, err := Submit(p, func() (int, error) {
			time.Sleep(perTask)
			return multiply(i, 3), nil
		})
		require.NoError(t, err)
		futures[i] = fut
	}

	for i, fut := range futures {
		v, err := fut.Await()
		require.NoError(t, err)
		assert.Equal(t, i*3, v)
	}

	// ceil(100/4) * 10ms = 250ms, leave room for slow CI machines
	assert.Less(t, time.Since(start), 25*perTask*8)

	stats := p.Stats()
	assert.Equal(t, uint64(numTasks), stats.Submitted)
	assert.Equal(t, uint64(numTasks), stats.Completed)
	assert.Zero(t, stats.Failed)
}

func TestExactlyOnce(t *testing.T) {
	const numTasks = 1000
	p := newTestPool(t, 8)

	var runs [numTasks]atomic.Int32
	futures := make([]*future.Future[struct{}], numTasks)
	for i := 0; i < numTasks; i++ {
		i := i
		fut, err := Exec(p, func() error {
			runs[i].Add(1)
			return nil
		})
		require.NoError(t, err)
		futures[i] = fut
	}
	for _, fut := range futures {
		_, err := fut.Await()
		require.NoError(t, err)
	}

	for i := range runs {
		assert.Equal(t, int32(1), runs[i].Load(), "task %d", i)
	}
}

func TestFIFOWithSingleWorker(t *testing.T) {
	p := newTestPool(t, 1)

	gate := make(chan struct{})
	blocker, err := Exec(p, func() error {
		<-gate
		return nil
	})
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int
	futures := make([]*future.Future[struct{}], 0, 20)
	for i := 0; i < 20; i++ {
		i := i
		fut, err := Exec(p, func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		futures = append(futures, fut)
	}

	close(gate)
	_, _ = blocker.Await()
	for _, fut := range futures {
		_, _ = fut.Await()
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestShutdownDrainsQueue(t *testing.T) {
	p := NewWithConfig(Config{Workers: 1, Logger: logger.New(io.Discard, testLogLevel)})
	require.NoError(t, p.Init())

	gate := make(chan struct{})
	_, err := Exec(p, func() error {
		<-gate
		return nil
	})
	require.NoError(t, err)

	var ran atomic.Int32
	futures := make([]*future.Future[struct{}], 10)
	for i := range futures {
		futures[i], err = Exec(p, func() error {
			ran.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	stopped := make(chan struct{})
	go func() {
		p.Shutdown()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("shutdown returned while a task was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for shutdown")
	}

	assert.Equal(t, int32(10), ran.Load())
	for _, fut := range futures {
		assert.True(t, fut.IsDone())
	}
	assert.Zero(t, p.QueueSize())
}

func TestShutdownWaitsForRunningTask(t *testing.T) {
	p := NewWithConfig(Config{Workers: 2, Logger: logger.New(io.Discard, testLogLevel)})
	require.NoError(t, p.Init())

	started := make(chan struct{})
	var finished atomic.Bool
	_, err := Exec(p, func() error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	require.NoError(t, err)

	<-started
	p.Shutdown()

	assert.True(t, finished.Load(), "shutdown returned before the running task finished")
	assert.Zero(t, p.Stats().Active)
}

func TestIdleShutdown(t *testing.T) {
	p := NewWithConfig(Config{Workers: 4, Logger: logger.New(io.Discard, testLogLevel)})
	require.NoError(t, p.Init())

	// Let the workers park on the condition variable
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("idle pool did not shut down promptly")
	}
}

func TestConcurrentSubmitters(t *testing.T) {
	p := newTestPool(t, 4)

	const submitters = 10
	const perSubmitter = 100

	var wg sync.WaitGroup
	var sum atomic.Int64
	for s := 0; s < submitters; s++ {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSubmitter; i++ {
				i := i
				fut, err := Submit(p, func() (int, error) { return s*perSubmitter + i, nil })
				if !assert.NoError(t, err) {
					return
				}
				v, err := fut.Await()
				if assert.NoError(t, err) {
					sum.Add(int64(v))
				}
			}
		}()
	}
	wg.Wait()

	n := int64(submitters * perSubmitter)
	assert.Equal(t, n*(n-1)/2, sum.Load())
}

func TestStatsAndEvents(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe()

	p := NewWithConfig(Config{
		Workers: 2,
		Logger:  logger.New(io.Discard, testLogLevel),
		Bus:     bus,
	})
	require.NoError(t, p.Init())

	ok, err := Submit(p, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	bad, err := Submit(p, func() (int, error) { return 0, errors.New("nope") })
	require.NoError(t, err)

	_, _ = ok.Await()
	_, _ = bad.Await()
	p.Shutdown()

	stats := p.Stats()
	assert.Equal(t, "Stopped", stats.State)
	assert.Equal(t, uint64(2), stats.Submitted)
	assert.Equal(t, uint64(1), stats.Completed)
	assert.Equal(t, uint64(1), stats.Failed)

	snap := p.Metrics().Snapshot()
	assert.Equal(t, uint64(2), snap.TotalTasks)
	assert.Equal(t, 0.5, snap.ErrorRate)

	counts := map[events.EventType]int{}
	for {
		select {
		case e := <-ch:
			counts[e.Type]++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, counts[events.EventPoolStarted])
	assert.Equal(t, 2, counts[events.EventTaskSubmitted])
	assert.Equal(t, 1, counts[events.EventTaskCompleted])
	assert.Equal(t, 1, counts[events.EventTaskFailed])
	assert.Equal(t, 1, counts[events.EventPoolStopped])
}
