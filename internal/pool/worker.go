package pool

import (
	"sync"

	"threadpool/internal/logger"
	"threadpool/internal/queue"
)

// worker はキューからタスクを取り出して実行するループ
type worker struct {
	name string
	sh   *shared
	log  *logger.Logger
}

// run はシャットダウンしてキューが空になるまでタスクを実行する
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	w.log.Debug(w.name, "started")
	for {
		task, ok := w.next()
		if !ok {
			break
		}
		// ロックを保持せずに実行する
		task()
	}
	w.log.Debug(w.name, "exited")
}

// next は次のタスクを待つ。シャットダウン済みでキューが空なら false を返す
func (w *worker) next() (queue.Task, bool) {
	w.sh.mu.Lock()
	defer w.sh.mu.Unlock()

	for w.sh.queue.IsEmpty() && !w.sh.shutdown {
		w.sh.wake.Wait()
	}
	return w.sh.queue.TryDequeue()
}
