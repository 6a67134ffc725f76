package queue

import "sync"

// Task はキューに積まれる引数なしの実行単位
type Task func()

// Queue はミューテックスで保護された無制限のFIFOキュー
type Queue struct {
	mu    sync.Mutex
	tasks []Task
	head  int
}

// New は空のキューを作成する
func New() *Queue {
	return &Queue{}
}

// Enqueue はタスクを末尾に追加する（nilは無視）
func (q *Queue) Enqueue(task Task) {
	if task == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.tasks = append(q.tasks, task)
}

// TryDequeue は先頭のタスクを取り出す。空の場合は false を返し、ブロックしない
func (q *Queue) TryDequeue() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.tasks) {
		return nil, false
	}

	task := q.tasks[q.head]
	q.tasks[q.head] = nil
	q.head++

	// 消費済み領域が半分を超えたら詰め直す
	if q.head*2 >= len(q.tasks) {
		n := copy(q.tasks, q.tasks[q.head:])
		clear(q.tasks[n:])
		q.tasks = q.tasks[:n]
		q.head = 0
	}

	return task, true
}

// IsEmpty はキューが空かどうかを返す
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head >= len(q.tasks)
}

// Size は現在キューに積まれているタスク数を返す
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks) - q.head
}
