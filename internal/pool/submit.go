package pool

import (
	"runtime/debug"
	"time"

	"threadpool/internal/future"

	"github.com/google/uuid"
)

// Submit は計算をタスクとしてキューに積み、結果を受け取る Future を返す
// 呼び出しは完了を待たずに戻る
func Submit[T any](p *Pool, fn func() (T, error)) (*future.Future[T], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	id := uuid.New()
	promise, fut := future.New[T]()

	task := func() {
		p.active.Add(1)
		start := time.Now()
		value, err := invoke(fn)
		took := time.Since(start)
		p.active.Add(-1)

		p.finish(id, took, err)
		if err != nil {
			promise.Reject(err)
			return
		}
		promise.Resolve(value)
	}

	if err := p.enqueue(id, task); err != nil {
		return nil, err
	}
	return fut, nil
}

// Exec は戻り値のない計算を投入する
func Exec(p *Pool, fn func() error) (*future.Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// invoke は fn を実行し、panic をエラーとして捕捉する
func invoke[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
