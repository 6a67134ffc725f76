package future

import "sync"

// Future は結果の受け取り側
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// Promise は結果の書き込み側
type Promise[T any] struct {
	f *Future[T]
}

// New は対になった Promise と Future を作成する
func New[T any]() (*Promise[T], *Future[T]) {
	f := &Future[T]{done: make(chan struct{})}
	return &Promise[T]{f: f}, f
}

// Resolve は値で完了させる。既に完了済みなら false を返す
func (p *Promise[T]) Resolve(value T) bool {
	return p.f.complete(value, nil)
}

// Reject はエラーで完了させる。既に完了済みなら false を返す
func (p *Promise[T]) Reject(err error) bool {
	var zero T
	return p.f.complete(zero, err)
}

// Future は対応する Future を返す
func (p *Promise[T]) Future() *Future[T] {
	return p.f
}

func (f *Future[T]) complete(value T, err error) bool {
	written := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		written = true
		close(f.done)
	})
	return written
}

// Await は完了までブロックし、結果を返す
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done は完了時にクローズされるチャネルを返す
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone は完了済みかどうかを返す
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
