package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned by Submit before Init has been called
	ErrNotStarted = errors.New("pool is not started")

	// ErrAlreadyStarted is returned by a second call to Init
	ErrAlreadyStarted = errors.New("pool is already started")

	// ErrPoolClosed is returned when submitting to a pool that has been shut down
	ErrPoolClosed = errors.New("pool is closed")

	// ErrNilTask is returned when submitting a nil computation
	ErrNilTask = errors.New("task is nil")
)

// PanicError はタスク実行中に発生したpanicを表す
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap はpanic値がerrorであればそれを返す
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanic reports whether err came from a recovered panic
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
