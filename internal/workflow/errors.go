package workflow

import (
	"errors"
	"fmt"
	"sync"
)

// ErrStageOrder is returned when a node runs before its predecessor has
// populated state or after its own output already exists.
var ErrStageOrder = errors.New("workflow stage out of order")

// StageError identifies the workflow stage that aborted execution.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// failure keeps the first stage error of one execution so it reaches the
// caller intact regardless of how the graph wraps node errors.
type failure struct {
	mu  sync.Mutex
	err *StageError
}

func (f *failure) record(stage string, err error) error {
	se := &StageError{Stage: stage, Err: err}
	if f == nil {
		return se
	}

	f.mu.Lock()
	if f.err == nil {
		f.err = se
	}
	f.mu.Unlock()

	return se
}

func (f *failure) get() *StageError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
