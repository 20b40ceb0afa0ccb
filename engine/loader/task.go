package loader

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
)

// TaskState is the lifecycle stage of a load.
type TaskState int

const (
	// TaskPending is queued on the worker pool.
	TaskPending TaskState = iota
	// TaskRunning is fetching or parsing.
	TaskRunning
	// TaskSucceeded finished and, for asset loads, appended its object.
	TaskSucceeded
	// TaskFailed finished with a fetch or parse error and changed nothing.
	TaskFailed
	// TaskCanceled was cancelled before it committed and changed nothing.
	TaskCanceled
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskSucceeded:
		return "succeeded"
	case TaskFailed:
		return "failed"
	case TaskCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s TaskState) Terminal() bool {
	return s >= TaskSucceeded
}

// Task is the handle of one asynchronous load.
type Task interface {
	// Name returns the asset name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Done is closed once the task reaches a terminal state.
	//
	// Returns:
	//   - <-chan struct{}: the completion channel
	Done() <-chan struct{}

	// Wait blocks until the task finishes or ctx ends.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//
	// Returns:
	//   - error: the task error, or ctx.Err() if ctx ended first
	Wait(ctx context.Context) error

	// Err returns the task error, nil while running or after success.
	//
	// Returns:
	//   - error: the error
	Err() error

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - TaskState: the state
	State() TaskState

	// Object returns the appended object after success, nil otherwise.
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Object() game_object.GameObject

	// Cancel stops the task if it has not committed yet. It has no effect on a finished task.
	Cancel()
}

type task struct {
	name   string
	mu     *sync.Mutex
	state  TaskState
	err    error
	object game_object.GameObject
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

var _ Task = &task{}

func newTask(parent context.Context, name string) *task {
	ctx, cancel := context.WithCancel(parent)
	return &task{
		name:   name,
		mu:     &sync.Mutex{},
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (t *task) Name() string {
	return t.name
}

func (t *task) Done() <-chan struct{} {
	return t.done
}

func (t *task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *task) Object() game_object.GameObject {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.object
}

func (t *task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	t.cancel()
}

// start moves a pending task to running. It returns false if the task was cancelled while queued.
func (t *task) start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx.Err() != nil {
		return false
	}
	t.state = TaskRunning
	return true
}

// commit runs apply and marks the task succeeded unless it was cancelled first. Cancel and commit are
// serialized on the task mutex, so a cancelled task never applies.
func (t *task) commit(obj game_object.GameObject, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx.Err() != nil {
		return false
	}
	apply()
	t.object = obj
	t.finishLocked(TaskSucceeded, nil)
	return true
}

// fail records a terminal failure or cancellation.
func (t *task) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return
	}
	err = canceled(err)
	if t.ctx.Err() != nil {
		t.finishLocked(TaskCanceled, canceled(t.ctx.Err()))
		return
	}
	t.finishLocked(TaskFailed, err)
}

// finishLocked sets the terminal state. Caller must hold the mutex.
func (t *task) finishLocked(state TaskState, err error) {
	t.state = state
	t.err = err
	t.cancel()
	close(t.done)
}
