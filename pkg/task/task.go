// Package task runs suspend-capable operations and hands their typed result
// (or failure) back to the caller once they are resolved.
//
// An Operation yields StepSuspend steps whenever it waits on something
// external and finishes with a single StepDone step carrying its Outcome.
// A Task supervises one operation: Resume advances it by one step and
// forwards intermediate suspensions to whoever drives it, Await drives it to
// the end, and Value returns the captured outcome.
//
//	t := task.Start(op)
//	if err := t.Await(ctx); err != nil {
//		return err
//	}
//	v, err := t.Value()
//
// Several tasks can share one goroutine through a Loop.
package task

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrNotResolved is returned by Value before the task has finished.
	ErrNotResolved = errors.New("task: value requested before the task was resolved")
	// ErrNoOutcome resolves a task whose operation returned without a StepDone step.
	ErrNoOutcome = errors.New("task: operation finished without an outcome")
)

// PanicError captures a panic raised by an operation while it was advanced.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task: operation panicked: %v", e.Value)
}

// Task supervises one Operation. A Task must be driven from one goroutine
// at a time; Value, Outcome and Resolved may be read from any goroutine and
// never wait on the operation.
type Task[T any] struct {
	id      string
	next    func() (Step[T], bool)
	stop    func()
	onAbort func(error) error

	mu       sync.Mutex
	resolved bool
	outcome  Outcome[T]
	pending  any
}

// Option configures a Task created by Start.
type Option func(*options)

type options struct {
	onAbort func(error) error
}

// WithAbortError maps the context error a task is stopped with before it
// becomes the task's failure.
func WithAbortError(fn func(error) error) Option {
	return func(o *options) {
		o.onAbort = fn
	}
}

// Start wraps op in a Task. The operation does not run until the task is
// resumed.
func Start[T any](op Operation[T], opts ...Option) *Task[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	next, stop := iter.Pull(iter.Seq[Step[T]](op))
	return &Task[T]{
		id:      uuid.NewString(),
		next:    next,
		stop:    stop,
		onAbort: o.onAbort,
	}
}

// FromOutcome returns a task already holding o. Useful for operations that
// fail before doing any work.
func FromOutcome[T any](o Outcome[T]) *Task[T] {
	return &Task[T]{
		id:       uuid.NewString(),
		resolved: true,
		outcome:  o,
	}
}

// ID identifies the task in logs.
func (t *Task[T]) ID() string { return t.id }

// Resume advances the operation to its next step. When the operation
// suspends, the payload is returned with suspended set to true. Once the
// operation produces its outcome, panics, or returns, the task is resolved
// and Resume keeps returning (nil, false).
func (t *Task[T]) Resume() (payload any, suspended bool) {
	if t.Resolved() {
		return nil, false
	}

	// The operation runs unlocked so readers are not held up by it. Only
	// the driving goroutine resolves the task from here on.
	step, ok, err := t.advance()

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case err != nil:
		t.resolveLocked(Failure[T](err))
	case !ok:
		t.resolveLocked(Failure[T](ErrNoOutcome))
	case step.Kind == StepDone:
		t.resolveLocked(step.Outcome)
	default:
		t.pending = step.Payload
		return step.Payload, true
	}
	return nil, false
}

func (t *Task[T]) advance() (step Step[T], ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	step, ok = t.next()
	return step, ok, nil
}

func (t *Task[T]) resolveLocked(o Outcome[T]) {
	t.resolved = true
	t.outcome = o
	t.pending = nil
	if t.stop != nil {
		t.stop()
	}
}

// Await drives the task until it is resolved, waiting on every suspension
// payload that implements Waiter. It returns a non-nil error only when ctx
// ends first, in which case the task is stopped and resolved with ctx.Err()
// (mapped through WithAbortError when set) and that error is returned.
func (t *Task[T]) Await(ctx context.Context) error {
	for {
		payload, suspended := t.Resume()
		if !suspended {
			return nil
		}

		if w, ok := payload.(Waiter); ok {
			select {
			case <-w.Done():
			case <-ctx.Done():
				return t.abort(ctx.Err())
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return t.abort(err)
		}
	}
}

// abort resolves an unresolved task with err and stops its operation. It
// returns the error the task was stopped with.
func (t *Task[T]) abort(err error) error {
	if t.onAbort != nil {
		err = t.onAbort(err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.resolved {
		t.resolveLocked(Failure[T](err))
	}
	return err
}

// Value returns the operation's result. It reports ErrNotResolved until the
// task is resolved; afterwards every call returns the same value or error.
func (t *Task[T]) Value() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.resolved {
		var zero T
		return zero, ErrNotResolved
	}
	return t.outcome.Get()
}

// Outcome returns the captured outcome and whether the task is resolved.
func (t *Task[T]) Outcome() (Outcome[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome, t.resolved
}

func (t *Task[T]) Resolved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolved
}

// wait returns the channel of the pending Waiter, or nil when the task can
// be resumed right away.
func (t *Task[T]) wait() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w, ok := t.pending.(Waiter); ok {
		return w.Done()
	}
	return nil
}

// Run starts op, waits for it and returns its value.
func Run[T any](ctx context.Context, op Operation[T]) (T, error) {
	return Wait(ctx, Start(op))
}

// Wait awaits t and returns its value.
func Wait[T any](ctx context.Context, t *Task[T]) (T, error) {
	if err := t.Await(ctx); err != nil {
		var zero T
		return zero, err
	}
	return t.Value()
}
