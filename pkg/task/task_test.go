package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanWaiter is a Waiter completed by closing ch.
type chanWaiter struct {
	ch chan struct{}
}

func newChanWaiter() *chanWaiter { return &chanWaiter{ch: make(chan struct{})} }

func (w *chanWaiter) Done() <-chan struct{} { return w.ch }

// countdown suspends n times and then succeeds with v.
func countdown[T any](n int, v T) Operation[T] {
	return func(yield func(Step[T]) bool) {
		for i := 0; i < n; i++ {
			if !yield(Suspend[T](i)) {
				return
			}
		}
		yield(Succeed(v))
	}
}

func TestTask_ValueAfterSuspensions(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		tk := Start(countdown(n, "result"))

		suspensions := 0
		for {
			payload, suspended := tk.Resume()
			if !suspended {
				break
			}
			assert.Equal(t, suspensions, payload)
			suspensions++
		}

		assert.Equal(t, n, suspensions)
		assert.True(t, tk.Resolved())
		v, err := tk.Value()
		require.NoError(t, err)
		assert.Equal(t, "result", v)
	}
}

func TestTask_FailureKeepsError(t *testing.T) {
	boom := errors.New("boom: lost connection")
	op := Operation[int](func(yield func(Step[int]) bool) {
		if !yield(Suspend[int]("first")) {
			return
		}
		if !yield(Suspend[int]("second")) {
			return
		}
		yield(Fail[int](boom))
	})

	tk := Start(op)
	require.NoError(t, tk.Await(context.Background()))

	v, err := tk.Value()
	assert.Zero(t, v)
	assert.Same(t, boom, err)
	assert.Equal(t, "boom: lost connection", err.Error())
}

func TestTask_FirstOutcomeWins(t *testing.T) {
	ranPastDone := false
	op := Operation[int](func(yield func(Step[int]) bool) {
		if !yield(Succeed(1)) {
			return
		}
		ranPastDone = true
		yield(Succeed(2))
	})

	v, err := Run(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, ranPastDone)
}

func TestTask_PanicIsCaptured(t *testing.T) {
	op := Operation[string](func(yield func(Step[string]) bool) {
		if !yield(Suspend[string](nil)) {
			return
		}
		panic("bad state")
	})

	_, err := Run(context.Background(), op)
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "bad state", panicErr.Value)
}

func TestTask_NoOutcome(t *testing.T) {
	op := Operation[string](func(yield func(Step[string]) bool) {
		yield(Suspend[string]("only"))
	})

	_, err := Run(context.Background(), op)
	assert.ErrorIs(t, err, ErrNoOutcome)
}

func TestTask_ValueIsIdempotent(t *testing.T) {
	tk := Start(countdown(2, 42))

	_, err := tk.Value()
	assert.ErrorIs(t, err, ErrNotResolved)

	require.NoError(t, tk.Await(context.Background()))
	for i := 0; i < 3; i++ {
		v, err := tk.Value()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}

	_, suspended := tk.Resume()
	assert.False(t, suspended)
}

func TestTask_AwaitWaitsOnWaiter(t *testing.T) {
	w := newChanWaiter()
	resumed := false
	op := Operation[bool](func(yield func(Step[bool]) bool) {
		if !yield(Suspend[bool](w)) {
			return
		}
		resumed = true
		yield(Succeed(true))
	})

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(w.ch)
	}()

	tk := Start(op)
	require.NoError(t, tk.Await(context.Background()))
	assert.True(t, resumed)
	v, err := tk.Value()
	require.NoError(t, err)
	assert.True(t, v)
}

func TestTask_AwaitContextCancelled(t *testing.T) {
	w := newChanWaiter()
	cleanedUp := make(chan struct{})
	op := Operation[int](func(yield func(Step[int]) bool) {
		defer close(cleanedUp)
		if !yield(Suspend[int](w)) {
			return
		}
		yield(Succeed(1))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	tk := Start(op)
	err := tk.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = tk.Value()
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cleanedUp:
	case <-time.After(time.Second):
		t.Fatal("operation was not stopped")
	}
}

type stoppedError struct {
	cause error
}

func (e *stoppedError) Error() string { return "stopped: " + e.cause.Error() }

func (e *stoppedError) Unwrap() error { return e.cause }

func TestTask_AbortErrorIsMapped(t *testing.T) {
	op := Operation[int](func(yield func(Step[int]) bool) {
		if !yield(Suspend[int](newChanWaiter())) {
			return
		}
		yield(Succeed(1))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	tk := Start(op, WithAbortError(func(err error) error {
		return &stoppedError{cause: err}
	}))
	err := tk.Await(ctx)

	var stopped *stoppedError
	require.ErrorAs(t, err, &stopped)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = tk.Value()
	require.ErrorAs(t, err, &stopped)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTask_ReadersDoNotWaitOnOperation(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	op := Operation[int](func(yield func(Step[int]) bool) {
		close(entered)
		<-release
		yield(Succeed(7))
	})

	tk := Start(op)
	resumed := make(chan struct{})
	go func() {
		defer close(resumed)
		tk.Resume()
	}()

	<-entered
	read := make(chan bool)
	go func() {
		read <- tk.Resolved()
	}()
	select {
	case resolved := <-read:
		assert.False(t, resolved)
	case <-time.After(time.Second):
		t.Fatal("Resolved blocked while the operation was running")
	}

	_, err := tk.Value()
	assert.ErrorIs(t, err, ErrNotResolved)

	close(release)
	<-resumed
	v, err := tk.Value()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFromOutcome(t *testing.T) {
	tk := FromOutcome(Failure[string](errors.New("not configured")))

	assert.True(t, tk.Resolved())
	require.NoError(t, tk.Await(context.Background()))
	_, err := tk.Value()
	assert.EqualError(t, err, "not configured")
}

func TestOutcome(t *testing.T) {
	ok := Success(3)
	assert.True(t, ok.IsSuccess())
	assert.NoError(t, ok.Err())

	failed := Failure[int](nil)
	assert.False(t, failed.IsSuccess())
	assert.ErrorIs(t, failed.Err(), ErrNilFailure)
}

func TestStepKind_String(t *testing.T) {
	assert.Equal(t, "suspend", StepSuspend.String())
	assert.Equal(t, "done", StepDone.String())
	assert.Equal(t, "unknown", StepKind(9).String())
}
