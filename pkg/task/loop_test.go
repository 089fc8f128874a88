package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoop_InterleavesTasks(t *testing.T) {
	var trace []string
	record := func(name string, n int) Operation[string] {
		return func(yield func(Step[string]) bool) {
			for i := 0; i < n; i++ {
				trace = append(trace, fmt.Sprintf("%s%d", name, i))
				if !yield(Suspend[string](nil)) {
					return
				}
			}
			yield(Succeed(name))
		}
	}

	a := Start(record("a", 2))
	b := Start(record("b", 2))

	loop := NewLoop(zap.NewNop())
	loop.Add(a, b)
	require.NoError(t, loop.Run(context.Background()))

	assert.Equal(t, []string{"a0", "b0", "a1", "b1"}, trace)

	va, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, "a", va)
	vb, err := b.Value()
	require.NoError(t, err)
	assert.Equal(t, "b", vb)
}

func TestLoop_BlocksOnWaiters(t *testing.T) {
	slow := newChanWaiter()
	fast := newChanWaiter()

	waitOn := func(w *chanWaiter, v int) Operation[int] {
		return func(yield func(Step[int]) bool) {
			if !yield(Suspend[int](w)) {
				return
			}
			yield(Succeed(v))
		}
	}

	s := Start(waitOn(slow, 1))
	f := Start(waitOn(fast, 2))

	go func() {
		time.Sleep(5 * time.Millisecond)
		close(fast.ch)
		time.Sleep(5 * time.Millisecond)
		close(slow.ch)
	}()

	loop := NewLoop(nil)
	loop.Add(s, f)
	require.NoError(t, loop.Run(context.Background()))

	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = f.Value()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLoop_ContextCancelled(t *testing.T) {
	never := newChanWaiter()
	op := Operation[int](func(yield func(Step[int]) bool) {
		if !yield(Suspend[int](never)) {
			return
		}
		yield(Succeed(1))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	tk := Start(op)
	loop := NewLoop(nil)
	loop.Add(tk)

	err := loop.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = tk.Value()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoop_Empty(t *testing.T) {
	assert.NoError(t, NewLoop(nil).Run(context.Background()))
}
