package task

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Runnable is a task that a Loop can drive. It is implemented by *Task[T].
type Runnable interface {
	ID() string
	Resolved() bool
	Resume() (any, bool)
	wait() <-chan struct{}
	abort(err error) error
}

// Loop advances several tasks on the calling goroutine. Tasks take turns:
// each round resumes every task whose pending waiter (if any) is ready, and
// the loop only blocks when no task can make progress.
type Loop struct {
	mu     sync.Mutex
	tasks  []Runnable
	logger *zap.Logger
}

// NewLoop creates an empty loop. A nil logger disables logging.
func NewLoop(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{logger: logger}
}

// Add schedules tasks on the loop.
func (l *Loop) Add(tasks ...Runnable) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tasks = append(l.tasks, tasks...)
}

func (l *Loop) snapshot() []Runnable {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Runnable(nil), l.tasks...)
}

// Run drives every scheduled task until all are resolved. When ctx ends
// first, unresolved tasks are stopped (see Task.Await) and ctx.Err() is
// returned.
func (l *Loop) Run(ctx context.Context) error {
	for {
		progressed := false
		var blocked []<-chan struct{}

		for _, t := range l.snapshot() {
			if t.Resolved() {
				continue
			}
			if ch := t.wait(); ch != nil && !isClosed(ch) {
				blocked = append(blocked, ch)
				continue
			}
			if payload, suspended := t.Resume(); suspended {
				l.logger.Debug("Task suspended",
					zap.String("task_id", t.ID()),
					zap.String("payload", fmt.Sprintf("%T", payload)))
			} else {
				l.logger.Debug("Task resolved", zap.String("task_id", t.ID()))
			}
			progressed = true
		}

		if err := ctx.Err(); err != nil {
			l.abortAll(err)
			return err
		}
		if progressed {
			continue
		}
		if len(blocked) == 0 {
			return nil
		}

		if err := waitAny(ctx, blocked); err != nil {
			l.abortAll(err)
			return err
		}
	}
}

func (l *Loop) abortAll(err error) {
	for _, t := range l.snapshot() {
		t.abort(err)
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// waitAny blocks until one of chans is closed or ctx ends.
func waitAny(ctx context.Context, chans []<-chan struct{}) error {
	cases := make([]reflect.SelectCase, 0, len(chans)+1)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
	for _, ch := range chans {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ch)})
	}
	if chosen, _, _ := reflect.Select(cases); chosen == 0 {
		return ctx.Err()
	}
	return nil
}
