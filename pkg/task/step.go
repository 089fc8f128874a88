package task

import "iter"

// StepKind tells an intermediate suspension apart from the terminal outcome.
type StepKind int

const (
	StepSuspend StepKind = iota
	StepDone
)

func (k StepKind) String() string {
	switch k {
	case StepSuspend:
		return "suspend"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step is one value emitted by an Operation.
type Step[T any] struct {
	Kind    StepKind
	Payload any
	Outcome Outcome[T]
}

// Suspend yields control to the scheduler. A payload implementing Waiter
// is waited on before the operation is resumed.
func Suspend[T any](payload any) Step[T] {
	return Step[T]{Kind: StepSuspend, Payload: payload}
}

// Done ends the operation with o.
func Done[T any](o Outcome[T]) Step[T] {
	return Step[T]{Kind: StepDone, Outcome: o}
}

// Succeed ends the operation with v.
func Succeed[T any](v T) Step[T] {
	return Done(Success(v))
}

// Fail ends the operation with err.
func Fail[T any](err error) Step[T] {
	return Done(Failure[T](err))
}

// Operation is a suspend-capable unit of work. It yields any number of
// StepSuspend steps followed by exactly one StepDone step, and must return
// as soon as yield reports false.
type Operation[T any] iter.Seq[Step[T]]

// Waiter is implemented by suspension payloads that complete asynchronously,
// such as an in-flight HTTP exchange.
type Waiter interface {
	Done() <-chan struct{}
}
