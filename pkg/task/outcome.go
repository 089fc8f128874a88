package task

import "errors"

// ErrNilFailure replaces a nil error handed to Failure.
var ErrNilFailure = errors.New("task: failure outcome without error")

// Outcome is the terminal result of an operation: a value or an error,
// never both.
type Outcome[T any] struct {
	value T
	err   error
}

// Success wraps v as a successful outcome.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failure wraps err as a failed outcome.
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		err = ErrNilFailure
	}
	return Outcome[T]{err: err}
}

// Get returns the value, or the zero value and the failure.
func (o Outcome[T]) Get() (T, error) {
	if o.err != nil {
		var zero T
		return zero, o.err
	}
	return o.value, nil
}

func (o Outcome[T]) Err() error { return o.err }

func (o Outcome[T]) IsSuccess() bool { return o.err == nil }
