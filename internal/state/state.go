// Package state provides the request-state machine every network-backed
// operation publishes: idle, loading, success, failure and validationError,
// plus the bounded retry policy that drives it.
package state

import (
	"github.com/arabah/arabah-cli/internal/api"
)

// Phase identifies which variant of RequestState is active.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failure
	ValidationError
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case ValidationError:
		return "validation_error"
	default:
		return "unknown"
	}
}

// RequestState is a tagged union: Value is meaningful only in Success, Err
// only in Failure and ValidationError.
type RequestState[T any] struct {
	Phase Phase
	Value T
	Err   *api.Error
}

// NewIdle returns the idle state.
func NewIdle[T any]() RequestState[T] {
	return RequestState[T]{Phase: Idle}
}

// NewLoading returns the loading state.
func NewLoading[T any]() RequestState[T] {
	return RequestState[T]{Phase: Loading}
}

// Succeeded returns a success state carrying v.
func Succeeded[T any](v T) RequestState[T] {
	return RequestState[T]{Phase: Success, Value: v}
}

// Failed returns a failure state carrying err.
func Failed[T any](err *api.Error) RequestState[T] {
	return RequestState[T]{Phase: Failure, Err: err}
}

// Invalid returns a validationError state carrying err.
func Invalid[T any](err *api.Error) RequestState[T] {
	return RequestState[T]{Phase: ValidationError, Err: err}
}

// Settled reports whether no pipeline is running for this state.
func (s RequestState[T]) Settled() bool {
	return s.Phase != Loading
}

// Retryable reports whether a retry affordance should be offered.
// validationError never is: either the input was rejected or retries ran out.
func (s RequestState[T]) Retryable() bool {
	return s.Phase == Failure
}

func (s RequestState[T]) String() string {
	if s.Err != nil {
		return s.Phase.String() + "(" + s.Err.Error() + ")"
	}
	return s.Phase.String()
}
