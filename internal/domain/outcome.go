package domain

// OutcomeKind tells which variant an Outcome holds
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	OutcomeCancelled
)

// String returns the outcome name
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the single result of one task execution. A failure never
// carries a payload and a success never carries an error.
type Outcome[T any] struct {
	Kind    OutcomeKind
	Payload T
	Err     error
}

// Succeeded wraps a payload
func Succeeded[T any](payload T) Outcome[T] {
	return Outcome[T]{Kind: OutcomeSuccess, Payload: payload}
}

// Failed wraps an error
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: OutcomeFailure, Err: err}
}

// Cancelled returns the cancelled outcome
func Cancelled[T any]() Outcome[T] {
	return Outcome[T]{Kind: OutcomeCancelled, Err: ErrCancelled}
}

// IsSuccess returns true for a success
func (o Outcome[T]) IsSuccess() bool { return o.Kind == OutcomeSuccess }

// IsFailure returns true for a failure
func (o Outcome[T]) IsFailure() bool { return o.Kind == OutcomeFailure }

// IsCancelled returns true for a cancellation
func (o Outcome[T]) IsCancelled() bool { return o.Kind == OutcomeCancelled }

// Message returns the failure message, falling back to MsgUnspecified.
// It returns "" for non-failures.
func (o Outcome[T]) Message() string {
	if o.Kind != OutcomeFailure {
		return ""
	}
	return MessageOf(o.Err)
}
