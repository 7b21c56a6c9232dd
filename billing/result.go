package billing

// =============================================================================
// TAGGED RESULT - Ok | Blocked | Failed
// =============================================================================

// ResultStatus tags the outcome of a business operation.
type ResultStatus string

const (
	// StatusOK: the operation completed; Value holds its output.
	StatusOK ResultStatus = "ok"

	// StatusBlocked: an eligibility rule stopped the operation. Not a
	// system error; Reason is surfaced verbatim to the caller.
	StatusBlocked ResultStatus = "blocked"

	// StatusFailed: a system error occurred (not found, bad input,
	// storage). Err carries the cause.
	StatusFailed ResultStatus = "failed"
)

// Result is the tagged outcome of a guarded operation. Exactly one of
// Value, Reason, or Err is meaningful depending on Status.
type Result[T any] struct {
	Status ResultStatus
	Value  T
	Reason BlockReason
	Err    error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Status: StatusOK, Value: v}
}

// Block wraps an eligibility refusal.
func Block[T any](reason BlockReason) Result[T] {
	return Result[T]{Status: StatusBlocked, Reason: reason}
}

// Fail wraps a system error.
func Fail[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

// OK reports whether the operation completed.
func (r Result[T]) OK() bool { return r.Status == StatusOK }

// Blocked reports whether an eligibility rule refused the operation.
func (r Result[T]) Blocked() bool { return r.Status == StatusBlocked }
