package upstream

import "errors"

var (
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("upstream: unexpected status")

	// ErrDecode is returned when the body is not the expected JSON.
	ErrDecode = errors.New("upstream: malformed response")
)

// Result is the outcome of one fetch: Value is meaningful only when Err is nil.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}
