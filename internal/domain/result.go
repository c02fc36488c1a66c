package domain

import "github.com/samber/mo"

// Result is the success-or-failure value returned by every repository call.
// It is immutable once constructed.
type Result[T any] struct {
	inner mo.Result[T]
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{inner: mo.Ok(value)}
}

// Fail wraps a failure. A nil failure is replaced with an unknown one so the
// result never ends up with neither branch populated.
func Fail[T any](f *Failure) Result[T] {
	if f == nil {
		f = UnknownFailure(nil)
	}
	return Result[T]{inner: mo.Err[T](f)}
}

// FromError builds a Result from the usual (value, error) pair.
func FromError[T any](value T, err error) Result[T] {
	if err != nil {
		return Fail[T](AsFailure(err))
	}
	return Ok(value)
}

func (r Result[T]) IsSuccess() bool { return r.inner.IsOk() }

// Value returns the success value, or the zero value for a failure.
func (r Result[T]) Value() T { return r.inner.OrEmpty() }

// Failure returns the failure, or nil for a success.
func (r Result[T]) Failure() *Failure {
	if r.inner.IsOk() {
		return nil
	}
	return AsFailure(r.inner.Error())
}

// Get unpacks the result into Go's (value, error) form.
func (r Result[T]) Get() (T, error) {
	if f := r.Failure(); f != nil {
		var zero T
		return zero, f
	}
	return r.inner.MustGet(), nil
}

// Fold consumes exactly one branch of r.
func Fold[T, R any](r Result[T], onError func(*Failure) R, onSuccess func(T) R) R {
	if f := r.Failure(); f != nil {
		return onError(f)
	}
	return onSuccess(r.inner.MustGet())
}
