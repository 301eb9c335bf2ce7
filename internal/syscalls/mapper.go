package syscalls

import (
	"errors"
	"fmt"
)

// Integer is any integer type a raw call can return.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// RawCall performs exactly one OS call and returns its value together with
// the error code that call left behind (0 if none).
type RawCall[T any] func() (T, Errno)

// isNotMinusOne is the validity test of the "-1 or value" idiom.
func isNotMinusOne[I Integer](v I) bool {
	return v != ^I(0)
}

// ValueOrErrno maps calls returning -1 on failure and a payload otherwise.
// A -1 without an error code still fails, with [ErrNoErrorInfo].
func ValueOrErrno[I Integer](op RawCall[I]) Result[I] {
	return ValueOrErrnoWhen(op, isNotMinusOne[I])
}

// ValueOrErrnoWhen is [ValueOrErrno] with a caller-designated success test,
// for families where the failure sentinel is not just -1 (e.g. "> 0").
func ValueOrErrnoWhen[I Integer](op RawCall[I], valid func(I) bool) Result[I] {
	v, code := op()
	if valid(v) {
		return Success(v)
	}
	if code == 0 {
		return Failure[I](ErrNoErrorInfo)
	}

	return Failure[I](code)
}

// VoidOrErrno is [ValueOrErrno] for calls whose payload carries no meaning.
func VoidOrErrno[I Integer](op RawCall[I]) Result[Void] {
	return Map(ValueOrErrno(op), func(I) Void { return Void{} })
}

// FromError maps an (n, error) function of the [unix] package through
// [ValueOrErrno]. A failure carrying no error code fails with
// [ErrNoErrorInfo] wrapping the original error, so that its text is kept.
func FromError(fn func() (int, error)) Result[int] {
	var cause error

	r := ValueOrErrno(func() (int, Errno) {
		n, err := fn()
		cause = err

		return Split(n, err)
	})

	return WithCause(r, cause)
}

// FromVoidError is [FromError] for error-only functions.
func FromVoidError(fn func() error) Result[Void] {
	return Map(FromError(func() (int, error) { return 0, fn() }), func(int) Void { return Void{} })
}

// WithCause attaches cause to a failure of r that carries no error code, so
// that [ErrNoErrorInfo] failures keep the text of what actually went wrong.
// Successes and failures with a code are returned unchanged.
func WithCause[T any](r Result[T], cause error) Result[T] {
	if cause == nil || !errors.Is(r.Err(), ErrNoErrorInfo) {
		return r
	}

	return Failure[T](fmt.Errorf("%w: %w", ErrNoErrorInfo, cause))
}

// ErrnoOrZero maps calls that return 0 on success and the error code itself
// on failure (the pthread family). No side channel is consulted.
func ErrnoOrZero[I Integer](op func() I) Result[Void] {
	rc := op()
	if rc == 0 {
		return Success(Void{})
	}

	return Failure[Void](Errno(rc))
}

// Unwrap maps calls whose result is nullable and where "null" always means
// failure. The recorded code explains the failure, or [ErrNoErrorInfo].
func Unwrap[T any](op func() (T, bool, Errno)) Result[T] {
	v, ok, code := op()
	if ok {
		return Success(v)
	}
	if code == 0 {
		return Failure[T](ErrNoErrorInfo)
	}

	return Failure[T](code)
}

// UnwrapOptional maps nullable calls where "null" may also be a valid "not
// found" answer. absent decides, from the recorded code, whether a missing
// value is such an answer; a nil absent treats only code 0 as "not found".
func UnwrapOptional[T any](op func() (T, bool, Errno), absent func(Errno) bool) Result[Optional[T]] {
	v, ok, code := op()
	if ok {
		return Success(Some(v))
	}
	if absent == nil {
		absent = func(c Errno) bool { return c == 0 }
	}
	if absent(code) {
		return Success(None[T]())
	}
	if code == 0 {
		return Failure[Optional[T]](ErrNoErrorInfo)
	}

	return Failure[Optional[T]](code)
}
