// Package syscalls normalizes raw system call results into [Result] values
// and answers variable-size buffer queries through [Query].
//
// Raw operations never touch a process-wide errno. Each one hands its error
// code back together with its return value, so the code a mapper inspects is
// always the one produced by that exact call on that exact thread.
package syscalls

// Void is the payload of calls that only report success or failure.
type Void = struct{}

// Result is the outcome of a single wrapped call: either a value or an error.
// It is produced fresh per call and is meant to be passed by value.
type Result[T any] struct {
	value T
	err   error
}

// Success returns a successful [Result] holding v.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure returns a failed [Result] holding err. A nil err is replaced with
// [ErrNoErrorInfo] so that a failure can never be mistaken for a success.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrNoErrorInfo
	}

	return Result[T]{err: err}
}

// OK reports whether the [Result] is a success.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Err returns the failure reason or nil.
func (r Result[T]) Err() error {
	return r.err
}

// Get returns the value and error in the usual Go form.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Errno returns the OS error code of a failed [Result], if it carries one.
func (r Result[T]) Errno() (Errno, bool) {
	if r.err == nil {
		return 0, false
	}
	code := CodeOf(r.err)

	return code, code != 0
}

// Map transforms the value of a successful [Result] and passes failures
// through untouched.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}

	return Success(fn(r.value))
}

// Optional is a value that may legitimately be absent.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present [Optional].
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent [Optional].
func None[T any]() Optional[T] {
	return Optional[T]{}
}
