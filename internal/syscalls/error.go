package syscalls

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Errno is the platform error code reported by a failing call.
type Errno = unix.Errno

var (
	// ErrNoErrorInfo is an error that occurs when a call signals failure
	// through its sentinel but did not record any error code.
	ErrNoErrorInfo = errors.New("no error information available")

	// ErrGrowthExhausted is an error that occurs when [Query] gives up growing
	// a buffer. It is never an OS error: the kernel did not refuse the call.
	ErrGrowthExhausted = errors.New("buffer growth exhausted")

	// ErrInvalidLength is an error that occurs when a call reports a negative
	// used length without signalling failure.
	ErrInvalidLength = errors.New("call reported invalid used length")

	// ErrUnknownFamily is an error that occurs when no buffer policy is
	// registered for a requested [Family].
	ErrUnknownFamily = errors.New("unknown call family")
)

// GrowthError describes the state [Query] was in when it gave up growing.
type GrowthError struct {
	Attempts int
	Capacity int
	Required int
}

func (e *GrowthError) Error() string {
	if e.Required > 0 {
		return fmt.Sprintf("%v after %d attempts (capacity %d, required %d)",
			ErrGrowthExhausted, e.Attempts, e.Capacity, e.Required)
	}

	return fmt.Sprintf("%v after %d attempts (capacity %d)", ErrGrowthExhausted, e.Attempts, e.Capacity)
}

// Unwrap makes [GrowthError] match [ErrGrowthExhausted] with [errors.Is].
func (e *GrowthError) Unwrap() error {
	return ErrGrowthExhausted
}

// CodeOf extracts the OS error code from err, looking through wrapping. It
// returns 0 when err is nil or carries no code.
func CodeOf(err error) Errno {
	var code Errno
	if errors.As(err, &code) {
		return code
	}

	return 0
}

// Split adapts the (n, error) return of most [unix] functions into the
// (n, code) form the mappers consume. A failure always yields -1 so that the
// sentinel survives functions which leave n undefined on error.
func Split(n int, err error) (int, Errno) {
	if err != nil {
		return -1, CodeOf(err)
	}

	return n, 0
}

// SplitVoid adapts an error-only [unix] function into (0 | -1, code) form.
func SplitVoid(err error) (int, Errno) {
	return Split(0, err)
}

// Describe renders err with the symbolic errno name when it carries one,
// e.g. "ENOENT: no such file or directory".
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if code := CodeOf(err); code != 0 {
		if name := unix.ErrnoName(code); name != "" {
			return fmt.Sprintf("%s: %v", name, err)
		}
	}

	return err.Error()
}
