package syscalls

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsInterrupted reports whether err is an interrupted-call failure.
func IsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

// RetryWhileInterrupted re-runs op for as long as it fails with EINTR.
//
// The loop is unbounded: interruption is bounded externally by signal
// delivery, but a pathological signal storm can keep the caller spinning
// here. Use [RetryWhileInterruptedN] where that liveness risk matters.
func RetryWhileInterrupted[T any](op func() Result[T]) Result[T] {
	return RetryWhileInterruptedN(0, op)
}

// RetryWhileInterruptedN is [RetryWhileInterrupted] giving up after
// maxAttempts calls (maxAttempts <= 0 means unbounded). When it gives up, the
// last EINTR failure is returned.
func RetryWhileInterruptedN[T any](maxAttempts int, op func() Result[T]) Result[T] {
	for attempt := 1; ; attempt++ {
		r := op()
		if r.OK() || !IsInterrupted(r.Err()) {
			return r
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return r
		}
	}
}
