package syscalls

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Family identifies a group of calls sharing one buffer-size contract.
type Family string

const (
	// FamilyReadlink covers readlink(2): the result is silently cut at the
	// buffer size, so an exact fit is ambiguous.
	FamilyReadlink Family = "readlink"

	// FamilyGetcwd covers getcwd(2): too small buffers fail with ERANGE.
	FamilyGetcwd Family = "getcwd"

	// FamilyXattrList covers listxattr(2): probing with size 0 is supported
	// and a list growing after the probe fails with ERANGE.
	FamilyXattrList Family = "listxattr"

	// FamilyXattrGet covers getxattr(2), with the same contract as listxattr.
	FamilyXattrGet Family = "getxattr"

	// FamilyGroups covers getgroups(2): probing with size 0 is supported and
	// a too small list fails with EINVAL.
	FamilyGroups Family = "getgroups"

	// FamilyProcFile covers reads of procfs files, which report no size and
	// are cut at the buffer size like readlink.
	FamilyProcFile Family = "procfile"
)

func isErrno(want Errno) func(Errno) bool {
	return func(code Errno) bool {
		return code == want
	}
}

// familyPolicies is the per-family resolution of the exact-fit question.
//
//nolint:gochecknoglobals
var familyPolicies = map[Family]Options{
	FamilyReadlink: {
		Strategy:        GuessAndGrow,
		InitialCapacity: 256,
		Fit:             ExactFitTruncates,
	},
	FamilyGetcwd: {
		Strategy:        GuessAndGrow,
		InitialCapacity: 256,
		Fit:             ExactFitComplete,
		TooSmall:        isErrno(unix.ERANGE),
	},
	FamilyXattrList: {
		Strategy: ProbeThenFill,
		Fit:      ExactFitComplete,
		TooSmall: isErrno(unix.ERANGE),
	},
	FamilyXattrGet: {
		Strategy: ProbeThenFill,
		Fit:      ExactFitComplete,
		TooSmall: isErrno(unix.ERANGE),
	},
	FamilyGroups: {
		Strategy: ProbeThenFill,
		Fit:      ExactFitComplete,
		TooSmall: isErrno(unix.EINVAL),
	},
	FamilyProcFile: {
		Strategy:        GuessAndGrow,
		InitialCapacity: 4096,
		Fit:             ExactFitTruncates,
	},
}

// PolicyFor returns the [Options] registered for a [Family].
func PolicyFor(f Family) (Options, error) {
	opts, ok := familyPolicies[f]
	if !ok {
		return Options{}, fmt.Errorf("%w: %q", ErrUnknownFamily, f)
	}

	return opts, nil
}

// MustPolicyFor is [PolicyFor] for the families declared in this package.
func MustPolicyFor(f Family) Options {
	opts, err := PolicyFor(f)
	if err != nil {
		panic(err)
	}

	return opts
}

// Limits are process-wide bounds applied on top of a family policy.
// Zero fields keep the policy's own bounds.
type Limits struct {
	MaxAttempts int
	MaxCapacity int
	// Interrupts bounds EINTR retries; 0 retries without bound.
	Interrupts int
}

// Apply returns opts with the non-zero bounds of l.
func (l Limits) Apply(opts Options) Options {
	if l.MaxAttempts > 0 {
		opts.MaxAttempts = l.MaxAttempts
	}
	if l.MaxCapacity > 0 {
		opts.MaxCapacity = l.MaxCapacity
	}

	return opts
}

// QueryFamily runs [Query] with the policy of f bounded by l.
func QueryFamily(f Family, l Limits, call QueryCall) Result[[]byte] {
	opts, err := PolicyFor(f)
	if err != nil {
		return Failure[[]byte](err)
	}

	return Query(l.Apply(opts), call)
}

// Retry runs op with the interrupted-call bound of l, or without bound when
// l sets none.
func Retry[T any](l Limits, op func() Result[T]) Result[T] {
	if l.Interrupts <= 0 {
		return RetryWhileInterrupted(op)
	}

	return RetryWhileInterruptedN(l.Interrupts, op)
}
