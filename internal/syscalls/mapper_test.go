package syscalls

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestValueOrErrno tests the "-1 or value" mapper.
func TestValueOrErrno(t *testing.T) {
	t.Parallel()

	t.Run("Success_Value", func(t *testing.T) {
		t.Parallel()

		v, err := ValueOrErrno(func() (int32, Errno) { return 42, 0 }).Get()
		require.NoError(t, err)
		assert.Equal(t, int32(42), v)
	})

	t.Run("Success_ZeroValue", func(t *testing.T) {
		t.Parallel()

		r := ValueOrErrno(func() (int, Errno) { return 0, 0 })
		assert.True(t, r.OK())
	})

	t.Run("Fail_SentinelWithCode", func(t *testing.T) {
		t.Parallel()

		r := ValueOrErrno(func() (int, Errno) { return -1, unix.ENOMEM })
		require.ErrorIs(t, r.Err(), unix.ENOMEM)

		code, ok := r.Errno()
		assert.True(t, ok)
		assert.Equal(t, unix.ENOMEM, code)
	})

	t.Run("Fail_SentinelWithoutCode", func(t *testing.T) {
		t.Parallel()

		r := ValueOrErrno(func() (int64, Errno) { return -1, 0 })
		require.False(t, r.OK())
		require.ErrorIs(t, r.Err(), ErrNoErrorInfo)

		_, ok := r.Errno()
		assert.False(t, ok)
	})

	t.Run("Success_CodeIgnoredOnValue", func(t *testing.T) {
		t.Parallel()

		// A stale code next to a valid value is not a failure.
		v, err := ValueOrErrno(func() (int, Errno) { return 7, unix.EAGAIN }).Get()
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}

// TestValueOrErrno_CallsOnce tests that the operation runs exactly once.
func TestValueOrErrno_CallsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	_ = ValueOrErrno(func() (int, Errno) {
		calls++

		return -1, unix.EINTR
	})

	assert.Equal(t, 1, calls)
}

// TestValueOrErrnoWhen tests the mapper with a designated success test.
func TestValueOrErrnoWhen(t *testing.T) {
	t.Parallel()

	positive := func(v int32) bool { return v > 0 }

	r := ValueOrErrnoWhen(func() (int32, Errno) { return 0, unix.ESRCH }, positive)
	require.ErrorIs(t, r.Err(), unix.ESRCH)

	v, err := ValueOrErrnoWhen(func() (int32, Errno) { return 12, 0 }, positive).Get()
	require.NoError(t, err)
	assert.Equal(t, int32(12), v)
}

// TestVoidOrErrno tests the payload-less mapper.
func TestVoidOrErrno(t *testing.T) {
	t.Parallel()

	assert.True(t, VoidOrErrno(func() (int, Errno) { return 0, 0 }).OK())
	require.ErrorIs(t, VoidOrErrno(func() (int, Errno) { return -1, unix.EPERM }).Err(), unix.EPERM)
}

// TestErrnoOrZero tests the "return value is the error" mapper.
func TestErrnoOrZero(t *testing.T) {
	t.Parallel()

	assert.True(t, ErrnoOrZero(func() int32 { return 0 }).OK())

	r := ErrnoOrZero(func() int32 { return int32(unix.EBUSY) })
	require.ErrorIs(t, r.Err(), unix.EBUSY)
}

// TestUnwrap tests the nullable mapper where null is always a failure.
func TestUnwrap(t *testing.T) {
	t.Parallel()

	v, err := Unwrap(func() (string, bool, Errno) { return "x", true, 0 }).Get()
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	r := Unwrap(func() (string, bool, Errno) { return "", false, unix.ENOENT })
	require.ErrorIs(t, r.Err(), unix.ENOENT)

	r = Unwrap(func() (string, bool, Errno) { return "", false, 0 })
	require.ErrorIs(t, r.Err(), ErrNoErrorInfo)
}

// TestUnwrapOptional tests the nullable mapper with a "not found" predicate.
func TestUnwrapOptional(t *testing.T) {
	t.Parallel()

	t.Run("Success_Present", func(t *testing.T) {
		t.Parallel()

		v, err := UnwrapOptional(func() (int, bool, Errno) { return 3, true, 0 }, nil).Get()
		require.NoError(t, err)
		assert.Equal(t, Some(3), v)
	})

	t.Run("Success_AbsentWithoutCode", func(t *testing.T) {
		t.Parallel()

		v, err := UnwrapOptional(func() (int, bool, Errno) { return 0, false, 0 }, nil).Get()
		require.NoError(t, err)
		assert.False(t, v.Valid)
	})

	t.Run("Success_AbsentByPredicate", func(t *testing.T) {
		t.Parallel()

		absent := func(c Errno) bool { return c == unix.ENODATA }
		v, err := UnwrapOptional(func() (int, bool, Errno) { return 0, false, unix.ENODATA }, absent).Get()
		require.NoError(t, err)
		assert.Equal(t, None[int](), v)
	})

	t.Run("Fail_Error", func(t *testing.T) {
		t.Parallel()

		absent := func(c Errno) bool { return c == unix.ENODATA }
		r := UnwrapOptional(func() (int, bool, Errno) { return 0, false, unix.EACCES }, absent)
		require.ErrorIs(t, r.Err(), unix.EACCES)
	})

	t.Run("Fail_PredicateRejectsMissingCode", func(t *testing.T) {
		t.Parallel()

		never := func(Errno) bool { return false }
		r := UnwrapOptional(func() (int, bool, Errno) { return 0, false, 0 }, never)
		require.ErrorIs(t, r.Err(), ErrNoErrorInfo)
	})
}

// TestFailure_NilError tests that a failure can never carry a nil error.
func TestFailure_NilError(t *testing.T) {
	t.Parallel()

	r := Failure[int](nil)
	assert.False(t, r.OK())
	require.ErrorIs(t, r.Err(), ErrNoErrorInfo)
}

// TestMap tests value transformation and failure passthrough.
func TestMap(t *testing.T) {
	t.Parallel()

	double := func(v int) int { return v * 2 }

	v, err := Map(Success(4), double).Get()
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	r := Map(Failure[int](unix.EIO), double)
	require.ErrorIs(t, r.Err(), unix.EIO)
}

// TestSplit tests the adaption of (n, error) returns.
func TestSplit(t *testing.T) {
	t.Parallel()

	n, code := Split(5, nil)
	assert.Equal(t, 5, n)
	assert.Equal(t, Errno(0), code)

	n, code = Split(0, unix.ENOENT)
	assert.Equal(t, -1, n)
	assert.Equal(t, unix.ENOENT, code)

	n, code = Split(3, errors.New("opaque"))
	assert.Equal(t, -1, n)
	assert.Equal(t, Errno(0), code)

	r := ValueOrErrno(func() (int, Errno) { return Split(3, errors.New("opaque")) })
	require.ErrorIs(t, r.Err(), ErrNoErrorInfo)
}

// TestFromError tests the adapter of (n, error) functions.
func TestFromError(t *testing.T) {
	t.Parallel()

	t.Run("Success_Value", func(t *testing.T) {
		t.Parallel()

		n, err := FromError(func() (int, error) { return 7, nil }).Get()
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	})

	t.Run("Fail_Errno", func(t *testing.T) {
		t.Parallel()

		r := FromError(func() (int, error) { return 0, &wrapErr{unix.EBADF} })
		require.ErrorIs(t, r.Err(), unix.EBADF)
		assert.NotErrorIs(t, r.Err(), ErrNoErrorInfo)
	})

	t.Run("Fail_KeepsOpaqueError", func(t *testing.T) {
		t.Parallel()

		opaque := errors.New("opaque provider failure")

		r := FromError(func() (int, error) { return 3, opaque })
		require.ErrorIs(t, r.Err(), ErrNoErrorInfo)
		require.ErrorIs(t, r.Err(), opaque)
		assert.Contains(t, r.Err().Error(), "opaque provider failure")

		_, isOSError := r.Errno()
		assert.False(t, isOSError)
	})

	t.Run("Fail_SentinelWithoutError", func(t *testing.T) {
		t.Parallel()

		r := FromError(func() (int, error) { return -1, nil })
		require.ErrorIs(t, r.Err(), ErrNoErrorInfo)
		assert.Equal(t, ErrNoErrorInfo, r.Err())
	})

	t.Run("Fail_Void", func(t *testing.T) {
		t.Parallel()

		opaque := errors.New("opaque")

		r := FromVoidError(func() error { return opaque })
		require.ErrorIs(t, r.Err(), opaque)
		require.NoError(t, FromVoidError(func() error { return nil }).Err())
	})
}

// TestCodeOf tests errno extraction through wrapping.
func TestCodeOf(t *testing.T) {
	t.Parallel()

	wrapped := &wrapErr{unix.EACCES}
	assert.Equal(t, unix.EACCES, CodeOf(wrapped))
	assert.Equal(t, Errno(0), CodeOf(nil))
	assert.Equal(t, Errno(0), CodeOf(ErrNoErrorInfo))
}

// TestDescribe tests symbolic error rendering.
func TestDescribe(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Describe(nil))
	assert.Contains(t, Describe(unix.ENOENT), "ENOENT")
	assert.Equal(t, ErrNoErrorInfo.Error(), Describe(ErrNoErrorInfo))
}

type wrapErr struct {
	err error
}

func (w *wrapErr) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapErr) Unwrap() error { return w.err }
