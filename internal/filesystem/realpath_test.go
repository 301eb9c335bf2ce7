package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestRealpath_Real tests symbolic link and dot resolution on a real tree.
func TestRealpath_Real(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "f"), nil, 0o600))
	require.NoError(t, os.Symlink(filepath.Join(dir, "a"), filepath.Join(dir, "abs")))
	require.NoError(t, os.Symlink("abs/f", filepath.Join(dir, "rel")))

	h := NewHandler(&syscalls.Unix{}, syscalls.Limits{})
	want := filepath.Join(dir, "a", "f")

	tests := []string{
		want,
		filepath.Join(dir, "rel"),
		filepath.Join(dir, "abs", "f"),
		dir + "/a/../abs/./f",
		dir + "//a///f",
	}
	for _, path := range tests {
		got, err := h.Realpath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	got, err := h.Realpath(filepath.Join(dir, "abs"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a"), got)
}

// TestRealpath_Relative tests resolution against the working directory.
func TestRealpath_Relative(t *testing.T) {
	t.Parallel()

	cwd, err := os.Getwd()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)

	h := NewHandler(&syscalls.Unix{}, syscalls.Limits{})

	got, err := h.Realpath(".")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestRealpath_Fail tests missing components, loops and opaque failures.
func TestRealpath_Fail(t *testing.T) {
	t.Parallel()

	t.Run("Fail_Missing", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(&syscalls.Unix{}, syscalls.Limits{})

		_, err := h.Realpath(filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, err, unix.ENOENT)
		assert.Contains(t, err.Error(), "(fs-realpath)")

		_, err = h.Realpath("")
		require.ErrorIs(t, err, unix.ENOENT)
	})

	t.Run("Fail_NotDirectory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o600))

		h := NewHandler(&syscalls.Unix{}, syscalls.Limits{})

		_, err := h.Realpath(filepath.Join(dir, "f", "x"))
		require.ErrorIs(t, err, unix.ENOTDIR)
	})

	t.Run("Fail_Loop", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.Symlink("y", filepath.Join(dir, "x")))
		require.NoError(t, os.Symlink("x", filepath.Join(dir, "y")))

		h := NewHandler(&syscalls.Unix{}, syscalls.Limits{})

		_, err := h.Realpath(filepath.Join(dir, "x"))
		require.ErrorIs(t, err, unix.ELOOP)
	})

	t.Run("Fail_OpaqueKeepsCause", func(t *testing.T) {
		t.Parallel()

		mockUnix := new(mockUnix)
		h := NewHandler(mockUnix, syscalls.Limits{})

		opaque := errors.New("provider gone")
		mockUnix.On("Lstat", "/opaque", mock.Anything).Return(opaque)

		_, err := h.Realpath("/opaque")
		require.ErrorIs(t, err, syscalls.ErrNoErrorInfo)
		require.ErrorIs(t, err, opaque)
	})
}
