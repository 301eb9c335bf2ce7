package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestReadlink_Growth tests that long targets are never truncated.
func TestReadlink_Growth(t *testing.T) {
	t.Parallel()

	target := "/" + strings.Repeat("x", 599)

	var sizes []int
	readlink := func(_ string, buf []byte) (int, error) {
		sizes = append(sizes, len(buf))

		return copy(buf, target), nil
	}

	mockUnix := new(mockUnix)
	h := NewHandler(mockUnix, syscalls.Limits{})

	mockUnix.On("Readlink", "/link", mock.Anything).Return(readlink)

	got, err := h.Readlink("/link")
	require.NoError(t, err)
	assert.Equal(t, target, got)
	assert.Equal(t, []int{256, 512, 1024}, sizes)
}

// TestReadlink_ExactFit tests that a target exactly filling the buffer is
// re-read with a larger buffer.
func TestReadlink_ExactFit(t *testing.T) {
	t.Parallel()

	target := strings.Repeat("y", 256)

	mockUnix := new(mockUnix)
	h := NewHandler(mockUnix, syscalls.Limits{})

	mockUnix.On("Readlink", "/link", mock.Anything).Return(func(_ string, buf []byte) (int, error) {
		return copy(buf, target), nil
	})

	got, err := h.Readlink("/link")
	require.NoError(t, err)
	assert.Equal(t, target, got)
	mockUnix.AssertNumberOfCalls(t, "Readlink", 2)
}

// TestReadlink_Fail tests error surfacing.
func TestReadlink_Fail(t *testing.T) {
	t.Parallel()

	mockUnix := new(mockUnix)
	h := NewHandler(mockUnix, syscalls.Limits{})

	mockUnix.On("Readlink", "/file", mock.Anything).Return(-1, unix.EINVAL)

	_, err := h.Readlink("/file")
	require.ErrorIs(t, err, unix.EINVAL)
	assert.Contains(t, err.Error(), "(fs-readlink)")
}

// TestReadlink_Exhausted tests the growth bound of the [syscalls.Limits].
func TestReadlink_Exhausted(t *testing.T) {
	t.Parallel()

	mockUnix := new(mockUnix)
	h := NewHandler(mockUnix, syscalls.Limits{MaxCapacity: 1024})

	mockUnix.On("Readlink", "/loop", mock.Anything).Return(func(_ string, buf []byte) (int, error) {
		return len(buf), nil
	})

	_, err := h.Readlink("/loop")
	require.ErrorIs(t, err, syscalls.ErrGrowthExhausted)
}

// TestReadlink_Real tests a long symbolic link against the real OS.
func TestReadlink_Real(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	link := filepath.Join(dir, "link")
	target := filepath.Join("/nonexistent", strings.Repeat("segment/", 150))

	require.NoError(t, os.Symlink(target, link))

	h := NewHandler(&syscalls.Unix{}, syscalls.Limits{})

	got, err := h.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

// TestGetwd_Growth tests ERANGE driven growth and NUL trimming.
func TestGetwd_Growth(t *testing.T) {
	t.Parallel()

	cwd := "/" + strings.Repeat("d", 300)

	mockUnix := new(mockUnix)
	h := NewHandler(mockUnix, syscalls.Limits{})

	mockUnix.On("Getcwd", mock.Anything).Return(func(buf []byte) (int, error) {
		if len(buf) < len(cwd)+1 {
			return -1, unix.ERANGE
		}

		return copy(buf, cwd+"\x00"), nil
	})

	got, err := h.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, got)
	mockUnix.AssertNumberOfCalls(t, "Getcwd", 2)
}

// TestGetwd_Real tests the working directory against the real OS.
func TestGetwd_Real(t *testing.T) {
	t.Parallel()

	h := NewHandler(&syscalls.Unix{}, syscalls.Limits{})

	want, err := unix.Getwd()
	require.NoError(t, err)

	got, err := h.Getwd()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
