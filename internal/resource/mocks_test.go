package resource

import (
	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/stretchr/testify/mock"
)

// mockUnix is a [unixProvider] driven by [mock.Mock].
type mockUnix struct {
	mock.Mock
}

func (m *mockUnix) Open(path string, mode int, perm uint32) (int, error) {
	args := m.Called(path, mode, perm)

	return args.Int(0), args.Error(1)
}

func (m *mockUnix) Close(fd int) error {
	return m.Called(fd).Error(0)
}

func (m *mockUnix) Pread(fd int, p []byte, offset int64) (int, error) {
	args := m.Called(fd, p, offset)
	if fn, ok := args.Get(0).(func(int, []byte, int64) (int, error)); ok {
		return fn(fd, p, offset)
	}

	return args.Int(0), args.Error(1)
}

func (m *mockUnix) Flock(fd int, how int) error {
	return m.Called(fd, how).Error(0)
}

func (m *mockUnix) Fadvise(fd int, offset int64, length int64, advice int) syscalls.Errno {
	return m.Called(fd, offset, length, advice).Get(0).(syscalls.Errno) //nolint:forcetypeassert
}
