package filesystem

import (
	"github.com/stretchr/testify/mock"
	"golang.org/x/sys/unix"
)

// mockUnix is a [unixProvider] driven by [mock.Mock]. Counting functions
// accept either fixed return values or a function computing them.
type mockUnix struct {
	mock.Mock
}

func (m *mockUnix) Stat(path string, stat *unix.Stat_t) error {
	return m.Called(path, stat).Error(0)
}

func (m *mockUnix) Lstat(path string, stat *unix.Stat_t) error {
	return m.Called(path, stat).Error(0)
}

func (m *mockUnix) Fstat(fd int, stat *unix.Stat_t) error {
	return m.Called(fd, stat).Error(0)
}

func (m *mockUnix) Statfs(path string, buf *unix.Statfs_t) error {
	return m.Called(path, buf).Error(0)
}

func (m *mockUnix) Fstatfs(fd int, buf *unix.Statfs_t) error {
	return m.Called(fd, buf).Error(0)
}

func (m *mockUnix) Readlink(path string, buf []byte) (int, error) {
	args := m.Called(path, buf)
	if fn, ok := args.Get(0).(func(string, []byte) (int, error)); ok {
		return fn(path, buf)
	}

	return args.Int(0), args.Error(1)
}

func (m *mockUnix) Getcwd(buf []byte) (int, error) {
	args := m.Called(buf)
	if fn, ok := args.Get(0).(func([]byte) (int, error)); ok {
		return fn(buf)
	}

	return args.Int(0), args.Error(1)
}

func (m *mockUnix) Listxattr(path string, dest []byte) (int, error) {
	args := m.Called(path, dest)
	if fn, ok := args.Get(0).(func(string, []byte) (int, error)); ok {
		return fn(path, dest)
	}

	return args.Int(0), args.Error(1)
}

func (m *mockUnix) Getxattr(path string, attr string, dest []byte) (int, error) {
	args := m.Called(path, attr, dest)
	if fn, ok := args.Get(0).(func(string, string, []byte) (int, error)); ok {
		return fn(path, attr, dest)
	}

	return args.Int(0), args.Error(1)
}

// mockDiskStats is a [diskStatProvider] driven by [mock.Mock].
type mockDiskStats struct {
	mock.Mock
}

func (m *mockDiskStats) GetDiskUsage(path string) (DiskStats, error) {
	args := m.Called(path)

	return args.Get(0).(DiskStats), args.Error(1) //nolint:forcetypeassert
}
