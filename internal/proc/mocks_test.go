package proc

import (
	"os"

	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/stretchr/testify/mock"
)

// fakeDirEntry implements os.DirEntry for testing.
type fakeDirEntry struct {
	name string
}

func (f fakeDirEntry) Name() string               { return f.name }
func (f fakeDirEntry) IsDir() bool                { return false }
func (f fakeDirEntry) Type() os.FileMode          { return 0 }
func (f fakeDirEntry) Info() (os.FileInfo, error) { return nil, nil } //nolint: nilnil

func entries(names ...string) []os.DirEntry {
	out := make([]os.DirEntry, 0, len(names))
	for _, name := range names {
		out = append(out, fakeDirEntry{name: name})
	}

	return out
}

// mockOS is an [osProvider] driven by [mock.Mock].
type mockOS struct {
	mock.Mock
}

func (m *mockOS) ReadDir(name string) ([]os.DirEntry, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]os.DirEntry), args.Error(1) //nolint:forcetypeassert
}

// mockUnix is a [unixProvider] driven by [mock.Mock]. Counting functions
// accept either fixed return values or a function computing them.
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

func (m *mockUnix) Readlink(path string, buf []byte) (int, error) {
	args := m.Called(path, buf)
	if fn, ok := args.Get(0).(func(string, []byte) (int, error)); ok {
		return fn(path, buf)
	}

	return args.Int(0), args.Error(1)
}

func (m *mockUnix) Getgroups(buf []byte) (int, error) {
	args := m.Called(buf)
	if fn, ok := args.Get(0).(func([]byte) (int, error)); ok {
		return fn(buf)
	}

	return args.Int(0), args.Error(1)
}

// linkTo returns a readlink implementation cutting target at the buffer.
func linkTo(target string) func(string, []byte) (int, error) {
	return func(_ string, buf []byte) (int, error) {
		return copy(buf, target), nil
	}
}

// fileWith returns a pread implementation serving content.
func fileWith(content string) func(int, []byte, int64) (int, error) {
	return func(_ int, p []byte, off int64) (int, error) {
		if off >= int64(len(content)) {
			return 0, nil
		}

		return copy(p, content[off:]), nil
	}
}
