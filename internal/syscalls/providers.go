package syscalls

import (
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// OS is an implementation wrapping operating system functions.
type OS struct{}

// ReadDir wraps around [os.ReadDir].
func (*OS) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

// LookupEnv wraps around [os.LookupEnv].
func (*OS) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Setenv wraps around [os.Setenv].
func (*OS) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// Unsetenv wraps around [os.Unsetenv].
func (*OS) Unsetenv(key string) error {
	return os.Unsetenv(key)
}

// Environ wraps around [os.Environ].
func (*OS) Environ() []string {
	return os.Environ()
}

// Unix is an implementation wrapping Unix operating system functions.
type Unix struct{}

// Stat wraps around [unix.Stat].
func (*Unix) Stat(path string, stat *unix.Stat_t) error {
	return unix.Stat(path, stat)
}

// Lstat wraps around [unix.Lstat].
func (*Unix) Lstat(path string, stat *unix.Stat_t) error {
	return unix.Lstat(path, stat)
}

// Fstat wraps around [unix.Fstat].
func (*Unix) Fstat(fd int, stat *unix.Stat_t) error {
	return unix.Fstat(fd, stat)
}

// Statfs wraps around [unix.Statfs].
func (*Unix) Statfs(path string, buf *unix.Statfs_t) error {
	return unix.Statfs(path, buf)
}

// Fstatfs wraps around [unix.Fstatfs].
func (*Unix) Fstatfs(fd int, buf *unix.Statfs_t) error {
	return unix.Fstatfs(fd, buf)
}

// Readlink wraps around [unix.Readlink].
func (*Unix) Readlink(path string, buf []byte) (int, error) {
	return unix.Readlink(path, buf)
}

// Getcwd wraps around [unix.Getcwd].
func (*Unix) Getcwd(buf []byte) (int, error) {
	return unix.Getcwd(buf)
}

// Listxattr wraps around [unix.Listxattr].
func (*Unix) Listxattr(path string, dest []byte) (int, error) {
	return unix.Listxattr(path, dest)
}

// Getxattr wraps around [unix.Getxattr].
func (*Unix) Getxattr(path string, attr string, dest []byte) (int, error) {
	return unix.Getxattr(path, attr, dest)
}

// gidSize is the size of a gid_t as written by getgroups(2).
const gidSize = 4

// Getgroups calls getgroups(2) directly, unlike [unix.Getgroups] which hides
// the size probe. An empty buf probes. The result is counted in bytes.
func (*Unix) Getgroups(buf []byte) (int, error) {
	var p unsafe.Pointer
	if len(buf) >= gidSize {
		p = unsafe.Pointer(&buf[0])
	}

	n, _, e := unix.RawSyscall(unix.SYS_GETGROUPS, uintptr(len(buf)/gidSize), uintptr(p), 0)
	runtime.KeepAlive(buf)
	if e != 0 {
		return -1, e
	}

	return int(n) * gidSize, nil
}

// Open wraps around [unix.Open].
func (*Unix) Open(path string, mode int, perm uint32) (int, error) {
	return unix.Open(path, mode, perm)
}

// Close wraps around [unix.Close].
func (*Unix) Close(fd int) error {
	return unix.Close(fd)
}

// Pread wraps around [unix.Pread].
func (*Unix) Pread(fd int, p []byte, offset int64) (int, error) {
	return unix.Pread(fd, p, offset)
}

// Flock wraps around [unix.Flock].
func (*Unix) Flock(fd int, how int) error {
	return unix.Flock(fd, how)
}

// Fadvise wraps around [unix.Fadvise]. Like posix_fadvise(3), it returns the
// error code itself (0 on success) instead of setting errno.
func (*Unix) Fadvise(fd int, offset int64, length int64, advice int) Errno {
	return CodeOf(unix.Fadvise(fd, offset, length, advice))
}
