// Package filesystem implements typed file status, filesystem statistics,
// symbolic link, working directory and extended attribute queries on top of
// the [syscalls] result and buffer protocols.
package filesystem

import (
	"fmt"

	"github.com/desertwitch/sysup/internal/syscalls"
	"golang.org/x/sys/unix"
)

// unixProvider defines the Unix operating system functions the [Handler]
// needs. It is satisfied by [syscalls.Unix].
type unixProvider interface {
	Stat(path string, stat *unix.Stat_t) error
	Lstat(path string, stat *unix.Stat_t) error
	Fstat(fd int, stat *unix.Stat_t) error
	Statfs(path string, buf *unix.Statfs_t) error
	Fstatfs(fd int, buf *unix.Statfs_t) error
	Readlink(path string, buf []byte) (int, error)
	Getcwd(buf []byte) (int, error)
	Listxattr(path string, dest []byte) (int, error)
	Getxattr(path string, attr string, dest []byte) (int, error)
}

// Handler is the principal implementation of the filesystem queries.
type Handler struct {
	unixHandler unixProvider
	limits      syscalls.Limits
}

// NewHandler returns a pointer to a new filesystem [Handler].
func NewHandler(unixHandler unixProvider, limits syscalls.Limits) *Handler {
	return &Handler{
		unixHandler: unixHandler,
		limits:      limits,
	}
}

// call runs an error-only provider function through the mapper, retrying
// interrupted calls within the [syscalls.Limits].
func (f *Handler) call(fn func() error) error {
	r := syscalls.Retry(f.limits, func() syscalls.Result[syscalls.Void] {
		return syscalls.FromVoidError(fn)
	})

	return r.Err()
}

// value runs a counting provider function through the mapper, retrying
// interrupted calls within the [syscalls.Limits].
func (f *Handler) value(fn func() (int, error)) syscalls.Result[int] {
	return syscalls.Retry(f.limits, func() syscalls.Result[int] {
		return syscalls.FromError(fn)
	})
}

// query runs a [syscalls.Family] query, wrapping failures with tag.
func (f *Handler) query(tag string, family syscalls.Family, fn func(buf []byte) (int, error)) ([]byte, error) {
	data, err := syscalls.QueryFamily(family, f.limits, func(m syscalls.Mode) syscalls.Result[int] {
		return f.value(func() (int, error) { return fn(m.Buffer()) })
	}).Get()
	if err != nil {
		return nil, fmt.Errorf("(%s) %w", tag, err)
	}

	return data, nil
}
