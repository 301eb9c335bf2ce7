// Package proc implements process introspection on top of procfs, reading
// every generated file and link through the [syscalls] buffer protocol.
package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertwitch/sysup/internal/resource"
	"github.com/desertwitch/sysup/internal/syscalls"
	"golang.org/x/sys/unix"
)

// Root is the mount point of procfs.
const Root = "/proc"

// osProvider defines operating system functions needed to list procfs.
type osProvider interface {
	ReadDir(name string) ([]os.DirEntry, error)
}

// unixProvider defines the Unix operating system functions needed to read
// procfs. It is satisfied by [syscalls.Unix].
type unixProvider interface {
	Open(path string, mode int, perm uint32) (int, error)
	Close(fd int) error
	Pread(fd int, p []byte, offset int64) (int, error)
	Flock(fd int, how int) error
	Fadvise(fd int, offset int64, length int64, advice int) syscalls.Errno
	Readlink(path string, buf []byte) (int, error)
	Getgroups(buf []byte) (int, error)
}

// Handler is the principal implementation of the process queries.
type Handler struct {
	osHandler   osProvider
	unixHandler unixProvider
	files       *resource.Handler
	limits      syscalls.Limits
}

// NewHandler returns a pointer to a new process [Handler].
func NewHandler(osHandler osProvider, unixHandler unixProvider, limits syscalls.Limits) *Handler {
	return &Handler{
		osHandler:   osHandler,
		unixHandler: unixHandler,
		files:       resource.NewHandler(unixHandler, limits),
		limits:      limits,
	}
}

func pidPath(pid int, elem ...string) string {
	return filepath.Join(append([]string{Root, strconv.Itoa(pid)}, elem...)...)
}

// readFile reads a whole procfs file into an owned buffer.
func (p *Handler) readFile(path string) ([]byte, error) {
	return resource.With(
		func() (*resource.Descriptor, error) {
			return p.files.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		},
		(*resource.Descriptor).Close,
		(*resource.Descriptor).Contents,
	)
}

// readlink resolves a procfs link.
func (p *Handler) readlink(path string) (string, error) {
	data, err := syscalls.QueryFamily(syscalls.FamilyReadlink, p.limits, func(m syscalls.Mode) syscalls.Result[int] {
		return syscalls.Retry(p.limits, func() syscalls.Result[int] {
			return syscalls.FromError(func() (int, error) {
				return p.unixHandler.Readlink(path, m.Buffer())
			})
		})
	}).Get()
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	return string(data), nil
}
