package resource

import (
	"fmt"
	"io"
	"sync"

	"github.com/desertwitch/sysup/internal/syscalls"
)

// unixProvider defines the Unix operating system functions needed for
// descriptors and locks. It is satisfied by [syscalls.Unix].
type unixProvider interface {
	Open(path string, mode int, perm uint32) (int, error)
	Close(fd int) error
	Pread(fd int, p []byte, offset int64) (int, error)
	Flock(fd int, how int) error
	Fadvise(fd int, offset int64, length int64, advice int) syscalls.Errno
}

// Handler opens [Descriptor] values.
type Handler struct {
	unixHandler unixProvider
	limits      syscalls.Limits
}

// NewHandler returns a pointer to a new resource [Handler].
func NewHandler(unixHandler unixProvider, limits syscalls.Limits) *Handler {
	return &Handler{
		unixHandler: unixHandler,
		limits:      limits,
	}
}

// Descriptor is an open file descriptor owned by the caller.
type Descriptor struct {
	mu      sync.Mutex
	handler *Handler
	path    string
	fd      int
	closed  bool
}

// Open opens path with the given open(2) flags and permissions. Interrupted
// opens are retried.
func (h *Handler) Open(path string, flags int, perm uint32) (*Descriptor, error) {
	fd, err := syscalls.Retry(h.limits, func() syscalls.Result[int] {
		return syscalls.FromError(func() (int, error) {
			return h.unixHandler.Open(path, flags, perm)
		})
	}).Get()
	if err != nil {
		return nil, fmt.Errorf("(resource-open) %s: %w", path, err)
	}

	return &Descriptor{handler: h, path: path, fd: fd}, nil
}

// Path returns the path the [Descriptor] was opened with.
func (d *Descriptor) Path() string {
	return d.path
}

// FD returns the raw descriptor number, or -1 once closed.
func (d *Descriptor) FD() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return -1
	}

	return d.fd
}

// Close closes the descriptor. It is not retried on EINTR, as Linux releases
// the descriptor before reporting the interruption. Closing twice is a no-op.
func (d *Descriptor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	r := syscalls.FromVoidError(func() error {
		return d.handler.unixHandler.Close(d.fd)
	})
	if err := r.Err(); err != nil && !syscalls.IsInterrupted(err) {
		return fmt.Errorf("(resource-close) %s: %w", d.path, err)
	}

	return nil
}

func (d *Descriptor) pread(p []byte, off int64) syscalls.Result[int] {
	return syscalls.Retry(d.handler.limits, func() syscalls.Result[int] {
		return syscalls.FromError(func() (int, error) {
			return d.handler.unixHandler.Pread(d.fd, p, off)
		})
	})
}

// ReadAt implements [io.ReaderAt] on top of pread(2).
func (d *Descriptor) ReadAt(p []byte, off int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, fmt.Errorf("(resource-readat) %s: %w", d.path, ErrClosed)
	}

	var total int
	for total < len(p) {
		n, err := d.pread(p[total:], off+int64(total)).Get()
		if err != nil {
			return total, fmt.Errorf("(resource-readat) %s: %w", d.path, err)
		}
		if n == 0 {
			return total, io.EOF
		}
		total += n
	}

	return total, nil
}

// Advise announces an access pattern for a range of the file, see
// posix_fadvise(2). A length of 0 extends the range to the end of the file.
func (d *Descriptor) Advise(offset int64, length int64, advice int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("(resource-advise) %s: %w", d.path, ErrClosed)
	}

	r := syscalls.ErrnoOrZero(func() syscalls.Errno {
		return d.handler.unixHandler.Fadvise(d.fd, offset, length, advice)
	})
	if err := r.Err(); err != nil {
		return fmt.Errorf("(resource-advise) %s: %w", d.path, err)
	}

	return nil
}

// Contents reads the whole file from offset 0 with a single read per
// attempt, growing the buffer until the content fits. This is the way to
// read procfs files, which are generated on read and report no size.
func (d *Descriptor) Contents() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("(resource-contents) %s: %w", d.path, ErrClosed)
	}

	data, err := syscalls.QueryFamily(syscalls.FamilyProcFile, d.handler.limits, func(m syscalls.Mode) syscalls.Result[int] {
		return d.pread(m.Buffer(), 0)
	}).Get()
	if err != nil {
		return nil, fmt.Errorf("(resource-contents) %s: %w", d.path, err)
	}

	return data, nil
}
