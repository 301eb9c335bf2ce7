package resource

import (
	"fmt"
	"sync"

	"github.com/desertwitch/sysup/internal/syscalls"
	"golang.org/x/sys/unix"
)

// LockMode is the kind of advisory lock taken by [Descriptor.Lock].
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

func (m LockMode) String() string {
	if m == LockExclusive {
		return "exclusive"
	}

	return "shared"
}

// FileLock is an advisory flock(2) lock held on a [Descriptor].
type FileLock struct {
	mu       sync.Mutex
	desc     *Descriptor
	mode     LockMode
	released bool
}

// Lock takes an advisory lock on the open file. Without wait, a conflicting
// lock fails immediately with EWOULDBLOCK; with wait, the call blocks and
// interrupted waits are retried.
func (d *Descriptor) Lock(mode LockMode, wait bool) (*FileLock, error) {
	how := unix.LOCK_SH
	if mode == LockExclusive {
		how = unix.LOCK_EX
	}
	if !wait {
		how |= unix.LOCK_NB
	}

	if err := d.flock(how); err != nil {
		return nil, fmt.Errorf("(resource-lock) %s (%s): %w", d.path, mode, err)
	}

	return &FileLock{desc: d, mode: mode}, nil
}

func (d *Descriptor) flock(how int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	return syscalls.Retry(d.handler.limits, func() syscalls.Result[syscalls.Void] {
		return syscalls.FromVoidError(func() error {
			return d.handler.unixHandler.Flock(d.fd, how)
		})
	}).Err()
}

// Mode returns the kind of the held lock.
func (l *FileLock) Mode() LockMode {
	return l.mode
}

// Unlock releases the lock. Unlocking twice is a no-op.
func (l *FileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return nil
	}
	l.released = true

	if err := l.desc.flock(unix.LOCK_UN); err != nil {
		return fmt.Errorf("(resource-unlock) %s: %w", l.desc.path, err)
	}

	return nil
}
