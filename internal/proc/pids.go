package proc

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/sys/unix"
)

// ListPIDs returns the IDs of all processes visible in procfs, sorted.
func (p *Handler) ListPIDs() ([]int, error) {
	entries, err := p.osHandler.ReadDir(Root)
	if err != nil {
		return nil, fmt.Errorf("(proc-pids) failed to read %s: %w", Root, err)
	}

	pids := make([]int, 0, len(entries))
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}

	slices.Sort(pids)

	return pids, nil
}

// FDInfo is an open file descriptor of a process.
type FDInfo struct {
	FD     int
	Target string
}

// ListFDs returns the open descriptors of a process with their link targets,
// sorted by descriptor. Descriptors closed while listing are skipped.
func (p *Handler) ListFDs(pid int) ([]FDInfo, error) {
	entries, err := p.osHandler.ReadDir(pidPath(pid, "fd"))
	if err != nil {
		return nil, fmt.Errorf("(proc-fds) %w", notFound(pid, err))
	}

	fds := make([]FDInfo, 0, len(entries))
	for _, entry := range entries {
		fd, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		target, err := p.readlink(pidPath(pid, "fd", entry.Name()))
		if errors.Is(err, unix.ENOENT) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("(proc-fds) %w", err)
		}

		fds = append(fds, FDInfo{FD: fd, Target: target})
	}

	slices.SortFunc(fds, func(a, b FDInfo) int {
		return a.FD - b.FD
	})

	return fds, nil
}

// notFound marks errors of vanished processes with [ErrProcessNotFound].
func notFound(pid int, err error) error {
	if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("%w: %d: %w", ErrProcessNotFound, pid, err)
	}

	return err
}
