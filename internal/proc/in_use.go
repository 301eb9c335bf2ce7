package proc

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeebo/blake3"
)

const (
	// CheckerInterval is the default interval at which the [InUseChecker] is
	// updated.
	CheckerInterval = 5 * time.Second
)

// fdLister defines the process queries needed to find in-use paths.
type fdLister interface {
	ListPIDs() ([]int, error)
	ListFDs(pid int) ([]FDInfo, error)
}

// InUseChecker caches paths which are currently held open by a process of the
// operating system. This allows for fast checks if a given path is in use,
// without overloading the OS with syscalls.
//
// Each update fingerprints the sorted set of paths. The generation counter
// increases only when the fingerprint changes, so observers can detect a
// changed set without comparing it.
type InUseChecker struct {
	sync.RWMutex
	procHandler fdLister
	inUsePaths  map[string]struct{}
	fingerprint [32]byte
	generation  uint64
	isUpdating  atomic.Bool
}

// NewInUseChecker returns a pointer to a new [InUseChecker]. The update method
// is started, querying the OS for in-use paths every interval.
func NewInUseChecker(ctx context.Context, procHandler fdLister, interval time.Duration) (*InUseChecker, error) {
	checker := &InUseChecker{
		procHandler: procHandler,
		inUsePaths:  make(map[string]struct{}),
	}

	if err := checker.Update(); err != nil {
		return nil, err
	}

	if interval > 0 {
		go checker.periodicUpdate(ctx, interval)
	}

	return checker, nil
}

// IsInUse checks (the cache) if a path is currently in use by a process of
// the operating system.
func (c *InUseChecker) IsInUse(path string) bool {
	c.RLock()
	defer c.RUnlock()

	_, exists := c.inUsePaths[path]

	return exists
}

// Count returns the number of cached in-use paths.
func (c *InUseChecker) Count() int {
	c.RLock()
	defer c.RUnlock()

	return len(c.inUsePaths)
}

// Generation returns how often the set of in-use paths has changed.
func (c *InUseChecker) Generation() uint64 {
	c.RLock()
	defer c.RUnlock()

	return c.generation
}

// Fingerprint returns the hex encoded BLAKE3 digest of the cached set.
func (c *InUseChecker) Fingerprint() string {
	c.RLock()
	defer c.RUnlock()

	return hex.EncodeToString(c.fingerprint[:])
}

// periodicUpdate calls [InUseChecker.Update] every interval.
func (c *InUseChecker) periodicUpdate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Update(); err != nil {
				slog.Warn("Failed to update in-use paths", "err", err)
			}
		}
	}
}

// Update queries the operating system for all in-use paths and stores them in
// the [InUseChecker] cache. Since this is a time and resource intensive
// operation, this method is a no-op with an update in progress. Processes
// which exit or deny access while being scanned are skipped.
func (c *InUseChecker) Update() error {
	if !c.isUpdating.CompareAndSwap(false, true) {
		return nil
	}
	defer c.isUpdating.Store(false)

	pids, err := c.procHandler.ListPIDs()
	if err != nil {
		return fmt.Errorf("(proc-inuse) %w", err)
	}

	paths := make(map[string]struct{})
	for _, pid := range pids {
		fds, err := c.procHandler.ListFDs(pid)
		if err != nil {
			continue
		}

		for _, fd := range fds {
			paths[fd.Target] = struct{}{}
		}
	}

	digest := fingerprint(paths)

	c.Lock()
	defer c.Unlock()

	c.inUsePaths = paths
	if digest != c.fingerprint {
		c.fingerprint = digest
		c.generation++
		slog.Debug("In-use paths changed", "paths", len(paths), "generation", c.generation)
	}

	return nil
}

// fingerprint hashes the sorted paths, each terminated by a NUL byte.
func fingerprint(paths map[string]struct{}) [32]byte {
	sorted := make([]string, 0, len(paths))
	for path := range paths {
		sorted = append(sorted, path)
	}
	slices.Sort(sorted)

	hasher := blake3.New()
	for _, path := range sorted {
		_, _ = hasher.Write([]byte(path))
		_, _ = hasher.Write([]byte{0})
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))

	return digest
}
