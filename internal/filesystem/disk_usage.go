package filesystem

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DiskUsageCacherInterval is the default updating interval of the disk
	// usage cache.
	DiskUsageCacherInterval = 3 * time.Second
)

// diskStatProvider defines methods needed for disk usage checking.
type diskStatProvider interface {
	GetDiskUsage(path string) (DiskStats, error)
}

// DiskUsageCacher caches disk usage information in a thread-safe manner.
type DiskUsageCacher struct {
	sync.RWMutex
	statHandler diskStatProvider
	cache       map[string]DiskStats
}

// NewDiskUsageCacher returns a pointer to a new [DiskUsageCacher]. The update
// method is started, refreshing the cached data every interval (or every
// [DiskUsageCacherInterval] for a non-positive interval) until ctx is done.
func NewDiskUsageCacher(ctx context.Context, statHandler diskStatProvider, interval time.Duration) *DiskUsageCacher {
	if interval <= 0 {
		interval = DiskUsageCacherInterval
	}

	cacher := &DiskUsageCacher{
		statHandler: statHandler,
		cache:       make(map[string]DiskStats),
	}
	go cacher.periodicUpdate(ctx, interval)

	return cacher
}

// periodicUpdate calls [DiskUsageCacher.Update] every interval.
func (c *DiskUsageCacher) periodicUpdate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Update()
		}
	}
}

// Update refreshes all cached paths from the OS. A path that fails to
// refresh is evicted, and the first such error is returned once all paths
// were visited.
func (c *DiskUsageCacher) Update() error {
	c.Lock()
	defer c.Unlock()

	var firstErr error

	for path := range c.cache {
		stats, err := c.statHandler.GetDiskUsage(path)
		if err != nil {
			delete(c.cache, path)

			if firstErr == nil {
				firstErr = fmt.Errorf("(fs-diskcache-update) %w", err)
			}

			continue
		}
		c.cache[path] = stats
	}

	return firstErr
}

// GetDiskUsageFresh gets [DiskStats] for path from the OS and stores them in
// the cache for later retrieval and periodic updating.
func (c *DiskUsageCacher) GetDiskUsageFresh(path string) (DiskStats, error) {
	c.Lock()
	defer c.Unlock()

	stats, err := c.statHandler.GetDiskUsage(path)
	if err != nil {
		return DiskStats{}, fmt.Errorf("(fs-diskcache-store) %w", err)
	}

	c.cache[path] = stats

	return stats, nil
}

// GetDiskUsage gets the cached [DiskStats] for path. If none are cached, fresh
// ones are retrieved and cached using [DiskUsageCacher.GetDiskUsageFresh].
func (c *DiskUsageCacher) GetDiskUsage(path string) (DiskStats, error) {
	c.RLock()
	if stats, exists := c.cache[path]; exists {
		c.RUnlock()

		return stats, nil
	}
	c.RUnlock()

	return c.GetDiskUsageFresh(path)
}

// HasEnoughFreeSpace is a helper method that allows checking if the
// filesystem containing path can house a certain fileSize without falling
// below a certain minFree threshold (uses caching).
func (c *DiskUsageCacher) HasEnoughFreeSpace(path string, minFree uint64, fileSize int64) (bool, error) {
	if fileSize < 0 {
		return false, fmt.Errorf("(fs-diskcache-efree) %w: %d", ErrInvalidFileSize, fileSize)
	}

	stats, err := c.GetDiskUsage(path)
	if err != nil {
		return false, fmt.Errorf("(fs-diskcache-efree) %w", err)
	}

	requiredFree := minFree
	if minFree <= uint64(fileSize) {
		requiredFree = uint64(fileSize)
	}

	return stats.FreeSpace > requiredFree, nil
}
