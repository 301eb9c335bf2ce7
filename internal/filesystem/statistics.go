package filesystem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FileSystemStatistics is the typed result of the statfs family of calls.
type FileSystemStatistics struct {
	Type            int64
	BlockSize       int64
	FragmentSize    int64
	Blocks          uint64
	BlocksFree      uint64
	BlocksAvailable uint64
	Files           uint64
	FilesFree       uint64
	NameMax         int64
	Flags           int64
}

// DiskStats holds disk usage information. It is meant to be passed by value.
type DiskStats struct {
	TotalSize uint64
	FreeSpace uint64
}

// Usage derives [DiskStats] from the statistics. Free space counts only the
// blocks available to unprivileged users.
func (s FileSystemStatistics) Usage() DiskStats {
	bsize := handleSize(s.BlockSize)

	return DiskStats{
		TotalSize: s.Blocks * bsize,
		FreeSpace: s.BlocksAvailable * bsize,
	}
}

// UsedPercent returns the used share of the filesystem from 0 to 100.
func (d DiskStats) UsedPercent() float64 {
	if d.TotalSize == 0 || d.FreeSpace > d.TotalSize {
		return 0
	}

	return float64(d.TotalSize-d.FreeSpace) / float64(d.TotalSize) * 100 //nolint:mnd
}

func newFileSystemStatistics(buf *unix.Statfs_t) FileSystemStatistics {
	return FileSystemStatistics{
		Type:            int64(buf.Type),
		BlockSize:       int64(buf.Bsize),
		FragmentSize:    int64(buf.Frsize),
		Blocks:          uint64(buf.Blocks),
		BlocksFree:      uint64(buf.Bfree),
		BlocksAvailable: uint64(buf.Bavail),
		Files:           uint64(buf.Files),
		FilesFree:       uint64(buf.Ffree),
		NameMax:         int64(buf.Namelen),
		Flags:           int64(buf.Flags),
	}
}

// Statfs returns the [FileSystemStatistics] of the filesystem containing path.
func (f *Handler) Statfs(path string) (FileSystemStatistics, error) {
	var buf unix.Statfs_t

	if err := f.call(func() error { return f.unixHandler.Statfs(path, &buf) }); err != nil {
		return FileSystemStatistics{}, fmt.Errorf("(fs-statfs) %w", err)
	}

	return newFileSystemStatistics(&buf), nil
}

// Fstatfs returns the [FileSystemStatistics] of the filesystem containing an
// open file descriptor.
func (f *Handler) Fstatfs(fd int) (FileSystemStatistics, error) {
	var buf unix.Statfs_t

	if err := f.call(func() error { return f.unixHandler.Fstatfs(fd, &buf) }); err != nil {
		return FileSystemStatistics{}, fmt.Errorf("(fs-fstatfs) %w", err)
	}

	return newFileSystemStatistics(&buf), nil
}

// GetDiskUsage gets fresh [DiskStats] for the filesystem containing path.
func (f *Handler) GetDiskUsage(path string) (DiskStats, error) {
	stats, err := f.Statfs(path)
	if err != nil {
		return DiskStats{}, fmt.Errorf("(fs-diskstats) %w", err)
	}

	if stats.Blocks == 0 || stats.BlockSize <= 0 {
		return DiskStats{}, fmt.Errorf("(fs-diskstats) %w: blocks=%d, bsize=%d", ErrInvalidStats, stats.Blocks, stats.BlockSize)
	}

	return stats.Usage(), nil
}

// handleSize converts a int64 size to a uint64 size (with sizes < 0 becoming 0).
func handleSize(size int64) uint64 {
	if size < 0 {
		return 0
	}

	return uint64(size)
}
