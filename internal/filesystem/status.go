package filesystem

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// FileType is the type of a file as encoded in its mode.
type FileType int

const (
	TypeUnknown FileType = iota
	TypeRegular
	TypeDirectory
	TypeSymlink
	TypeCharDevice
	TypeBlockDevice
	TypeFIFO
	TypeSocket
)

func (t FileType) String() string {
	switch t {
	case TypeRegular:
		return "regular file"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symbolic link"
	case TypeCharDevice:
		return "character device"
	case TypeBlockDevice:
		return "block device"
	case TypeFIFO:
		return "fifo"
	case TypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// fileTypeOf decodes the S_IFMT bits of a mode.
func fileTypeOf(mode uint32) FileType {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return TypeRegular
	case unix.S_IFDIR:
		return TypeDirectory
	case unix.S_IFLNK:
		return TypeSymlink
	case unix.S_IFCHR:
		return TypeCharDevice
	case unix.S_IFBLK:
		return TypeBlockDevice
	case unix.S_IFIFO:
		return TypeFIFO
	case unix.S_IFSOCK:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

// FileStatus is the typed result of the stat family of calls.
type FileStatus struct {
	Device     uint64
	Inode      uint64
	Mode       uint32
	Perms      uint32
	Type       FileType
	Links      uint64
	UID        uint32
	GID        uint32
	Rdev       uint64
	Size       int64
	BlockSize  int64
	Blocks     int64
	AccessedAt time.Time
	ModifiedAt time.Time
	ChangedAt  time.Time
}

// IsDir reports whether the status describes a directory.
func (s *FileStatus) IsDir() bool {
	return s.Type == TypeDirectory
}

// IsSymlink reports whether the status describes a symbolic link.
func (s *FileStatus) IsSymlink() bool {
	return s.Type == TypeSymlink
}

func newFileStatus(stat *unix.Stat_t) *FileStatus {
	mode := uint32(stat.Mode)

	return &FileStatus{
		Device:     uint64(stat.Dev),
		Inode:      uint64(stat.Ino),
		Mode:       mode,
		Perms:      mode & 0o7777,
		Type:       fileTypeOf(mode),
		Links:      uint64(stat.Nlink),
		UID:        stat.Uid,
		GID:        stat.Gid,
		Rdev:       uint64(stat.Rdev),
		Size:       stat.Size,
		BlockSize:  int64(stat.Blksize),
		Blocks:     stat.Blocks,
		AccessedAt: time.Unix(stat.Atim.Unix()),
		ModifiedAt: time.Unix(stat.Mtim.Unix()),
		ChangedAt:  time.Unix(stat.Ctim.Unix()),
	}
}

// Stat returns the [FileStatus] of path, following symbolic links.
func (f *Handler) Stat(path string) (*FileStatus, error) {
	var stat unix.Stat_t

	if err := f.call(func() error { return f.unixHandler.Stat(path, &stat) }); err != nil {
		return nil, fmt.Errorf("(fs-stat) %w", err)
	}

	return newFileStatus(&stat), nil
}

// Lstat returns the [FileStatus] of path without following symbolic links.
func (f *Handler) Lstat(path string) (*FileStatus, error) {
	var stat unix.Stat_t

	if err := f.call(func() error { return f.unixHandler.Lstat(path, &stat) }); err != nil {
		return nil, fmt.Errorf("(fs-lstat) %w", err)
	}

	return newFileStatus(&stat), nil
}

// Fstat returns the [FileStatus] of an open file descriptor.
func (f *Handler) Fstat(fd int) (*FileStatus, error) {
	var stat unix.Stat_t

	if err := f.call(func() error { return f.unixHandler.Fstat(fd, &stat) }); err != nil {
		return nil, fmt.Errorf("(fs-fstat) %w", err)
	}

	return newFileStatus(&stat), nil
}
