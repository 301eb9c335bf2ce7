package filesystem

import "errors"

var (
	// ErrInvalidFileSize is an error that occurs when a given filesize is
	// smaller than 0 and impossible to handle in the respective function.
	ErrInvalidFileSize = errors.New("invalid file size < 0")

	// ErrInvalidStats is an error that occurs when the OS returns filesystem
	// statistics that cannot describe a mounted filesystem.
	ErrInvalidStats = errors.New("invalid filesystem statistics")
)
