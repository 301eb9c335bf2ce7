package filesystem

import (
	"bytes"

	"github.com/desertwitch/sysup/internal/syscalls"
)

// Readlink returns the target of the symbolic link at path. The target may be
// of any length: readlink(2) cuts it silently at the buffer size, so the
// buffer grows until the target no longer fills it.
func (f *Handler) Readlink(path string) (string, error) {
	data, err := f.query("fs-readlink", syscalls.FamilyReadlink, func(buf []byte) (int, error) {
		return f.unixHandler.Readlink(path, buf)
	})
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Getwd returns the absolute path of the current working directory.
func (f *Handler) Getwd() (string, error) {
	data, err := f.query("fs-getwd", syscalls.FamilyGetcwd, f.unixHandler.Getcwd)
	if err != nil {
		return "", err
	}

	// getcwd(2) counts the terminating NUL.
	return string(bytes.TrimRight(data, "\x00")), nil
}
