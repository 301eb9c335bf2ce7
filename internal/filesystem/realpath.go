package filesystem

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertwitch/sysup/internal/syscalls"
	"golang.org/x/sys/unix"
)

// maxSymlinks is the number of symbolic links followed in a single path
// resolution before it fails with ELOOP, as in the kernel.
const maxSymlinks = 40

// Realpath resolves path to an absolute path free of symbolic links and of
// "." and ".." components, like realpath(3). Relative paths are resolved
// against the working directory. Every component must exist.
func (f *Handler) Realpath(path string) (string, error) {
	var cause error

	r := syscalls.Unwrap(func() (string, bool, syscalls.Errno) {
		resolved, err := f.resolve(path)
		cause = err

		return resolved, err == nil, syscalls.CodeOf(err)
	})

	resolved, err := syscalls.WithCause(r, cause).Get()
	if err != nil {
		return "", fmt.Errorf("(fs-realpath) %s: %w", path, err)
	}

	return resolved, nil
}

func (f *Handler) resolve(path string) (string, error) {
	if path == "" {
		return "", unix.ENOENT
	}

	resolved := "/"
	if !filepath.IsAbs(path) {
		cwd, err := f.Getwd()
		if err != nil {
			return "", err
		}
		resolved = cwd
	}

	pending := strings.Split(path, "/")
	links := 0

	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)

			continue
		}

		next := filepath.Join(resolved, name)

		status, err := f.Lstat(next)
		if err != nil {
			return "", err
		}
		if !status.IsSymlink() {
			resolved = next

			continue
		}

		links++
		if links > maxSymlinks {
			return "", unix.ELOOP
		}

		target, err := f.Readlink(next)
		if err != nil {
			return "", err
		}
		if filepath.IsAbs(target) {
			resolved = "/"
		}
		pending = append(strings.Split(target, "/"), pending...)
	}

	return resolved, nil
}
