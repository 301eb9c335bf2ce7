package filesystem

import (
	"bytes"

	"github.com/desertwitch/sysup/internal/syscalls"
)

// ListXattr returns the names of the extended attributes of path. The size of
// the name list is probed first; a list growing after the probe is retried.
func (f *Handler) ListXattr(path string) ([]string, error) {
	data, err := f.query("fs-listxattr", syscalls.FamilyXattrList, func(buf []byte) (int, error) {
		return f.unixHandler.Listxattr(path, buf)
	})
	if err != nil {
		return nil, err
	}

	return splitNames(data), nil
}

// GetXattr returns the value of the extended attribute name of path.
func (f *Handler) GetXattr(path string, name string) ([]byte, error) {
	return f.query("fs-getxattr", syscalls.FamilyXattrGet, func(buf []byte) (int, error) {
		return f.unixHandler.Getxattr(path, name, buf)
	})
}

// splitNames splits a NUL terminated name list.
func splitNames(data []byte) []string {
	names := []string{}

	for _, name := range bytes.Split(data, []byte{0}) {
		if len(name) > 0 {
			names = append(names, string(name))
		}
	}

	return names
}
