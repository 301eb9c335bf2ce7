// Package environment implements access to the process environment with
// POSIX setenv(3) and unsetenv(3) semantics, and loading of dotenv files.
package environment

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/desertwitch/sysup/internal/syscalls"
	"golang.org/x/sys/unix"
)

// osProvider defines the operating system functions needed to access the
// environment. It is satisfied by [syscalls.OS].
type osProvider interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
	Environ() []string
}

// fileProvider reads dotenv files into a map (map[key]value).
type fileProvider interface {
	Read(filenames ...string) (map[string]string, error)
}

// Handler is the principal implementation of the environment operations.
type Handler struct {
	osHandler   osProvider
	fileHandler fileProvider
}

// NewHandler returns a pointer to a new environment [Handler].
func NewHandler(osHandler osProvider, fileHandler fileProvider) *Handler {
	return &Handler{
		osHandler:   osHandler,
		fileHandler: fileHandler,
	}
}

// validKey reports whether key can name an environment variable.
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, "=\x00")
}

// Get looks up a variable. A missing variable is a successful [Result]
// holding an invalid [syscalls.Optional], not a failure.
func (e *Handler) Get(key string) syscalls.Result[syscalls.Optional[string]] {
	return syscalls.UnwrapOptional(func() (string, bool, syscalls.Errno) {
		value, ok := e.osHandler.LookupEnv(key)

		return value, ok, 0
	}, nil)
}

// Set sets a variable. An empty key, or a key containing '=' or NUL, fails
// with EINVAL. Without overwrite, an existing variable is left unchanged and
// the call succeeds.
func (e *Handler) Set(key, value string, overwrite bool) error {
	if !validKey(key) || strings.ContainsRune(value, 0) {
		return fmt.Errorf("(env-set) %q: %w", key, unix.EINVAL)
	}

	if !overwrite {
		if _, exists := e.osHandler.LookupEnv(key); exists {
			return nil
		}
	}

	r := syscalls.FromVoidError(func() error {
		return e.osHandler.Setenv(key, value)
	})
	if err := r.Err(); err != nil {
		return fmt.Errorf("(env-set) %q: %w", key, err)
	}

	return nil
}

// Unset removes a variable. Removing a missing variable succeeds; a key that
// cannot name a variable fails with EINVAL.
func (e *Handler) Unset(key string) error {
	if !validKey(key) {
		return fmt.Errorf("(env-unset) %q: %w", key, unix.EINVAL)
	}

	r := syscalls.FromVoidError(func() error {
		return e.osHandler.Unsetenv(key)
	})
	if err := r.Err(); err != nil {
		return fmt.Errorf("(env-unset) %q: %w", key, err)
	}

	return nil
}

// Environ returns the environment as a map. Entries without a key are
// skipped; for duplicated keys the first entry wins, as with getenv(3).
func (e *Handler) Environ() map[string]string {
	env := make(map[string]string)

	for _, entry := range e.osHandler.Environ() {
		key, value, _ := strings.Cut(entry, "=")
		if key == "" {
			continue
		}
		if _, exists := env[key]; !exists {
			env[key] = value
		}
	}

	return env
}

// Load reads dotenv files and applies their variables through [Handler.Set].
// It returns the names of the variables that were set; all failures to set
// are joined into the returned error.
func (e *Handler) Load(overwrite bool, filenames ...string) ([]string, error) {
	vars, err := e.fileHandler.Read(filenames...)
	if err != nil {
		return nil, fmt.Errorf("(env-load) %w", err)
	}

	var errs []error
	applied := make([]string, 0, len(vars))

	for _, key := range slices.Sorted(maps.Keys(vars)) {
		if !overwrite {
			if _, exists := e.osHandler.LookupEnv(key); exists {
				continue
			}
		}
		if err := e.Set(key, vars[key], overwrite); err != nil {
			errs = append(errs, err)

			continue
		}
		applied = append(applied, key)
	}

	if err := errors.Join(errs...); err != nil {
		return applied, fmt.Errorf("(env-load) %w", err)
	}

	return applied, nil
}
