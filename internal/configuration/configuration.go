package configuration

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/dustin/go-humanize"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// envProvider looks up process environment variables. It is satisfied by
// the environment handler.
type envProvider interface {
	Get(key string) syscalls.Result[syscalls.Optional[string]]
}

// ConfigProviderImpl resolves configuration keys from configuration files,
// overlaid by the process environment.
type ConfigProviderImpl struct {
	GenericConfigReader genericConfigProvider
	EnvReader           envProvider
}

func (c *ConfigProviderImpl) ReadGeneric(filenames ...string) (envMap map[string]string, err error) {
	return c.GenericConfigReader.Read(filenames...)
}

// MapKeyToString returns the value of key, preferring the process
// environment over envMap. A key set to an empty value counts as unset.
func (c *ConfigProviderImpl) MapKeyToString(envMap map[string]string, key string) string {
	if c.EnvReader != nil {
		if v, err := c.EnvReader.Get(key).Get(); err == nil && v.Valid && v.Value != "" {
			return v.Value
		}
	}
	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

func (c *ConfigProviderImpl) MapKeyToInt(envMap map[string]string, key string, fallback int) (int, error) {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < 0 {
		return fallback, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}

	return intValue, nil
}

// MapKeyToBytes parses a human readable size such as "64 MiB".
func (c *ConfigProviderImpl) MapKeyToBytes(envMap map[string]string, key string, fallback uint64) (uint64, error) {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback, nil
	}
	bytes, err := humanize.ParseBytes(value)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, value, err)
	}

	return bytes, nil
}

func (c *ConfigProviderImpl) MapKeyToDuration(envMap map[string]string, key string, fallback time.Duration) (time.Duration, error) {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}

	return d, nil
}

func (c *ConfigProviderImpl) MapKeyToLevel(envMap map[string]string, key string, fallback slog.Level) (slog.Level, error) {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return fallback, fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, key, value, err)
	}

	return level, nil
}
