package configuration

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/desertwitch/sysup/internal/syscalls"
)

// Configuration keys, read from configuration files and the environment.
const (
	KeyQueryMaxAttempts = "SYSUP_QUERY_MAX_ATTEMPTS"
	KeyQueryMaxCapacity = "SYSUP_QUERY_MAX_CAPACITY"
	KeyInterruptRetries = "SYSUP_INTERRUPT_RETRIES"
	KeyLogLevel         = "SYSUP_LOG_LEVEL"
	KeyWatchInterval    = "SYSUP_WATCH_INTERVAL"
	KeyRefreshInterval  = "SYSUP_REFRESH_INTERVAL"
)

const (
	DefaultWatchInterval   = time.Second
	DefaultRefreshInterval = 5 * time.Second
)

// AppConfiguration is the principal structure holding the application configuration.
type AppConfiguration struct {
	// Limits bound every buffer query and interrupted-call retry.
	Limits syscalls.Limits

	LogLevel slog.Level

	// WatchInterval is the refresh interval of the terminal user interface.
	WatchInterval time.Duration

	// RefreshInterval is the update interval of the disk usage and in-use
	// caches.
	RefreshInterval time.Duration
}

// NewAppConfiguration returns a pointer to a new [AppConfiguration] with
// the default values.
func NewAppConfiguration() *AppConfiguration {
	return &AppConfiguration{
		Limits: syscalls.Limits{
			MaxAttempts: syscalls.DefaultMaxAttempts,
			MaxCapacity: syscalls.DefaultMaxCapacity,
		},
		LogLevel:        slog.LevelInfo,
		WatchInterval:   DefaultWatchInterval,
		RefreshInterval: DefaultRefreshInterval,
	}
}

// Load returns the [AppConfiguration] from the given configuration files,
// overlaid by the process environment. Without files only the environment
// is consulted. All invalid values are reported together.
func (c *ConfigProviderImpl) Load(filenames ...string) (*AppConfiguration, error) {
	envMap := map[string]string{}
	if len(filenames) > 0 {
		var err error
		if envMap, err = c.ReadGeneric(filenames...); err != nil {
			return nil, fmt.Errorf("(config-load) %w", err)
		}
	}

	conf := NewAppConfiguration()

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error

	conf.Limits.MaxAttempts, err = c.MapKeyToInt(envMap, KeyQueryMaxAttempts, conf.Limits.MaxAttempts)
	collect(err)

	conf.Limits.Interrupts, err = c.MapKeyToInt(envMap, KeyInterruptRetries, conf.Limits.Interrupts)
	collect(err)

	capacity, err := c.MapKeyToBytes(envMap, KeyQueryMaxCapacity, uint64(conf.Limits.MaxCapacity))
	collect(err)
	if capacity > math.MaxInt {
		collect(fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidValue, KeyQueryMaxCapacity, math.MaxInt))
	} else {
		conf.Limits.MaxCapacity = int(capacity)
	}

	conf.LogLevel, err = c.MapKeyToLevel(envMap, KeyLogLevel, conf.LogLevel)
	collect(err)

	conf.WatchInterval, err = c.MapKeyToDuration(envMap, KeyWatchInterval, conf.WatchInterval)
	collect(err)

	conf.RefreshInterval, err = c.MapKeyToDuration(envMap, KeyRefreshInterval, conf.RefreshInterval)
	collect(err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("(config-load) %w", err)
	}

	return conf, nil
}
