// Command sysup inspects processes, files and filesystems through typed
// system call wrappers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/desertwitch/sysup/internal/configuration"
	"github.com/desertwitch/sysup/internal/environment"
	"github.com/desertwitch/sysup/internal/filesystem"
	"github.com/desertwitch/sysup/internal/proc"
	"github.com/desertwitch/sysup/internal/resource"
	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/lmittmann/tint"
)

const (
	stackTraceBufMax = 1 << 24
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	configFile  = flag.String("config", "", "read configuration from this env-style file")
	dotenvFile  = flag.String("dotenv", "", "load this dotenv file into the environment first")
	debug       = flag.Bool("debug", false, "enable debug logging")
	showVersion = flag.Bool("version", false, "print the version and exit")
)

func setupLogging(logManager *SlogManager, level slog.Level) {
	logManager.AddHandler(terminalLogs, tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(slog.New(logManager))
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			_, _ = os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func loadConfiguration(envHandler *environment.Handler) (*configuration.AppConfiguration, error) {
	if *dotenvFile != "" {
		applied, err := envHandler.Load(false, *dotenvFile)
		if err != nil {
			return nil, fmt.Errorf("(main) %w", err)
		}
		slog.Debug("Loaded dotenv file.", "file", *dotenvFile, "vars", len(applied))
	}

	configProvider := &configuration.ConfigProviderImpl{
		GenericConfigReader: &configuration.GodotenvProvider{},
		EnvReader:           envHandler,
	}

	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}

	conf, err := configProvider.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("(main) %w", err)
	}

	if *debug {
		conf.LogLevel = slog.LevelDebug
	}

	return conf, nil
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	flag.Usage = func() {
		printUsage(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("sysup", Version) //nolint:forbidigo

		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandlers(cancel)

	logManager := NewSlogManager()
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	setupLogging(logManager, level)

	osProvider := &syscalls.OS{}
	unixProvider := &syscalls.Unix{}

	envHandler := environment.NewHandler(osProvider, &configuration.GodotenvProvider{})

	conf, err := loadConfiguration(envHandler)
	if err != nil {
		slog.Error("Failed to load the configuration.", "err", err)
		ExitCode = 2

		return
	}

	if conf.LogLevel != level {
		logManager.RemoveHandler(terminalLogs)
		setupLogging(logManager, conf.LogLevel)
	}
	slog.Debug("Configuration loaded.", "limits", conf.Limits, "watch", conf.WatchInterval, "refresh", conf.RefreshInterval)

	app := NewApp(conf,
		filesystem.NewHandler(unixProvider, conf.Limits),
		proc.NewHandler(osProvider, unixProvider, conf.Limits),
		envHandler,
		resource.NewHandler(unixProvider, conf.Limits),
		logManager,
		os.Stdout,
	)

	if err := app.Run(ctx, flag.Args()); err != nil {
		slog.Error("Command failed.", "err", syscalls.Describe(err))

		ExitCode = 1
		if errors.Is(err, ErrUsage) || errors.Is(err, ErrUnknownCommand) {
			flag.Usage()
			ExitCode = 2
		}
	}
}
