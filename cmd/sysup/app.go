package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/desertwitch/sysup/internal/configuration"
	"github.com/desertwitch/sysup/internal/environment"
	"github.com/desertwitch/sysup/internal/filesystem"
	"github.com/desertwitch/sysup/internal/proc"
	"github.com/desertwitch/sysup/internal/resource"
)

// command is a subcommand of the program.
type command struct {
	usage string
	help  string
	run   func(app *App, ctx context.Context, args []string) error
}

// commands are the subcommands by name.
//
//nolint:gochecknoglobals
var commands map[string]command

func init() {
	commands = map[string]command{
		"pids":     {"", "list processes", (*App).cmdPids},
		"info":     {"<pid|self>", "show identity and resources of a process", (*App).cmdInfo},
		"fds":      {"<pid|self>", "list open descriptors of a process", (*App).cmdFds},
		"groups":   {"", "list supplementary groups", (*App).cmdGroups},
		"stat":     {"<path>", "show the status of a file", (*App).cmdStat},
		"statfs":   {"<path>", "show filesystem statistics", (*App).cmdStatfs},
		"fstat":    {"<path>", "show status and filesystem of an open file", (*App).cmdFstat},
		"head":     {"<path> [size]", "print the start of a regular file", (*App).cmdHead},
		"space":    {"<path> <size> [min-free]", "check a filesystem can house size", (*App).cmdSpace},
		"readlink": {"<path>", "resolve a symbolic link", (*App).cmdReadlink},
		"cwd":      {"", "print the working directory", (*App).cmdCwd},
		"xattr":    {"<path>", "list extended attributes", (*App).cmdXattr},
		"env":      {"[key] | -u <key>", "print or unset environment variables", (*App).cmdEnv},
		"inuse":    {"<path>...", "check if paths are held open", (*App).cmdInUse},
		"lock":     {"<path>", "test whether an exclusive lock on a file is free", (*App).cmdLock},
		"watch":    {"[path]...", "open the dashboard", (*App).cmdWatch},
	}
}

// App holds the handlers the commands operate on.
type App struct {
	conf        *configuration.AppConfiguration
	fsHandler   *filesystem.Handler
	procHandler *proc.Handler
	envHandler  *environment.Handler
	resHandler  *resource.Handler
	logManager  *SlogManager
	out         io.Writer
}

func NewApp(conf *configuration.AppConfiguration,
	fsHandler *filesystem.Handler,
	procHandler *proc.Handler,
	envHandler *environment.Handler,
	resHandler *resource.Handler,
	logManager *SlogManager,
	out io.Writer,
) *App {
	return &App{
		conf:        conf,
		fsHandler:   fsHandler,
		procHandler: procHandler,
		envHandler:  envHandler,
		resHandler:  resHandler,
		logManager:  logManager,
		out:         out,
	}
}

// Run dispatches args to the named command.
func (app *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("(app) %w: no command given", ErrUsage)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("(app) %w: %q", ErrUnknownCommand, args[0])
	}

	if err := cmd.run(app, ctx, args[1:]); err != nil {
		return fmt.Errorf("(app-%s) %w", args[0], err)
	}

	return nil
}

// printf writes to the output of the app. Write errors to the terminal are
// not actionable and are dropped.
func (app *App) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(app.out, format, a...)
}

// parsePID accepts a numeric process ID or "self".
func parsePID(arg string) (int, error) {
	if arg == "self" {
		return os.Getpid(), nil
	}

	pid, err := strconv.Atoi(arg)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: invalid pid %q", ErrUsage, arg)
	}

	return pid, nil
}

// exactArgs fails unless args has n elements.
func exactArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d argument(s), got %d", ErrUsage, n, len(args))
	}

	return nil
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintf(w, "usage: sysup [flags] <command> [args]\n\ncommands:\n")
	for _, name := range names {
		cmd := commands[name]
		_, _ = fmt.Fprintf(w, "  %-9s %-26s %s\n", name, cmd.usage, cmd.help)
	}
	_, _ = fmt.Fprintf(w, "\nflags:\n")
}
