package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertwitch/sysup/internal/filesystem"
	"github.com/desertwitch/sysup/internal/proc"
	"github.com/desertwitch/sysup/internal/resource"
	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// defaultHeadSize is the number of bytes head copies without a size.
const defaultHeadSize = 4096

func (app *App) cmdPids(_ context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}

	pids, err := app.procHandler.ListPIDs()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0) //nolint:mnd
	_, _ = fmt.Fprintln(tw, "PID\tNAME")
	for _, pid := range pids {
		name, err := app.procHandler.Name(pid)
		if err != nil {
			// Exited while listing.
			continue
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", pid, name)
	}

	return tw.Flush()
}

func (app *App) cmdInfo(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	pid, err := parsePID(args[0])
	if err != nil {
		return err
	}

	info, err := app.procHandler.Info(pid)
	if err != nil {
		return err
	}

	app.printf("pid:      %d\n", info.PID)
	app.printf("ppid:     %d\n", info.PPID)
	app.printf("pgid/sid: %d/%d\n", info.PGID, info.SID)
	app.printf("comm:     %s\n", info.Comm)
	app.printf("state:    %s\n", info.State)
	app.printf("nice:     %d\n", info.Nice)
	app.printf("uid/euid: %d/%d\n", info.UID, info.EUID)
	app.printf("gid/egid: %d/%d\n", info.GID, info.EGID)

	// These need more privileges than the above for foreign processes.
	if exe, err := app.procHandler.ExecutablePath(pid); err == nil {
		app.printf("exe:      %s\n", exe)
	}
	if cwd, err := app.procHandler.WorkingDirectory(pid); err == nil {
		app.printf("cwd:      %s\n", cwd)
	}
	if argv, err := app.procHandler.Cmdline(pid); err == nil && len(argv) > 0 {
		app.printf("cmdline:  %s\n", strings.Join(argv, " "))
	}

	res, err := app.procHandler.Resources(ctx, pid)
	if err != nil {
		return err
	}

	app.printf("threads:  %d\n", res.Threads)

	if pid == os.Getpid() {
		task, err := resource.RunPinned(func(tid int) (*proc.Info, error) {
			return app.procHandler.TaskInfo(pid, tid)
		})
		if err != nil {
			return err
		}
		app.printf("pinned:   thread %d (%s, state %s)\n", task.PID, task.Comm, task.State)
	}
	app.printf("rss/vms:  %s/%s\n", humanize.IBytes(res.RSS), humanize.IBytes(res.VMS))
	app.printf("cpu:      %s user, %s system\n", res.UserTime, res.SystemTime)
	app.printf("started:  %s (%s)\n", res.CreatedAt.Format(time.RFC3339), humanize.Time(res.CreatedAt))

	return nil
}

func (app *App) cmdFds(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	pid, err := parsePID(args[0])
	if err != nil {
		return err
	}

	fds, err := app.procHandler.ListFDs(pid)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0) //nolint:mnd
	_, _ = fmt.Fprintln(tw, "FD\tTARGET")
	for _, fd := range fds {
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", fd.FD, fd.Target)
	}

	return tw.Flush()
}

func (app *App) cmdGroups(_ context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}

	gids, err := app.procHandler.Groups()
	if err != nil {
		return err
	}

	parts := make([]string, 0, len(gids))
	for _, gid := range gids {
		parts = append(parts, fmt.Sprint(gid))
	}
	app.printf("%s\n", strings.Join(parts, " "))

	return nil
}

func (app *App) cmdStat(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}

	st, err := app.fsHandler.Lstat(args[0])
	if err != nil {
		return err
	}
	app.printStatus(args[0], st)

	return nil
}

func (app *App) printStatus(path string, st *filesystem.FileStatus) {
	app.printf("path:     %s\n", path)
	app.printf("type:     %s\n", st.Type)
	app.printf("size:     %d (%s)\n", st.Size, humanize.IBytes(uint64(max(st.Size, 0))))
	app.printf("blocks:   %d of %d bytes\n", st.Blocks, st.BlockSize)
	app.printf("device:   %d inode: %d links: %d\n", st.Device, st.Inode, st.Links)
	app.printf("access:   %04o uid: %d gid: %d\n", st.Perms, st.UID, st.GID)
	app.printf("accessed: %s\n", st.AccessedAt.Format(time.RFC3339Nano))
	app.printf("modified: %s\n", st.ModifiedAt.Format(time.RFC3339Nano))
	app.printf("changed:  %s\n", st.ChangedAt.Format(time.RFC3339Nano))
}

func (app *App) cmdStatfs(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}

	st, err := app.fsHandler.Statfs(args[0])
	if err != nil {
		return err
	}
	app.printStatfs(st)

	return nil
}

func (app *App) printStatfs(st filesystem.FileSystemStatistics) {
	usage := st.Usage()

	app.printf("type:       %#x\n", st.Type)
	app.printf("block size: %d\n", st.BlockSize)
	app.printf("blocks:     %d total, %d free, %d available\n", st.Blocks, st.BlocksFree, st.BlocksAvailable)
	app.printf("inodes:     %d total, %d free\n", st.Files, st.FilesFree)
	app.printf("name max:   %d\n", st.NameMax)
	app.printf("usage:      %s free of %s (%.1f%% used)\n",
		humanize.IBytes(usage.FreeSpace), humanize.IBytes(usage.TotalSize), usage.UsedPercent())
}

// cmdFstat reports status and filesystem of a file through one descriptor,
// so both describe the same file even if the path is replaced meanwhile.
func (app *App) cmdFstat(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}

	_, err := resource.With(
		func() (*resource.Descriptor, error) {
			return app.resHandler.Open(args[0], unix.O_PATH|unix.O_CLOEXEC, 0)
		},
		(*resource.Descriptor).Close,
		func(d *resource.Descriptor) (syscalls.Void, error) {
			st, err := app.fsHandler.Fstat(d.FD())
			if err != nil {
				return syscalls.Void{}, err
			}
			fs, err := app.fsHandler.Fstatfs(d.FD())
			if err != nil {
				return syscalls.Void{}, err
			}

			app.printStatus(args[0], st)
			app.printStatfs(fs)

			return syscalls.Void{}, nil
		},
	)

	return err
}

// cmdHead copies the start of a regular file to the output.
func (app *App) cmdHead(_ context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 { //nolint:mnd
		return fmt.Errorf("%w: want <path> [size]", ErrUsage)
	}

	limit := uint64(defaultHeadSize)
	if len(args) == 2 { //nolint:mnd
		var err error
		if limit, err = humanize.ParseBytes(args[1]); err != nil {
			return fmt.Errorf("%w: size: %w", ErrUsage, err)
		}
	}

	_, err := resource.With(
		func() (*resource.Descriptor, error) {
			return app.resHandler.Open(args[0], unix.O_RDONLY|unix.O_CLOEXEC, 0)
		},
		(*resource.Descriptor).Close,
		func(d *resource.Descriptor) (int64, error) {
			st, err := app.fsHandler.Fstat(d.FD())
			if err != nil {
				return 0, err
			}
			if st.Type != filesystem.TypeRegular {
				return 0, fmt.Errorf("%w: %s is a %s", ErrNotRegular, args[0], st.Type)
			}

			n := min(int64(min(limit, math.MaxInt64)), st.Size) //nolint:gosec
			if err := d.Advise(0, n, unix.FADV_SEQUENTIAL); err != nil {
				slog.Debug("Ignoring failed read-ahead advice.", "path", args[0], "err", err)
			}

			return io.Copy(app.out, io.NewSectionReader(d, 0, n))
		},
	)

	return err
}

func (app *App) cmdSpace(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 { //nolint:mnd
		return fmt.Errorf("%w: want <path> <size> [min-free]", ErrUsage)
	}

	size, err := humanize.ParseBytes(args[1])
	if err != nil {
		return fmt.Errorf("%w: size: %w", ErrUsage, err)
	}

	var minFree uint64
	if len(args) == 3 { //nolint:mnd
		if minFree, err = humanize.ParseBytes(args[2]); err != nil {
			return fmt.Errorf("%w: min-free: %w", ErrUsage, err)
		}
	}

	cacher := filesystem.NewDiskUsageCacher(ctx, app.fsHandler, app.conf.RefreshInterval)

	ok, err := cacher.HasEnoughFreeSpace(args[0], minFree, int64(min(size, uint64(1<<63-1)))) //nolint:gosec
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s for %s", ErrNotEnoughSpace, args[0], humanize.IBytes(size))
	}

	app.printf("%s can house %s\n", args[0], humanize.IBytes(size))

	return nil
}

func (app *App) cmdReadlink(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}

	target, err := app.fsHandler.Readlink(args[0])
	if err != nil {
		return err
	}
	app.printf("%s\n", target)

	return nil
}

func (app *App) cmdCwd(_ context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}

	cwd, err := app.fsHandler.Getwd()
	if err != nil {
		return err
	}
	app.printf("%s\n", cwd)

	return nil
}

func (app *App) cmdXattr(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}

	names, err := app.fsHandler.ListXattr(args[0])
	if err != nil {
		return err
	}

	for _, name := range names {
		value, err := app.fsHandler.GetXattr(args[0], name)
		if errors.Is(err, unix.ENODATA) {
			// Removed while listing.
			continue
		} else if err != nil {
			return err
		}
		app.printf("%s=%q\n", name, value)
	}

	return nil
}

func (app *App) cmdEnv(_ context.Context, args []string) error {
	switch len(args) {
	case 0:
		env := app.envHandler.Environ()
		for _, key := range slices.Sorted(maps.Keys(env)) {
			app.printf("%s=%s\n", key, env[key])
		}

		return nil

	case 2: //nolint:mnd
		if args[0] != "-u" {
			return fmt.Errorf("%w: want [key] or -u <key>", ErrUsage)
		}

		return app.envHandler.Unset(args[1])

	case 1:
		v, err := app.envHandler.Get(args[0]).Get()
		if err != nil {
			return err
		}
		if !v.Valid {
			return fmt.Errorf("%q: %w", args[0], unix.ENOENT)
		}
		app.printf("%s\n", v.Value)

		return nil

	default:
		return fmt.Errorf("%w: want [key] or -u <key>", ErrUsage)
	}
}

func (app *App) cmdInUse(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: want at least 1 path", ErrUsage)
	}

	checker, err := proc.NewInUseChecker(ctx, app.procHandler, 0)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0) //nolint:mnd
	for _, path := range args {
		// Descriptor links hold absolute paths without symbolic links.
		resolved, err := app.fsHandler.Realpath(path)
		if errors.Is(err, unix.ENOENT) {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", path, "missing")

			continue
		} else if err != nil {
			return err
		}

		state := "free"
		if checker.IsInUse(resolved) {
			state = "in use"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", path, state)
	}

	return tw.Flush()
}

func (app *App) cmdLock(_ context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}

	_, err := resource.With(
		func() (*resource.Descriptor, error) {
			return app.resHandler.Open(args[0], unix.O_RDONLY|unix.O_CLOEXEC, 0)
		},
		(*resource.Descriptor).Close,
		func(d *resource.Descriptor) (resource.LockMode, error) {
			lock, err := d.Lock(resource.LockExclusive, false)
			if errors.Is(err, unix.EWOULDBLOCK) {
				return 0, fmt.Errorf("%w: %s", ErrLocked, args[0])
			} else if err != nil {
				return 0, err
			}

			return lock.Mode(), lock.Unlock()
		},
	)
	if err != nil {
		return err
	}

	app.printf("%s is not locked\n", args[0])

	return nil
}
