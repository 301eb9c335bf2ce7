package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/desertwitch/sysup/internal/filesystem"
	"github.com/desertwitch/sysup/internal/proc"
	"github.com/desertwitch/sysup/internal/ui"
	"github.com/lmittmann/tint"
)

// dashboardSource gathers the [ui.Snapshot] of the dashboard from the cached
// queries, so that frequent refreshes do not hit the OS every time.
type dashboardSource struct {
	paths       []string
	procHandler *proc.Handler
	diskCache   *filesystem.DiskUsageCacher
	inUse       *proc.InUseChecker
}

// Snapshot implements the data provider of the dashboard.
func (s *dashboardSource) Snapshot(ctx context.Context) ui.Snapshot {
	snap := ui.Snapshot{
		InUsePaths:  s.inUse.Count(),
		Generation:  s.inUse.Generation(),
		Fingerprint: s.inUse.Fingerprint(),
		Paths:       make([]ui.PathUsage, 0, len(s.paths)),
	}

	if sys, err := s.procHandler.System(ctx); err != nil {
		slog.Warn("Failed to read the system summary.", "err", err)
	} else {
		snap.Uptime = sys.Uptime
		snap.MemTotal = sys.MemTotal
		snap.MemAvailable = sys.MemAvailable
		snap.Processes = sys.Processes
	}

	for _, path := range s.paths {
		usage := ui.PathUsage{Path: path, InUse: s.inUse.IsInUse(path)}

		stats, err := s.diskCache.GetDiskUsage(path)
		if err != nil {
			usage.Err = err
		} else {
			usage.TotalSize = stats.TotalSize
			usage.FreeSpace = stats.FreeSpace
		}

		snap.Paths = append(snap.Paths, usage)
	}

	return snap
}

func (app *App) cmdWatch(ctx context.Context, args []string) error {
	paths := args
	if len(paths) == 0 {
		cwd, err := app.fsHandler.Getwd()
		if err != nil {
			return err
		}
		paths = []string{cwd}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inUse, err := proc.NewInUseChecker(ctx, app.procHandler, app.conf.RefreshInterval)
	if err != nil {
		return err
	}

	source := &dashboardSource{
		paths:       paths,
		procHandler: app.procHandler,
		diskCache:   filesystem.NewDiskUsageCacher(ctx, app.fsHandler, app.conf.RefreshInterval),
		inUse:       inUse,
	}

	uiHandler := ui.NewHandler(ctx, cancel, source, app.conf.WatchInterval)

	// Logs go to the dashboard while it runs.
	terminal, hadTerminal := app.logManager.RemoveHandler(terminalLogs)
	app.logManager.AddHandler(uiLogs, tint.NewHandler(uiHandler.LogWriter, &tint.Options{
		Level:      app.conf.LogLevel,
		TimeFormat: time.Kitchen,
		NoColor:    true,
	}))
	defer func() {
		app.logManager.RemoveHandler(uiLogs)
		if hadTerminal {
			app.logManager.AddHandler(terminalLogs, terminal)
		}
	}()

	slog.Info("Dashboard started.", "paths", len(paths), "interval", app.conf.WatchInterval)

	if err := uiHandler.Launch(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("(watch) %w", err)
	}

	return nil
}
