package proc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Resources is the resource consumption of a process.
type Resources struct {
	RSS        uint64
	VMS        uint64
	UserTime   time.Duration
	SystemTime time.Duration
	Threads    int32
	CreatedAt  time.Time
}

// Resources reads the resource consumption of a process.
func (p *Handler) Resources(ctx context.Context, pid int) (*Resources, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(pid)) //nolint:gosec
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, fmt.Errorf("(proc-resources) %w: %d", ErrProcessNotFound, pid)
		}

		return nil, fmt.Errorf("(proc-resources) %w", err)
	}

	memory, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("(proc-resources) memory: %w", err)
	}

	times, err := proc.TimesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("(proc-resources) times: %w", err)
	}

	threads, err := proc.NumThreadsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("(proc-resources) threads: %w", err)
	}

	created, err := proc.CreateTimeWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("(proc-resources) create time: %w", err)
	}

	return &Resources{
		RSS:        memory.RSS,
		VMS:        memory.VMS,
		UserTime:   seconds(times.User),
		SystemTime: seconds(times.System),
		Threads:    threads,
		CreatedAt:  time.UnixMilli(created),
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// System is a summary of the host the processes run on.
type System struct {
	Uptime       time.Duration
	MemTotal     uint64
	MemAvailable uint64
	SwapTotal    uint64
	SwapFree     uint64
	Processes    int
}

// System reads a summary of the host.
func (p *Handler) System(ctx context.Context) (*System, error) {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("(proc-system) uptime: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("(proc-system) memory: %w", err)
	}

	sm, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("(proc-system) swap: %w", err)
	}

	pids, err := p.ListPIDs()
	if err != nil {
		return nil, fmt.Errorf("(proc-system) %w", err)
	}

	return &System{
		Uptime:       time.Duration(uptime) * time.Second, //nolint:gosec
		MemTotal:     vm.Total,
		MemAvailable: vm.Available,
		SwapTotal:    sm.Total,
		SwapFree:     sm.Free,
		Processes:    len(pids),
	}, nil
}
