package proc

import (
	"bufio"
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Info is the identity and scheduling state of a process as reported by
// /proc/<pid>/stat and /proc/<pid>/status.
type Info struct {
	PID     int
	PPID    int
	PGID    int
	SID     int
	Comm    string
	State   string
	Nice    int
	Threads int

	// UserTicks, SystemTicks and StartTicks are in clock ticks.
	UserTicks   uint64
	SystemTicks uint64
	StartTicks  uint64

	UID  uint32
	EUID uint32
	GID  uint32
	EGID uint32
}

// Info reads the [Info] of a process.
func (p *Handler) Info(pid int) (*Info, error) {
	info, err := p.readInfo(pid)
	if err != nil {
		return nil, fmt.Errorf("(proc-info) %w", err)
	}

	return info, nil
}

// TaskInfo reads the [Info] of a single thread of a process from
// /proc/<pid>/task/<tid>. The PID of the result is the thread ID.
func (p *Handler) TaskInfo(pid int, tid int) (*Info, error) {
	info, err := p.readInfo(pid, "task", strconv.Itoa(tid))
	if err != nil {
		return nil, fmt.Errorf("(proc-taskinfo) %w", err)
	}

	return info, nil
}

// readInfo parses the stat and status files below /proc/<pid>/<dir...>.
func (p *Handler) readInfo(pid int, dir ...string) (*Info, error) {
	stat, err := p.readFile(pidPath(pid, slices.Concat(dir, []string{"stat"})...))
	if err != nil {
		return nil, notFound(pid, err)
	}

	info, err := parseStat(stat)
	if err != nil {
		return nil, fmt.Errorf("%d: %w", pid, err)
	}

	status, err := p.readFile(pidPath(pid, slices.Concat(dir, []string{"status"})...))
	if err != nil {
		return nil, notFound(pid, err)
	}

	if err := parseStatus(status, info); err != nil {
		return nil, fmt.Errorf("%d: %w", pid, err)
	}

	return info, nil
}

// parseStat parses /proc/<pid>/stat. The command name may itself contain
// spaces and parentheses, so it spans from the first '(' to the last ')'.
func parseStat(data []byte) (*Info, error) {
	line := string(bytes.TrimSpace(data))

	open := strings.IndexByte(line, '(')
	closing := strings.LastIndexByte(line, ')')
	if open < 0 || closing < open {
		return nil, fmt.Errorf("%w: no command name", ErrMalformedStat)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(line[:open]))
	if err != nil {
		return nil, fmt.Errorf("%w: pid: %w", ErrMalformedStat, err)
	}

	// Fields following the command name, starting at field 3 (state).
	fields := strings.Fields(line[closing+1:])
	if len(fields) < 20 { //nolint:mnd
		return nil, fmt.Errorf("%w: %d fields", ErrMalformedStat, len(fields))
	}

	info := &Info{
		PID:   pid,
		Comm:  line[open+1 : closing],
		State: fields[0],
	}

	ints := []struct {
		dst *int
		idx int
	}{
		{&info.PPID, 1},
		{&info.PGID, 2},
		{&info.SID, 3},
		{&info.Nice, 16},
		{&info.Threads, 17},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(fields[f.idx]); err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrMalformedStat, f.idx+3, err)
		}
	}

	ticks := []struct {
		dst *uint64
		idx int
	}{
		{&info.UserTicks, 11},
		{&info.SystemTicks, 12},
		{&info.StartTicks, 19},
	}
	for _, f := range ticks {
		if *f.dst, err = strconv.ParseUint(fields[f.idx], 10, 64); err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrMalformedStat, f.idx+3, err)
		}
	}

	return info, nil
}

// parseStatus fills the credentials from /proc/<pid>/status.
func parseStatus(data []byte, info *Info) error {
	var seenUID, seenGID bool

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}

		switch key {
		case "Uid":
			id, effective, err := parseIDs(value)
			if err != nil {
				return err
			}
			info.UID, info.EUID, seenUID = id, effective, true
		case "Gid":
			id, effective, err := parseIDs(value)
			if err != nil {
				return err
			}
			info.GID, info.EGID, seenGID = id, effective, true
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedStat, err)
	}
	if !seenUID || !seenGID {
		return fmt.Errorf("%w: no credentials", ErrMalformedStat)
	}

	return nil
}

// parseIDs parses the real and effective ID of a "Uid:" or "Gid:" line.
func parseIDs(value string) (uint32, uint32, error) {
	fields := strings.Fields(value)
	if len(fields) < 2 { //nolint:mnd
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedStat, value)
	}

	ids := make([]uint32, 2) //nolint:mnd
	for i := range ids {
		id, err := strconv.ParseUint(fields[i], 10, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrMalformedStat, err)
		}
		ids[i] = uint32(id)
	}

	return ids[0], ids[1], nil
}

// Name returns the command name of a process.
func (p *Handler) Name(pid int) (string, error) {
	data, err := p.readFile(pidPath(pid, "comm"))
	if err != nil {
		return "", fmt.Errorf("(proc-name) %w", notFound(pid, err))
	}

	return strings.TrimSuffix(string(data), "\n"), nil
}

// Cmdline returns the arguments of a process. Kernel threads have none.
func (p *Handler) Cmdline(pid int) ([]string, error) {
	data, err := p.readFile(pidPath(pid, "cmdline"))
	if err != nil {
		return nil, fmt.Errorf("(proc-cmdline) %w", notFound(pid, err))
	}

	data = bytes.TrimSuffix(data, []byte{0})
	if len(data) == 0 {
		return []string{}, nil
	}

	return strings.Split(string(data), "\x00"), nil
}

// ExecutablePath returns the path of the executable of a process.
func (p *Handler) ExecutablePath(pid int) (string, error) {
	path, err := p.readlink(pidPath(pid, "exe"))
	if err != nil {
		return "", fmt.Errorf("(proc-exe) %w", notFound(pid, err))
	}

	return path, nil
}

// WorkingDirectory returns the current working directory of a process.
func (p *Handler) WorkingDirectory(pid int) (string, error) {
	path, err := p.readlink(pidPath(pid, "cwd"))
	if err != nil {
		return "", fmt.Errorf("(proc-cwd) %w", notFound(pid, err))
	}

	return path, nil
}
