package ui

import "time"

// PathUsage is the state of one watched path.
type PathUsage struct {
	Path      string
	TotalSize uint64
	FreeSpace uint64
	InUse     bool
	Err       error
}

// UsedFraction returns the used share of the filesystem, from 0 to 1.
func (p PathUsage) UsedFraction() float64 {
	if p.TotalSize == 0 || p.FreeSpace > p.TotalSize {
		return 0
	}

	return float64(p.TotalSize-p.FreeSpace) / float64(p.TotalSize)
}

// Snapshot is the data shown by one refresh of the dashboard.
type Snapshot struct {
	Time time.Time

	Uptime       time.Duration
	MemTotal     uint64
	MemAvailable uint64
	Processes    int

	// InUsePaths is the number of paths held open by any process, and
	// Generation counts the changes of that set.
	InUsePaths  int
	Generation  uint64
	Fingerprint string

	Paths []PathUsage
}
