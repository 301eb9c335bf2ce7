package proc

import "errors"

var (
	// ErrProcessNotFound is an error that occurs when a process does not
	// exist (anymore).
	ErrProcessNotFound = errors.New("process not found")

	// ErrMalformedStat is an error that occurs when a procfs stat or status
	// file does not have the expected layout.
	ErrMalformedStat = errors.New("malformed procfs stat")
)
