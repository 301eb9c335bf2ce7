package main

import "errors"

var (
	// ErrUsage occurs when a command is called with the wrong arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrUnknownCommand occurs when no command of the given name exists.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNotEnoughSpace occurs when a filesystem cannot house a given size.
	ErrNotEnoughSpace = errors.New("not enough free space")

	// ErrNotRegular occurs when a command needs a regular file.
	ErrNotRegular = errors.New("not a regular file")

	// ErrLocked occurs when a file is locked by another open file.
	ErrLocked = errors.New("file is locked")
)
