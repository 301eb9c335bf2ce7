package resource

import "errors"

var (
	// ErrClosed is an error that occurs when a [Descriptor] is used after it
	// was closed.
	ErrClosed = errors.New("descriptor is closed")

	// ErrThreadPanicked is an error that occurs when the body of a [Thread]
	// panicked; the panic value is part of the message.
	ErrThreadPanicked = errors.New("thread body panicked")
)
