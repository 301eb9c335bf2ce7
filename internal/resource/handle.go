// Package resource implements scoped acquisition of operating system
// resources: descriptors, advisory file locks and OS-thread pinned goroutines.
// Every acquired resource is released on every exit path of its scope.
package resource

import (
	"errors"
	"fmt"
	"sync"
)

// Handle owns an acquired value until [Handle.Release] is called.
type Handle[T any] struct {
	value   T
	release func(T) error

	once sync.Once
	err  error
}

// Acquire runs acquire and returns a [Handle] that releases the value with
// release. Nothing is returned to release if acquire fails.
func Acquire[T any](acquire func() (T, error), release func(T) error) (*Handle[T], error) {
	v, err := acquire()
	if err != nil {
		return nil, fmt.Errorf("(resource-acquire) %w", err)
	}

	return &Handle[T]{value: v, release: release}, nil
}

// Value returns the acquired value. It must not be used after release.
func (h *Handle[T]) Value() T {
	return h.value
}

// Release releases the value exactly once. Later calls return the result of
// the first one.
func (h *Handle[T]) Release() error {
	h.once.Do(func() {
		if err := h.release(h.value); err != nil {
			h.err = fmt.Errorf("(resource-release) %w", err)
		}
	})

	return h.err
}

// With acquires a value, hands it to body and releases it afterwards, also
// when body fails or panics. A release failure is joined to the error of body.
func With[T, R any](acquire func() (T, error), release func(T) error, body func(T) (R, error)) (result R, err error) {
	h, err := Acquire(acquire, release)
	if err != nil {
		return result, err
	}

	defer func() {
		if rerr := h.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	return body(h.Value())
}
