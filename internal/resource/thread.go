package resource

import (
	"fmt"
	"runtime"

	"github.com/desertwitch/sysup/internal/syscalls"
	"golang.org/x/sys/unix"
)

// Thread is a goroutine locked to its own OS thread for its whole lifetime.
// The OS thread is never handed back to the scheduler: it exits together
// with the goroutine, so thread-local kernel state (credentials set with raw
// syscalls, the thread name, namespaces, scheduling attributes) changed by
// the body stays confined to it.
type Thread[T any] struct {
	tid      int
	startErr error
	started  chan struct{}
	done     chan struct{}
	result   T
	err      error
}

// Spawn starts body on a new OS thread and waits until the thread reported
// its kernel thread ID, which the body receives. The thread must be joined
// with [Thread.Join]; [RunPinned] does so on every exit path.
func Spawn[T any](body func(tid int) (T, error)) (*Thread[T], error) {
	t := &Thread[T]{
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}

	go t.run(body)

	<-t.started
	if t.startErr != nil {
		<-t.done

		return nil, fmt.Errorf("(resource-spawn) %w", t.startErr)
	}

	return t, nil
}

func (t *Thread[T]) run(body func(tid int) (T, error)) {
	// Never unlocked: the runtime terminates a locked thread once its
	// goroutine returns.
	runtime.LockOSThread()

	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			t.err = fmt.Errorf("%w: %v", ErrThreadPanicked, r)
		}
	}()

	t.tid, t.startErr = syscalls.ValueOrErrnoWhen(func() (int, syscalls.Errno) {
		return unix.Gettid(), 0
	}, func(tid int) bool { return tid > 0 }).Get()
	close(t.started)

	if t.startErr != nil {
		return
	}

	t.result, t.err = body(t.tid)
}

// TID returns the kernel thread ID.
func (t *Thread[T]) TID() int {
	return t.tid
}

// Done is closed when the body has returned.
func (t *Thread[T]) Done() <-chan struct{} {
	return t.done
}

// Join waits for the body and returns its result. A panic in the body is
// returned as an error wrapping [ErrThreadPanicked].
func (t *Thread[T]) Join() (T, error) {
	<-t.done

	return t.result, t.err
}

// release joins the thread, discarding its result.
func (t *Thread[T]) release() error {
	<-t.done

	return nil
}

// RunPinned runs body on a dedicated OS thread and returns its result. The
// thread is joined on every exit path, also when body panics.
func RunPinned[T any](body func(tid int) (T, error)) (T, error) {
	return With(
		func() (*Thread[T], error) { return Spawn(body) },
		(*Thread[T]).release,
		(*Thread[T]).Join,
	)
}
