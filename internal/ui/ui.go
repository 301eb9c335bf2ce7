// Package ui implements the terminal dashboard of the watch command using
// [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// snapshotProvider produces the data shown by the dashboard.
type snapshotProvider interface {
	Snapshot(ctx context.Context) Snapshot
}

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	program *tea.Program

	LogWriter *TeaLogWriter

	Ready  atomic.Bool
	Failed atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler], refreshing
// the data of source every interval.
func NewHandler(ctx context.Context, cancel context.CancelFunc, source snapshotProvider, interval time.Duration, opts ...tea.ProgramOption) *Handler {
	handler := &Handler{}

	model := NewTeaModel(ctx, handler, source, interval, cancel)
	handler.program = tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Send hands a [tea.Msg] to the running program.
func (uiHandler *Handler) Send(msg tea.Msg) {
	uiHandler.program.Send(msg)
}

// Launch starts the command-line user interface (the [tea.Program]).
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}
