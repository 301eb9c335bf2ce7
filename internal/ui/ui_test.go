package ui

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a [snapshotProvider] returning fixed data.
type fakeSource struct {
	calls atomic.Int64
}

func (s *fakeSource) Snapshot(context.Context) Snapshot {
	s.calls.Add(1)

	return Snapshot{
		Uptime:       3 * time.Hour,
		MemTotal:     8 << 30,
		MemAvailable: 2 << 30,
		Processes:    123,
		InUsePaths:   42,
		Generation:   7,
		Fingerprint:  "00112233445566778899aabbccddeeff",
		Paths: []PathUsage{
			{Path: "/mnt/disk1", TotalSize: 1000, FreeSpace: 250, InUse: true},
			{Path: "/mnt/disk2", Err: errors.New("statfs failed")},
		},
	}
}

func waitReady(handler *Handler) bool {
	for {
		time.Sleep(time.Millisecond)
		if handler.Ready.Load() {
			return true
		}
		if handler.Failed.Load() {
			return false
		}
	}
}

// TestTeaUI is an integration test for the command-line user interface.
func TestTeaUI(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var in bytes.Buffer

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	source := &fakeSource{}
	handler := NewHandler(ctx, cancel, source, 10*time.Millisecond, tea.WithInput(&in), tea.WithOutput(&buf))

	go func() {
		// A window size is needed before the model becomes ready.
		handler.Send(tea.WindowSizeMsg{Width: 200, Height: 200})
		if !waitReady(handler) {
			return
		}

		handler.Send(LogMsg("log1"))
		time.Sleep(time.Millisecond)

		_, _ = handler.LogWriter.Write([]byte("log2"))
		for range 150 {
			_, _ = handler.LogWriter.Write([]byte("fast logs"))
		}
		time.Sleep(time.Millisecond)

		handler.Send(tea.WindowSizeMsg{Width: 160, Height: 120})
		time.Sleep(500 * time.Millisecond)

		handler.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	}()

	require.NoError(t, handler.Launch())
	require.NotZero(t, buf.Len(), "UI generated no output at all")

	out := buf.String()
	assert.Contains(t, out, "log1", "log sent via program.Send")
	assert.Contains(t, out, "log2", "log sent via LogWriter")
	assert.Contains(t, out, "/mnt/disk1")
	assert.Contains(t, out, "in use")
	assert.Contains(t, out, "statfs failed")
	assert.Contains(t, out, "Generation: 7")
	assert.Greater(t, source.calls.Load(), int64(1), "snapshots must be refreshed")
}

// TestTeaUI_Ctrl_C is an integration test for the command-line user interface.
// A Ctrl+C keypress is simulated, which should trigger upstream Context
// cancellation for signalling application teardown.
func TestTeaUI_Ctrl_C(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var in bytes.Buffer

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	handler := NewHandler(ctx, cancel, &fakeSource{}, time.Second, tea.WithInput(&in), tea.WithOutput(&buf))

	go func() {
		handler.Send(tea.WindowSizeMsg{Width: 120, Height: 60})
		if !waitReady(handler) {
			return
		}
		handler.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	}()

	err := handler.Launch()
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, handler.Failed.Load())
	assert.NotZero(t, buf.Len(), "UI generated no output at all")
}

// TestPathUsage_UsedFraction tests the usage computation.
func TestPathUsage_UsedFraction(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.75, PathUsage{TotalSize: 1000, FreeSpace: 250}.UsedFraction(), 1e-9)
	assert.Zero(t, PathUsage{}.UsedFraction())
	assert.Zero(t, PathUsage{TotalSize: 10, FreeSpace: 20}.UsedFraction())
}

// TestTeaModel_Update tests the model state transitions without a program.
func TestTeaModel_Update(t *testing.T) {
	t.Parallel()

	handler := &Handler{}
	m := NewTeaModel(t.Context(), handler, &fakeSource{}, time.Second, func() {})

	assert.Equal(t, "Loading the dashboard...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(TeaModel) //nolint:forcetypeassert
	assert.True(t, handler.Ready.Load())

	snap := (&fakeSource{}).Snapshot(t.Context())
	updated, cmd := m.Update(SnapshotMsg(snap))
	m = updated.(TeaModel) //nolint:forcetypeassert
	assert.NotNil(t, cmd)
	assert.Len(t, m.usageBars, 2)

	for i := range maxLogLines + 10 {
		updated, _ = m.Update(LogMsg(string(rune('a' + i%26))))
		m = updated.(TeaModel) //nolint:forcetypeassert
	}
	assert.Len(t, m.logs, maxLogLines)

	view := m.View()
	assert.Contains(t, view, "Processes: 123")
	assert.Contains(t, view, "0011223344556677")
	assert.NotContains(t, view, "8899aabbccddeeff")
}
