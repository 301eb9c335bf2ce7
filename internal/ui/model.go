package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	// maxLogLines is the number of log lines kept for the logs panel.
	maxLogLines = 100
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// warnStyle highlights paths in use or failing.
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// SnapshotMsg is a [tea.Msg] containing a fresh [Snapshot].
type SnapshotMsg Snapshot

// TeaModel is the principal [tea.Model] for the command-line user interface.
//
//nolint:containedctx
type TeaModel struct {
	width  int
	height int

	ctx    context.Context
	cancel context.CancelFunc

	uiHandler *Handler
	source    snapshotProvider
	interval  time.Duration

	fullWidthWithBorders  int
	splitWidthWithBorders int

	snapshot     Snapshot
	usageBars    []progress.Model
	logsViewport viewport.Model
	logs         []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(ctx context.Context, uiHandler *Handler, source snapshotProvider, interval time.Duration, cancel context.CancelFunc) TeaModel {
	if interval <= 0 {
		interval = time.Second
	}

	return TeaModel{
		ctx:          ctx,
		cancel:       cancel,
		uiHandler:    uiHandler,
		source:       source,
		interval:     interval,
		logsViewport: viewport.New(80, 20),
		logs:         make([]string, 0, maxLogLines),
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.refresh(0),
	)
}

// refresh produces a [tea.Cmd] for later scheduling in a [tea.Program]. When
// executed after delay, a [SnapshotMsg] with fresh data is returned.
func (m TeaModel) refresh(delay time.Duration) tea.Cmd {
	fetch := func(t time.Time) tea.Msg {
		snapshot := m.source.Snapshot(m.ctx)
		snapshot.Time = t

		return SnapshotMsg(snapshot)
	}

	if delay <= 0 {
		return func() tea.Msg { return fetch(time.Now()) }
	}

	return tea.Tick(delay, fetch)
}

func newUsageBar(width int) progress.Model {
	return progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(width),
	)
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,funlen,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		case "r":
			cmds = append(cmds, m.refresh(0))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.splitWidthWithBorders = (m.width / 2) - 2

		for i := range m.usageBars {
			m.usageBars[i].Width = m.fullWidthWithBorders - 4
		}

		// The upper panels take about half of the height.
		upperHeight := m.height / 2
		lowerHeight := m.height - upperHeight

		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = max(lowerHeight-3, 1)
		m.renderLogs()

		if !m.ready {
			m.ready = true
			m.uiHandler.Ready.Store(true)
		}

	case SnapshotMsg:
		m.snapshot = Snapshot(msg)

		if len(m.usageBars) != len(m.snapshot.Paths) {
			bars := make([]progress.Model, len(m.snapshot.Paths))
			for i := range bars {
				bars[i] = newUsageBar(max(m.fullWidthWithBorders-4, 10))
			}
			m.usageBars = bars
		}

		for i, path := range m.snapshot.Paths {
			cmds = append(cmds, m.usageBars[i].SetPercent(path.UsedFraction()))
		}

		// Queue the next update.
		cmds = append(cmds, m.refresh(m.interval))

	case LogMsg:
		if len(m.logs) >= maxLogLines {
			m.logs = m.logs[1:]
		}
		m.logs = append(m.logs, string(msg))
		m.renderLogs()

	case progress.FrameMsg:
		for i := range m.usageBars {
			updated, cmd := m.usageBars[i].Update(msg)
			if progressModel, ok := updated.(progress.Model); ok {
				m.usageBars[i] = progressModel
			}
			cmds = append(cmds, cmd)
		}
	}

	// Handle viewport updates.
	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// renderLogs updates the viewport content with the current logs.
func (m *TeaModel) renderLogs() {
	if len(m.logs) == 0 {
		return
	}

	logs := lipgloss.NewStyle().
		Width(m.logsViewport.Width).
		Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

	m.logsViewport.SetContent(logs)
	m.logsViewport.GotoBottom()
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the dashboard..."
	}

	var s strings.Builder

	upperSection := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(m.splitWidthWithBorders).Render(m.systemView()),
		borderStyle.Width(m.splitWidthWithBorders).Render(m.inUseView()),
	)

	pathsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(m.pathsView())

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Logs"),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit dashboard • r: refresh now • ctrl+c: quit program")

	s.WriteString(lipgloss.JoinVertical(
		lipgloss.Left,
		upperSection,
		pathsSection,
		logsSection,
		helpSection,
	))

	return s.String()
}

func (m TeaModel) systemView() string {
	snap := m.snapshot

	details := fmt.Sprintf(
		"Uptime: %s\n"+
			"Memory: %s available of %s\n"+
			"Processes: %d\n"+
			"Updated: %s\n",
		snap.Uptime.Truncate(time.Second),
		humanize.IBytes(snap.MemAvailable),
		humanize.IBytes(snap.MemTotal),
		snap.Processes,
		snap.Time.Format("15:04:05"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("System"),
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}

func (m TeaModel) inUseView() string {
	snap := m.snapshot

	fingerprint := snap.Fingerprint
	if len(fingerprint) > 16 { //nolint:mnd
		fingerprint = fingerprint[:16]
	}

	details := fmt.Sprintf(
		"Open paths: %d\n"+
			"Generation: %d\n"+
			"Fingerprint: %s\n",
		snap.InUsePaths,
		snap.Generation,
		fingerprint,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render("In Use"),
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}

func (m TeaModel) pathsView() string {
	rows := []string{titleStyle.Width(m.fullWidthWithBorders).Render("Filesystems")}

	if len(m.snapshot.Paths) == 0 {
		rows = append(rows, infoStyle.Render("No paths watched."))
	}

	for i, path := range m.snapshot.Paths {
		if path.Err != nil {
			rows = append(rows, warnStyle.Render(fmt.Sprintf("%s: %v", path.Path, path.Err)))

			continue
		}

		line := fmt.Sprintf("%s: %s free of %s (%.1f%% used)",
			path.Path,
			humanize.IBytes(path.FreeSpace),
			humanize.IBytes(path.TotalSize),
			path.UsedFraction()*100, //nolint:mnd
		)
		if path.InUse {
			line = warnStyle.Render(line + " [in use]")
		} else {
			line = infoStyle.Render(line)
		}

		bar := ""
		if i < len(m.usageBars) {
			bar = m.usageBars[i].View()
		}

		rows = append(rows, line, bar)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
