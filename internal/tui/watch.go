// Package tui implements the optional interactive progress watcher behind
// `ctxpack generate --watch`, built on charmbracelet/bubbletea, bubbles, and
// lipgloss the way josephgoksu-TaskWing's internal/ui package drives its
// agent-run TUI: a bubbletea.Model polling external state, a spinner for the
// active phase, and a handful of lipgloss styles for color.
//
// The orchestrator has no dependency on this package — Run takes the same
// *pipeline.ProgressHandle the orchestrator already writes to and polls it
// on a ticker, so it works unmodified against any run that passes a handle.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

var (
	colorPrimary = lipgloss.Color("205")
	colorSubtle  = lipgloss.Color("241")
	colorSuccess = lipgloss.Color("42")
	colorError   = lipgloss.Color("160")

	styleTitle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleSub   = lipgloss.NewStyle().Foreground(colorSubtle)
	styleOK    = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleErr   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

const pollInterval = 120 * time.Millisecond

// tickMsg carries a fresh poll of the progress handle into the Update loop.
type tickMsg pipeline.ProgressSnapshot

// model is the bubbletea.Model for the watcher. It holds no reference to the
// orchestrator beyond the handle it polls.
type model struct {
	handle   *pipeline.ProgressHandle
	spinner  spinner.Model
	bar      progress.Model
	snapshot pipeline.ProgressSnapshot
	done     bool
}

func newModel(handle *pipeline.ProgressHandle) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return model{
		handle:  handle,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

func poll(handle *pipeline.ProgressHandle) tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg(handle.Snapshot())
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, poll(m.handle))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}

	case tickMsg:
		m.snapshot = pipeline.ProgressSnapshot(msg)
		if m.snapshot.Phase == pipeline.PhaseDone || m.snapshot.Phase == pipeline.PhaseFailed {
			m.done = true
			return m, tea.Quit
		}
		return m, poll(m.handle)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("ctxpack generate"))
	b.WriteString("\n\n")

	switch m.snapshot.Phase {
	case pipeline.PhaseDone:
		b.WriteString(styleOK.Render("done"))
	case pipeline.PhaseFailed:
		b.WriteString(styleErr.Render("failed"))
		if m.snapshot.Err != nil {
			b.WriteString(": " + m.snapshot.Err.Error())
		}
	case "":
		b.WriteString(m.spinner.View() + " starting...")
	default:
		fmt.Fprintf(&b, "%s %s", m.spinner.View(), string(m.snapshot.Phase))
	}
	b.WriteString("\n\n")

	ratio := 0.0
	if m.snapshot.FilesTotal > 0 {
		ratio = float64(m.snapshot.FilesDone) / float64(m.snapshot.FilesTotal)
	}
	b.WriteString(m.bar.ViewAs(ratio))
	fmt.Fprintf(&b, "  %d/%d files\n", m.snapshot.FilesDone, m.snapshot.FilesTotal)

	if m.snapshot.CurrentPath != "" {
		b.WriteString(styleSub.Render(m.snapshot.CurrentPath) + "\n")
	}

	if !m.done {
		b.WriteString(styleSub.Render("\nq to quit watching (run continues in background)\n"))
	}

	return b.String()
}

// Watch runs the progress watcher TUI in the foreground, polling handle
// until the run reaches PhaseDone or PhaseFailed, or the user quits. It
// never touches the run itself — callers drive the orchestrator on their
// own goroutine and pass it the same handle.
func Watch(handle *pipeline.ProgressHandle) error {
	_, err := tea.NewProgram(newModel(handle)).Run()
	return err
}
