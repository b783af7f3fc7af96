package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeryldev/pyworks/internal/domain"
)

// ProgressMsg carries one installer progress event into the UI loop.
type ProgressMsg domain.InstallProgress

// DoneMsg ends the install UI with the installer's verdict.
type DoneMsg struct {
	Err error
}

// InstallModel renders per-distribution install progress: a spinner for the
// current package and a bar for overall completion.
type InstallModel struct {
	spinner   spinner.Model
	bar       progress.Model
	total     int
	current   domain.InstallProgress
	completed int
	finished  bool
	cancelled bool
	err       error
}

// NewInstall returns a progress UI for installing total distributions.
func NewInstall(total int) InstallModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	return InstallModel{spinner: sp, bar: bar, total: total}
}

func (m InstallModel) Init() tea.Cmd { return m.spinner.Tick }

func (m InstallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.cancelled = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case ProgressMsg:
		m.current = domain.InstallProgress(msg)
		if m.current.Done {
			m.completed++
		}
		if m.current.Err != nil {
			m.err = m.current.Err
		}
		return m, nil
	case DoneMsg:
		m.finished = true
		if msg.Err != nil {
			m.err = msg.Err
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m InstallModel) View() string {
	if m.finished {
		if m.err != nil {
			return badStyle.Render("✗ install failed: "+m.err.Error()) + "\n"
		}
		return okStyle.Render(fmt.Sprintf("✓ installed %d package(s)", m.completed)) + "\n"
	}

	var b strings.Builder
	if m.current.Distribution != "" {
		b.WriteString(fmt.Sprintf("%s Installing %s (%d/%d)\n",
			m.spinner.View(),
			titleStyle.Render(m.current.Distribution),
			m.current.Index, m.current.Total))
	} else {
		b.WriteString(m.spinner.View() + " Preparing install...\n")
	}
	b.WriteString(m.bar.ViewAs(m.percent()) + "\n")
	b.WriteString(dimStyle.Render("ctrl+c to cancel") + "\n")
	return b.String()
}

// Cancelled reports whether the user aborted the UI before completion.
func (m InstallModel) Cancelled() bool { return m.cancelled }

// Err is the first error the installer reported, if any.
func (m InstallModel) Err() error { return m.err }

// Completed is how many distributions finished installing.
func (m InstallModel) Completed() int { return m.completed }

func (m InstallModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.completed) / float64(m.total)
}
