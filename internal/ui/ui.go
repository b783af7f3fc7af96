package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	selectStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Underline(true)
	historyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Interactive reports whether both ends of the conversation are terminals.
// Prompts and progress UIs render only then; everything else degrades to
// plain log lines.
func Interactive() bool {
	return (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) &&
		(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
}
