package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no prompt over a list of items, answered with y/n,
// arrow keys or enter.
type ConfirmModel struct {
	question string
	items    []string
	yes      bool
	done     bool
}

// NewConfirm returns a confirm prompt defaulting to yes.
func NewConfirm(question string, items []string) ConfirmModel {
	return ConfirmModel{question: question, items: items, yes: true}
}

func (m ConfirmModel) Init() tea.Cmd { return nil }

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "left", "right", "tab", "h", "l":
		m.yes = !m.yes
	case "y", "Y":
		m.yes, m.done = true, true
		return m, tea.Quit
	case "n", "N", "q", "esc", "ctrl+c":
		m.yes, m.done = false, true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.question) + "\n\n")
	for _, item := range m.items {
		b.WriteString("  " + accentStyle.Render("•") + " " + item + "\n")
	}

	yes, no := "  Yes  ", "  No  "
	if m.yes {
		yes = selectStyle.Render(yes)
		no = dimStyle.Render(no)
	} else {
		yes = dimStyle.Render(yes)
		no = selectStyle.Render(no)
	}
	b.WriteString("\n" + yes + no + dimStyle.Render("   y/n, arrows, enter") + "\n")
	return b.String()
}

// Accepted reports the final answer.
func (m ConfirmModel) Accepted() bool { return m.done && m.yes }

// Confirm runs the prompt on stderr, keeping stdout clean for reports.
func Confirm(question string, items []string) (bool, error) {
	p := tea.NewProgram(NewConfirm(question, items), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return final.(ConfirmModel).Accepted(), nil
}
