// Package entrylog shows a subject's entries, newest first, in a
// scrollable viewport.
package entrylog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/models"
)

var (
	dateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type Model struct {
	viewport viewport.Model
	subject  string
	entries  []models.Entry
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m *Model) SetEntries(subject string, entries []models.Entry) {
	m.subject = subject
	m.entries = entries
	m.viewport.SetContent(Render(entries, m.viewport.Width))
	m.viewport.GotoTop()
}

func (m Model) Subject() string { return m.subject }

// Latest returns the newest entry, used as the starting point for a
// copied-forward entry.
func (m Model) Latest() (models.Entry, bool) {
	if len(m.entries) == 0 {
		return models.Entry{}, false
	}
	return m.entries[0], true
}

// Render formats entries as the reader page shows them.
func Render(entries []models.Entry, width int) string {
	if len(entries) == 0 {
		return emptyStyle.Render("No entries yet. Press 'n' to log one.")
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(dateStyle.Render(e.CreatedAt.Local().Format(constants.DateFormat)))
		b.WriteString("\n")
		for _, f := range e.Fields {
			var values []string
			for _, in := range f.Inputs {
				if d := in.Display(); d != "" {
					values = append(values, d)
				}
			}
			line := fmt.Sprintf("  %s  %s", fieldStyle.Render(f.Name), strings.Join(values, ", "))
			if width > 0 {
				line = lipgloss.NewStyle().MaxWidth(width).Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(Render(m.entries, width))
}
