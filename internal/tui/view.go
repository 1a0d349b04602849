package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pjournal/internal/chart"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateSubjects:
		content = docStyle.Render(m.subjects.View())
	case StateEntries:
		content = docStyle.Render(m.viewEntries())
	case StateChart:
		content = docStyle.Render(m.viewChart())
	case StateAddSubject, StateNewEntry:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Subjects", "Entries", "Chart"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewEntries() string {
	if m.current == nil {
		return "Open a subject from the Subjects tab."
	}
	header := headerStyle.Render(fmt.Sprintf("%s  (category: %s)", m.current.Name, m.selection))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.entries.View())
}

func (m Model) viewChart() string {
	if m.current == nil {
		return "Open a subject from the Subjects tab."
	}
	if len(m.chartFields) == 0 {
		return fmt.Sprintf("Nothing to chart for %s yet.", m.current.Name)
	}
	field := m.chartFields[m.chartField]
	header := headerStyle.Render(fmt.Sprintf("%s / %s  (%d of %d)", m.current.Name, field, m.chartField+1, len(m.chartFields)))
	w, h := m.width-8, m.height-chrome-6
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", chart.Render(m.chartPoints, w, h))
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %s and all of its entries?", m.toDelete.Name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
