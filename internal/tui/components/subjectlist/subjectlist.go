package subjectlist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pjournal/internal/models"
)

type AddSubjectMsg struct{}

type OpenSubjectMsg struct {
	ID string
}

type DeleteSubjectMsg struct {
	ID   string
	Name string
}

type Item struct {
	Subject models.SubjectSummary
}

func (i Item) Title() string       { return i.Subject.Name }
func (i Item) Description() string { return i.Subject.ID }
func (i Item) FilterValue() string { return i.Subject.Name }

type KeyMap struct {
	Add    key.Binding
	Open   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(subjects []models.SubjectSummary, width, height int) Model {
	l := list.New(items(subjects), list.NewDefaultDelegate(), width, height)
	l.Title = "Subjects"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Open, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

func items(subjects []models.SubjectSummary) []list.Item {
	out := make([]list.Item, len(subjects))
	for i, s := range subjects {
		out[i] = Item{Subject: s}
	}
	return out
}

func (m *Model) SetSubjects(subjects []models.SubjectSummary) {
	m.list.SetItems(items(subjects))
}

// Selected returns the highlighted subject.
func (m Model) Selected() (models.SubjectSummary, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Subject, ok
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddSubjectMsg{} }
		case key.Matches(msg, m.keys.Open):
			if s, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenSubjectMsg{ID: s.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if s, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteSubjectMsg{ID: s.ID, Name: s.Name} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No subjects yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
