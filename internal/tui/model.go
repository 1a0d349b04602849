package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pjournal/internal/category"
	"github.com/julianstephens/pjournal/internal/chart"
	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/journal"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/reconcile"
	"github.com/julianstephens/pjournal/internal/tui/components/entrylog"
	"github.com/julianstephens/pjournal/internal/tui/components/subjectlist"
	"github.com/julianstephens/pjournal/internal/tui/forms"
)

type SessionState int

// The first three states are tabs.
const (
	StateSubjects SessionState = iota
	StateEntries
	StateChart
	StateAddSubject
	StateNewEntry
	StateConfirmDelete
)

const tabCount = 3

type SubjectFormModel struct {
	Name string
	Kind constants.TemplateKind
}

type Model struct {
	svc   *journal.Service
	state SessionState
	keys  KeyMap
	help  help.Model

	subjects subjectlist.Model
	entries  entrylog.Model

	// current is the open subject; its template drives new entries.
	current     *models.Subject
	selection   category.Selection
	chartFields []string
	chartField  int
	chartPoints []chart.Point

	form        *huh.Form
	subjectForm *SubjectFormModel
	entryForm   *forms.EntryForm
	draft       *reconcile.Draft

	toDelete subjectlist.DeleteSubjectMsg
	status   string
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(svc *journal.Service) Model {
	return Model{
		svc:       svc,
		state:     StateSubjects,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		subjects:  subjectlist.New(nil, 0, 0),
		entries:   entrylog.New(0, 0),
		selection: category.All,
	}
}

// Run starts the TUI on the alternate screen.
func Run(svc *journal.Service) error {
	_, err := tea.NewProgram(NewModel(svc), tea.WithAltScreen()).Run()
	return err
}

type subjectsLoadedMsg struct {
	subjects []models.SubjectSummary
	err      error
}

type subjectLoadedMsg struct {
	subject models.Subject
	entries []models.Entry
	fields  []string
	err     error
}

type chartLoadedMsg struct {
	field  string
	points []chart.Point
	err    error
}

type savedMsg struct {
	status    string
	subjectID string
	err       error
}

func (m Model) loadSubjects() tea.Cmd {
	return func() tea.Msg {
		subjects, err := m.svc.Subjects(context.Background())
		return subjectsLoadedMsg{subjects: subjects, err: err}
	}
}

func (m Model) loadSubject(id string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		subject, err := m.svc.GetSubjectWithTemplate(ctx, id)
		if err != nil {
			return subjectLoadedMsg{err: err}
		}
		entries, err := m.svc.Entries(ctx, id)
		if err != nil {
			return subjectLoadedMsg{err: err}
		}
		fields, err := m.svc.ChartFields(ctx, id)
		return subjectLoadedMsg{subject: subject, entries: entries, fields: fields, err: err}
	}
}

func (m Model) loadChart(subjectID, field string) tea.Cmd {
	return func() tea.Msg {
		points, err := m.svc.Chart(context.Background(), subjectID, field)
		return chartLoadedMsg{field: field, points: points, err: err}
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateSubjects:
		keys = append(keys, m.keys.Add, m.keys.Enter, m.keys.Delete)
	case StateEntries:
		keys = append(keys, m.keys.NewEntry, m.keys.CopyEntry, m.keys.Category)
	case StateChart:
		keys = append(keys, m.keys.Left, m.keys.Right)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Enter}
	actions := []key.Binding{m.keys.Add, m.keys.Delete, m.keys.NewEntry, m.keys.CopyEntry, m.keys.Category}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.loadSubjects()
}
