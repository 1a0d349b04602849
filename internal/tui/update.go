package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pjournal/internal/category"
	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/tui/components/subjectlist"
	"github.com/julianstephens/pjournal/internal/tui/forms"
)

// chrome is the number of rows used by tabs, status and help.
const chrome = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.subjects.SetSize(msg.Width-h, msg.Height-v-chrome)
		m.entries.SetSize(msg.Width-h, msg.Height-v-chrome)
		return m, nil

	case subjectsLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.subjects.SetSubjects(msg.subjects)
		}
		return m, nil

	case subjectLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		subject := msg.subject
		m.current = &subject
		m.entries.SetEntries(subject.Name, msg.entries)
		m.chartFields = msg.fields
		if m.chartField >= len(m.chartFields) {
			m.chartField = 0
		}
		m.chartPoints = nil
		if len(m.chartFields) > 0 {
			return m, m.loadChart(subject.ID, m.chartFields[m.chartField])
		}
		return m, nil

	case chartLoadedMsg:
		m.err = msg.err
		m.chartPoints = msg.points
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		cmds := []tea.Cmd{m.loadSubjects()}
		if msg.subjectID != "" {
			cmds = append(cmds, m.loadSubject(msg.subjectID))
		}
		return m, tea.Batch(cmds...)

	case subjectlist.AddSubjectMsg:
		m.subjectForm = &SubjectFormModel{Kind: constants.TemplateJournal}
		m.form = newSubjectForm(m.subjectForm)
		m.state = StateAddSubject
		return m, m.form.Init()

	case subjectlist.OpenSubjectMsg:
		m.state = StateEntries
		m.selection = category.All
		return m, m.loadSubject(msg.ID)

	case subjectlist.DeleteSubjectMsg:
		m.toDelete = msg
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateAddSubject, StateNewEntry:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateSubjects:
		m.subjects, cmd = m.subjects.Update(msg)
	case StateEntries:
		return m.updateEntries(msg)
	case StateChart:
		return m.updateChart(msg)
	}
	return m, cmd
}

func (m Model) updateEntries(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.current != nil {
		switch {
		case key.Matches(msg, m.keys.NewEntry):
			return m.startEntry("")
		case key.Matches(msg, m.keys.CopyEntry):
			if latest, ok := m.entries.Latest(); ok {
				return m.startEntry(latest.ID)
			}
			return m.startEntry("")
		case key.Matches(msg, m.keys.Category):
			m.selection = nextSelection(category.Options(m.current.Template), m.selection)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func nextSelection(opts []category.Selection, cur category.Selection) category.Selection {
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func (m Model) startEntry(priorID string) (tea.Model, tea.Cmd) {
	draft, err := m.svc.NewDraft(context.Background(), *m.current, priorID)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.draft = draft
	m.form, m.entryForm = forms.NewEntryForm(draft, m.selection)
	m.state = StateNewEntry
	return m, m.form.Init()
}

func (m Model) updateChart(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.current == nil || len(m.chartFields) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Left):
		m.chartField = (m.chartField - 1 + len(m.chartFields)) % len(m.chartFields)
	case key.Matches(keyMsg, m.keys.Right):
		m.chartField = (m.chartField + 1) % len(m.chartFields)
	default:
		return m, nil
	}
	return m, m.loadChart(m.current.ID, m.chartFields[m.chartField])
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		state := m.state
		m.state = StateSubjects
		if state == StateNewEntry {
			m.state = StateEntries
			return m, m.submitEntry()
		}
		return m, m.createSubject()
	case huh.StateAborted:
		if m.state == StateNewEntry {
			m.state = StateEntries
		} else {
			m.state = StateSubjects
		}
		m.status = "Cancelled"
		return m, nil
	}
	return m, cmd
}

func (m Model) createSubject() tea.Cmd {
	fm := *m.subjectForm
	return func() tea.Msg {
		subject, err := m.svc.AddSubject(context.Background(), fm.Name, fm.Kind)
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{status: fmt.Sprintf("Created %s", subject.Name)}
	}
}

func (m Model) submitEntry() tea.Cmd {
	ef, draft, subject := m.entryForm, m.draft, *m.current
	return func() tea.Msg {
		if err := ef.Apply(); err != nil {
			return savedMsg{err: err}
		}
		if _, err := m.svc.SubmitEntry(context.Background(), subject.ID, draft); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{status: "Entry saved", subjectID: subject.ID}
	}
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		target := m.toDelete
		m.state = StateSubjects
		if m.current != nil && m.current.ID == target.ID {
			m.current = nil
		}
		return m, func() tea.Msg {
			if _, err := m.svc.DeleteSubject(context.Background(), target.ID); err != nil {
				return savedMsg{err: err}
			}
			return savedMsg{status: fmt.Sprintf("Deleted %s", target.Name)}
		}
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = StateSubjects
	}
	return m, nil
}

func newSubjectForm(fm *SubjectFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject name").
				Value(&fm.Name).
				CharLimit(constants.SubjectNameMax).
				Validate(func(s string) error {
					if len(s) == 0 {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[constants.TemplateKind]().
				Title("Template").
				Options(
					huh.NewOption("Journal", constants.TemplateJournal),
					huh.NewOption("Weight training", constants.TemplateWeightTraining),
				).
				Value(&fm.Kind),
		),
	).WithTheme(huh.ThemeDracula())
}
