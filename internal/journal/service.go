// Package journal binds the storage provider to one owner and runs the
// template editor and entry reconciler against it.
package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/editor"
	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/logger"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/reconcile"
	"github.com/julianstephens/pjournal/internal/storage"
	"github.com/julianstephens/pjournal/internal/validation"
)

// Action names a destructive operation for the before-destroy hook.
type Action string

const (
	ActionDeleteSubject Action = "delete subject"
	ActionDeleteFields  Action = "delete fields"
	ActionDeleteAccount Action = "delete account"
)

type Option func(*Service)

// WithLegacyFieldNames accepts field names up to 50 characters.
func WithLegacyFieldNames() Option {
	return func(s *Service) { s.legacy = true }
}

// WithSeedNumbers copies committed template numbers into fresh drafts.
func WithSeedNumbers() Option {
	return func(s *Service) { s.draftOpts.SeedNumbers = true }
}

// WithBeforeDestroy registers fn to run before any operation that removes
// rows. An error from fn aborts the operation.
func WithBeforeDestroy(fn func(Action) error) Option {
	return func(s *Service) { s.beforeDestroy = fn }
}

// Service is the journal for a single owner. Every read after a write goes
// back to the store; nothing is cached.
type Service struct {
	store         storage.Provider
	owner         string
	legacy        bool
	draftOpts     reconcile.Options
	beforeDestroy func(Action) error
	validator     *validation.Validator
}

func New(store storage.Provider, ownerID string, opts ...Option) *Service {
	s := &Service{store: store, owner: ownerID}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = validation.New(validation.Options{LegacyFieldNames: s.legacy})
	return s
}

// ForOwner returns a copy of s bound to ownerID.
func (s *Service) ForOwner(ownerID string) *Service {
	c := *s
	c.owner = ownerID
	return &c
}

func (s *Service) Owner() string { return s.owner }

// NewEditor returns a template editor configured like the service.
func (s *Service) NewEditor() *editor.Editor {
	if s.legacy {
		return editor.New(editor.WithLegacyFieldNames())
	}
	return editor.New()
}

func (s *Service) destroy(a Action) error {
	if s.beforeDestroy == nil {
		return nil
	}
	if err := s.beforeDestroy(a); err != nil {
		return fmt.Errorf("before %s: %w", a, err)
	}
	return nil
}

// GetSubjectWithTemplate loads a subject by id.
func (s *Service) GetSubjectWithTemplate(ctx context.Context, subjectID string) (models.Subject, error) {
	return s.store.GetSubjectWithTemplate(ctx, s.owner, subjectID)
}

// CreateSubject stores a new subject and its template. Subject names are
// unique per owner, compared case-insensitively.
func (s *Service) CreateSubject(ctx context.Context, subject models.Subject) (models.Subject, error) {
	if subject.Template == nil {
		return models.Subject{}, reconcile.ErrNoTemplate
	}
	if err := s.checkNameFree(ctx, subject.Name, ""); err != nil {
		return models.Subject{}, err
	}
	created, err := s.store.CreateSubject(ctx, s.owner, strings.TrimSpace(subject.Name), *subject.Template)
	if err != nil {
		return models.Subject{}, err
	}
	logger.Info("Created subject", "owner", s.owner, "id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateSubject applies a template save and returns the subject as stored.
func (s *Service) UpdateSubject(ctx context.Context, subject models.Subject, deletedFieldIDs []string) (models.Subject, error) {
	if err := s.checkNameFree(ctx, subject.Name, subject.ID); err != nil {
		return models.Subject{}, err
	}
	if len(deletedFieldIDs) > 0 {
		if err := s.destroy(ActionDeleteFields); err != nil {
			return models.Subject{}, err
		}
	}
	subject.Name = strings.TrimSpace(subject.Name)
	if err := s.store.UpdateSubject(ctx, s.owner, subject, deletedFieldIDs); err != nil {
		return models.Subject{}, err
	}
	logger.Debug("Updated subject", "id", subject.ID, "deleted_fields", len(deletedFieldIDs))
	return s.store.GetSubjectWithTemplate(ctx, s.owner, subject.ID)
}

func (s *Service) checkNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.store.GetSubjectByName(ctx, s.owner, strings.TrimSpace(name))
	switch {
	case errors.Is(err, errors.KindNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return errors.New(errors.KindConflict, "a subject named %q already exists", existing.Name)
	}
	return nil
}

// Subjects lists the owner's subjects by name.
func (s *Service) Subjects(ctx context.Context) ([]models.SubjectSummary, error) {
	return s.store.ListSubjects(ctx, s.owner)
}

// Subject resolves ref as a subject name first and an id second.
func (s *Service) Subject(ctx context.Context, ref string) (models.Subject, error) {
	subject, err := s.store.GetSubjectByName(ctx, s.owner, ref)
	if errors.Is(err, errors.KindNotFound) {
		return s.store.GetSubjectWithTemplate(ctx, s.owner, ref)
	}
	return subject, err
}

// AddSubject creates a subject named name whose template starts with one
// field of the given kind.
func (s *Service) AddSubject(ctx context.Context, name string, kind constants.TemplateKind) (models.Subject, error) {
	ed := s.NewEditor()
	ed.RenameSubject(name)
	if kind == constants.TemplateWeightTraining {
		ed.AddField(kind)
		if err := ed.RemoveField(0); err != nil {
			return models.Subject{}, err
		}
	}
	return ed.Save(ctx, s)
}

// EditTemplate loads the subject named by ref into an editor, lets fn
// change it, and saves the result.
func (s *Service) EditTemplate(ctx context.Context, ref string, fn func(*editor.Editor) error) (models.Subject, error) {
	subject, err := s.Subject(ctx, ref)
	if err != nil {
		return models.Subject{}, err
	}
	ed := s.NewEditor()
	ed.Load(subject)
	if err := fn(ed); err != nil {
		return models.Subject{}, err
	}
	return ed.Save(ctx, s)
}

// RenameSubject changes a subject's display name.
func (s *Service) RenameSubject(ctx context.Context, ref, name string) (models.Subject, error) {
	return s.EditTemplate(ctx, ref, func(ed *editor.Editor) error {
		ed.RenameSubject(name)
		return nil
	})
}

// DeleteSubject removes a subject with its template and entries.
func (s *Service) DeleteSubject(ctx context.Context, ref string) (models.Subject, error) {
	subject, err := s.Subject(ctx, ref)
	if err != nil {
		return models.Subject{}, err
	}
	if err := s.destroy(ActionDeleteSubject); err != nil {
		return models.Subject{}, err
	}
	if err := s.store.DeleteSubject(ctx, s.owner, subject.ID); err != nil {
		return models.Subject{}, err
	}
	logger.Info("Deleted subject", "owner", s.owner, "id", subject.ID)
	return subject, nil
}

// Settings returns the owner's settings, with defaults when none are stored.
func (s *Service) Settings(ctx context.Context) (models.UserSettings, error) {
	return s.store.GetSettings(ctx, s.owner)
}

// SettingsUpdate changes the fields that are set.
type SettingsUpdate struct {
	Bodyweight *float64
	Units      *string
}

func (s *Service) UpdateSettings(ctx context.Context, u SettingsUpdate) (models.UserSettings, error) {
	current, err := s.store.GetSettings(ctx, s.owner)
	if err != nil {
		return models.UserSettings{}, err
	}
	if u.Bodyweight != nil {
		if *u.Bodyweight <= 0 {
			return models.UserSettings{}, errors.Validation([]errors.Issue{{
				Path: "bodyweight", Type: string(validation.IssueTooSmall), Message: "Bodyweight must be positive",
			}})
		}
		current.Bodyweight = models.Ptr(*u.Bodyweight)
	}
	if u.Units != nil {
		units, ok := ParseUnits(*u.Units)
		if !ok {
			return models.UserSettings{}, errors.Validation([]errors.Issue{{
				Path: "units", Type: "invalid_enum",
				Message: fmt.Sprintf("Units must be %s or %s", constants.DefaultUnits, constants.ImperialUnits),
			}})
		}
		current.Units = units
	}
	current.OwnerID = s.owner
	if err := s.store.SaveSettings(ctx, current); err != nil {
		return models.UserSettings{}, err
	}
	return s.store.GetSettings(ctx, s.owner)
}

// ParseUnits normalises a unit system name.
func ParseUnits(v string) (string, bool) {
	switch {
	case strings.EqualFold(v, constants.DefaultUnits):
		return constants.DefaultUnits, true
	case strings.EqualFold(v, constants.ImperialUnits):
		return constants.ImperialUnits, true
	}
	return "", false
}

// DeleteAccount removes every subject, entry and setting the owner has.
func (s *Service) DeleteAccount(ctx context.Context) error {
	if err := s.destroy(ActionDeleteAccount); err != nil {
		return err
	}
	if err := s.store.DeleteOwnerData(ctx, s.owner); err != nil {
		return err
	}
	logger.Warn("Deleted all data for owner", "owner", s.owner)
	return nil
}

// SaveTemplate replaces the template of the subject named by ref with
// draft. Persisted fields missing from draft are deleted.
func (s *Service) SaveTemplate(ctx context.Context, ref string, draft models.Subject) (models.Subject, error) {
	return s.EditTemplate(ctx, ref, func(ed *editor.Editor) error {
		return ed.ReplaceDraft(draft)
	})
}
