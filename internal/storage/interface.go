package storage

import (
	"context"

	"github.com/julianstephens/pjournal/internal/models"
)

// Provider is the journal store. Every call is scoped to ownerID; rows owned
// by anyone else behave as if they do not exist.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Subjects
	CreateSubject(ctx context.Context, ownerID, name string, template models.Entry) (models.Subject, error)
	// UpdateSubject deletes deletedFieldIDs from the template entry and
	// upserts the subject's name, categories and template fields by id,
	// all in one transaction.
	UpdateSubject(ctx context.Context, ownerID string, subject models.Subject, deletedFieldIDs []string) error
	GetSubjectWithTemplate(ctx context.Context, ownerID, subjectID string) (models.Subject, error)
	GetSubjectByName(ctx context.Context, ownerID, name string) (models.Subject, error)
	DeleteFields(ctx context.Context, ownerID, templateEntryID string, fieldIDs []string) error
	ListSubjects(ctx context.Context, ownerID string) ([]models.SubjectSummary, error)
	DeleteSubject(ctx context.Context, ownerID, subjectID string) error

	// Entries
	CreateEntryInstance(ctx context.Context, ownerID, subjectID string, entry models.Entry) (models.Entry, error)
	ListEntryInstances(ctx context.Context, ownerID, subjectID string) ([]models.Entry, error)
	GetEntryInstance(ctx context.Context, ownerID, subjectID, entryID string) (models.Entry, error)

	// Settings
	GetSettings(ctx context.Context, ownerID string) (models.UserSettings, error)
	SaveSettings(ctx context.Context, settings models.UserSettings) error

	// Account
	DeleteOwnerData(ctx context.Context, ownerID string) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by backends that manage their own schema.
type Migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
