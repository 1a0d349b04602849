package constants

import (
	"strings"
	"time"
)

// TemplateKind names a preset input layout used when adding fields to a template.
type TemplateKind string

const (
	AppName            = "pjournal"
	DefaultKeyringUser = "database-connection"
	JWTKeyringUser     = "jwt-secret"
	DefaultConfigDir   = "~/.config/pjournal"
	DefaultConfigPath  = "~/.config/pjournal/pjournal.db"
	DefaultConfigFile  = "config.yaml"
	DefaultOwnerID     = "local"
	Version            = "v0.3.0"

	// DateFormat is the display format for entry dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "pjournal-"
	BackupFileSuffix = ".db"

	// Template kinds
	TemplateJournal        TemplateKind = "journal"
	TemplateWeightTraining TemplateKind = "weight training"

	// Seed field for every new subject
	DefaultFieldName    = "Journal"
	DefaultExerciseName = "Exercise"

	// Weight training helper labels
	HelperWeight    = "kg"
	HelperWeightLb  = "lb"
	HelperReps      = "reps"
	HelperSets      = "sets"
	HelperEffort    = "Effort"
	CategoryAll     = "all"
	CategoryNone    = "unassigned"
	SelectionNew    = "new"
	DefaultUnits    = "Metric"
	ImperialUnits   = "Imperial"
	DefaultTokenTTL = 24 * time.Hour
	DefaultAddr     = ":8080"
)

// Schema limits
const (
	SubjectNameMax     = 50
	FieldNameMax       = 36
	LegacyFieldNameMax = 50
	InputHelperMax     = 36
	ValueStringMax     = 510
)

// ParseTemplateKind matches s against the known template kinds, ignoring
// case. An empty string selects the journal kind.
func ParseTemplateKind(s string) (TemplateKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(TemplateJournal):
		return TemplateJournal, true
	case string(TemplateWeightTraining), "weight-training", "weights":
		return TemplateWeightTraining, true
	}
	return "", false
}
