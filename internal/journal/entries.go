package journal

import (
	"context"

	"github.com/julianstephens/pjournal/internal/chart"
	"github.com/julianstephens/pjournal/internal/logger"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/reconcile"
)

// NewDraft builds an entry draft from the subject's current template. With
// a non-empty priorID the draft is loaded from that entry instead.
func (s *Service) NewDraft(ctx context.Context, subject models.Subject, priorID string) (*reconcile.Draft, error) {
	var prior *models.Entry
	if priorID != "" {
		e, err := s.store.GetEntryInstance(ctx, s.owner, subject.ID, priorID)
		if err != nil {
			return nil, err
		}
		prior = &e
	}
	return reconcile.Build(subject.Template, prior, s.draftOpts)
}

// SubmitEntry validates the draft's edited fields and stores them as a new
// instance entry.
func (s *Service) SubmitEntry(ctx context.Context, subjectID string, draft *reconcile.Draft) (models.Entry, error) {
	entry, err := draft.Submit()
	if err != nil {
		return models.Entry{}, err
	}
	if r := s.validator.ValidateEntry(entry); !r.Valid() {
		return models.Entry{}, r.Err()
	}
	created, err := s.store.CreateEntryInstance(ctx, s.owner, subjectID, entry)
	if err != nil {
		return models.Entry{}, err
	}
	logger.Info("Created entry", "subject", subjectID, "id", created.ID, "fields", len(created.Fields))
	return created, nil
}

// Entries lists a subject's instance entries, newest first.
func (s *Service) Entries(ctx context.Context, subjectID string) ([]models.Entry, error) {
	return s.store.ListEntryInstances(ctx, s.owner, subjectID)
}

func (s *Service) Entry(ctx context.Context, subjectID, entryID string) (models.Entry, error) {
	return s.store.GetEntryInstance(ctx, s.owner, subjectID, entryID)
}

// Chart aggregates the weight series of every field named fieldName.
func (s *Service) Chart(ctx context.Context, subjectID, fieldName string) ([]chart.Point, error) {
	entries, err := s.store.ListEntryInstances(ctx, s.owner, subjectID)
	if err != nil {
		return nil, err
	}
	return chart.Aggregate(chart.SamplesFromEntries(entries, fieldName)), nil
}

// ChartFields lists the field names that can be charted for a subject.
func (s *Service) ChartFields(ctx context.Context, subjectID string) ([]string, error) {
	entries, err := s.store.ListEntryInstances(ctx, s.owner, subjectID)
	if err != nil {
		return nil, err
	}
	return chart.FieldNames(entries), nil
}

// RecordEntry stores a complete entry sent by a client. Every field counts
// as edited; blank inputs and fields are dropped as on any submit.
func (s *Service) RecordEntry(ctx context.Context, subject models.Subject, posted models.Entry) (models.Entry, error) {
	draft, err := reconcile.Build(subject.Template, &posted, s.draftOpts)
	if err != nil {
		return models.Entry{}, err
	}
	draft.TouchAll()
	return s.SubmitEntry(ctx, subject.ID, draft)
}
