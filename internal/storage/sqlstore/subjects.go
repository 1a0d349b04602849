package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/logger"
	"github.com/julianstephens/pjournal/internal/models"
)

func (s *Store) CreateSubject(ctx context.Context, ownerID, name string, template models.Entry) (models.Subject, error) {
	id := s.newID()
	now := s.now()

	err := s.withTx(ctx, func(c conn) error {
		if _, err := c.exec(ctx,
			"INSERT INTO subjects (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)",
			id, ownerID, name, s.dialect.timeArg(now)); err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}
		template.Template = true
		_, err := s.insertEntry(ctx, c, id, template, now)
		return err
	})
	if err != nil {
		return models.Subject{}, err
	}

	logger.Debug("Created subject", "id", id, "fields", len(template.Fields))
	return s.GetSubjectWithTemplate(ctx, ownerID, id)
}

func (s *Store) UpdateSubject(ctx context.Context, ownerID string, subject models.Subject, deletedFieldIDs []string) error {
	if subject.Template == nil {
		return apperrors.New(apperrors.KindInvalid, "subject %s has no template", subject.ID)
	}

	return s.withTx(ctx, func(c conn) error {
		if err := s.checkSubject(ctx, c, ownerID, subject.ID); err != nil {
			return err
		}

		templateID, err := s.templateID(ctx, c, subject.ID)
		if err != nil {
			return err
		}
		if subject.Template.ID != "" && subject.Template.ID != templateID {
			return apperrors.New(apperrors.KindConflict, "template %s does not belong to subject %s", subject.Template.ID, subject.ID)
		}

		if err := s.deleteFields(ctx, c, templateID, deletedFieldIDs); err != nil {
			return err
		}

		if _, err := c.exec(ctx, "UPDATE subjects SET name = ? WHERE id = ? AND owner_id = ?",
			subject.Name, subject.ID, ownerID); err != nil {
			return fmt.Errorf("update subject: %w", err)
		}
		if _, err := c.exec(ctx, "UPDATE entries SET categories = ? WHERE id = ?",
			nullString(subject.Template.Categories.String()), templateID); err != nil {
			return fmt.Errorf("update template categories: %w", err)
		}

		for pos, f := range subject.Template.Fields {
			if err := s.upsertField(ctx, c, templateID, pos, f); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetSubjectWithTemplate(ctx context.Context, ownerID, subjectID string) (models.Subject, error) {
	c := s.conn()

	var subject models.Subject
	var created timestamp
	err := c.queryRow(ctx,
		"SELECT id, owner_id, name, created_at FROM subjects WHERE id = ? AND owner_id = ?",
		subjectID, ownerID).Scan(&subject.ID, &subject.OwnerID, &subject.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, apperrors.NotFound("subject", subjectID)
	}
	if err != nil {
		return models.Subject{}, fmt.Errorf("get subject: %w", err)
	}
	subject.CreatedAt = created.Time

	row := c.queryRow(ctx, `
		SELECT id, subject_id, template, categories, created_at
		FROM entries WHERE subject_id = ? AND template = ?
		ORDER BY created_at LIMIT 1`, subjectID, true)
	template, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return subject, nil
	}
	if err != nil {
		return models.Subject{}, fmt.Errorf("get template: %w", err)
	}
	if template.Fields, err = s.loadFields(ctx, c, template.ID); err != nil {
		return models.Subject{}, err
	}
	subject.Template = &template
	return subject, nil
}

func (s *Store) GetSubjectByName(ctx context.Context, ownerID, name string) (models.Subject, error) {
	var id string
	err := s.conn().queryRow(ctx, `
		SELECT id FROM subjects WHERE owner_id = ? AND lower(name) = lower(?)
		ORDER BY created_at LIMIT 1`, ownerID, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, apperrors.NotFound("subject", name)
	}
	if err != nil {
		return models.Subject{}, fmt.Errorf("find subject: %w", err)
	}
	return s.GetSubjectWithTemplate(ctx, ownerID, id)
}

func (s *Store) DeleteFields(ctx context.Context, ownerID, templateEntryID string, fieldIDs []string) error {
	return s.withTx(ctx, func(c conn) error {
		var id string
		err := c.queryRow(ctx, `
			SELECT e.id FROM entries e JOIN subjects s ON s.id = e.subject_id
			WHERE e.id = ? AND s.owner_id = ?`, templateEntryID, ownerID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("entry", templateEntryID)
		}
		if err != nil {
			return fmt.Errorf("check entry: %w", err)
		}
		return s.deleteFields(ctx, c, templateEntryID, fieldIDs)
	})
}

func (s *Store) ListSubjects(ctx context.Context, ownerID string) ([]models.SubjectSummary, error) {
	rows, err := s.conn().query(ctx,
		"SELECT id, name FROM subjects WHERE owner_id = ? ORDER BY name, created_at", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := []models.SubjectSummary{}
	for rows.Next() {
		var sum models.SubjectSummary
		if err := rows.Scan(&sum.ID, &sum.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, sum)
	}
	return subjects, rows.Err()
}

func (s *Store) DeleteSubject(ctx context.Context, ownerID, subjectID string) error {
	return s.withTx(ctx, func(c conn) error {
		if err := s.checkSubject(ctx, c, ownerID, subjectID); err != nil {
			return err
		}
		return deleteSubjects(ctx, c, "id = ?", subjectID)
	})
}

func (s *Store) DeleteOwnerData(ctx context.Context, ownerID string) error {
	return s.withTx(ctx, func(c conn) error {
		if err := deleteSubjects(ctx, c, "owner_id = ?", ownerID); err != nil {
			return err
		}
		if _, err := c.exec(ctx, "DELETE FROM user_settings WHERE owner_id = ?", ownerID); err != nil {
			return fmt.Errorf("delete settings: %w", err)
		}
		return nil
	})
}

// deleteSubjects removes the subjects matched by where and everything under
// them, children first.
func deleteSubjects(ctx context.Context, c conn, where string, arg interface{}) error {
	subjects := "SELECT id FROM subjects WHERE " + where
	entries := "SELECT id FROM entries WHERE subject_id IN (" + subjects + ")"
	fields := "SELECT id FROM fields WHERE entry_id IN (" + entries + ")"

	stmts := []struct{ what, sql string }{
		{"field inputs", "DELETE FROM field_inputs WHERE field_id IN (" + fields + ")"},
		{"fields", "DELETE FROM fields WHERE entry_id IN (" + entries + ")"},
		{"entries", "DELETE FROM entries WHERE subject_id IN (" + subjects + ")"},
		{"subjects", "DELETE FROM subjects WHERE " + where},
	}
	for _, st := range stmts {
		if _, err := c.exec(ctx, st.sql, arg); err != nil {
			return fmt.Errorf("delete %s: %w", st.what, err)
		}
	}
	return nil
}

func (s *Store) checkSubject(ctx context.Context, c conn, ownerID, subjectID string) error {
	var id string
	err := c.queryRow(ctx, "SELECT id FROM subjects WHERE id = ? AND owner_id = ?", subjectID, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("subject", subjectID)
	}
	if err != nil {
		return fmt.Errorf("check subject: %w", err)
	}
	return nil
}

func (s *Store) templateID(ctx context.Context, c conn, subjectID string) (string, error) {
	var id string
	err := c.queryRow(ctx,
		"SELECT id FROM entries WHERE subject_id = ? AND template = ? ORDER BY created_at LIMIT 1",
		subjectID, true).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.New(apperrors.KindNoTemplate, "subject %s has no template", subjectID)
	}
	if err != nil {
		return "", fmt.Errorf("find template: %w", err)
	}
	return id, nil
}

func (s *Store) deleteFields(ctx context.Context, c conn, entryID string, fieldIDs []string) error {
	if len(fieldIDs) == 0 {
		return nil
	}
	in := placeholders(len(fieldIDs))
	args := append([]interface{}{entryID}, stringArgs(fieldIDs)...)

	if _, err := c.exec(ctx,
		"DELETE FROM field_inputs WHERE field_id IN (SELECT id FROM fields WHERE entry_id = ? AND id IN ("+in+"))",
		args...); err != nil {
		return fmt.Errorf("delete field inputs: %w", err)
	}
	res, err := c.exec(ctx, "DELETE FROM fields WHERE entry_id = ? AND id IN ("+in+")", args...)
	if err != nil {
		return fmt.Errorf("delete fields: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && int(n) != len(fieldIDs) {
		logger.Warn("Some fields were already gone", "entry", entryID, "requested", len(fieldIDs), "deleted", n)
	}
	return nil
}

func (s *Store) insertEntry(ctx context.Context, c conn, subjectID string, e models.Entry, at time.Time) (string, error) {
	id := s.newID()
	if _, err := c.exec(ctx,
		"INSERT INTO entries (id, subject_id, template, categories, created_at) VALUES (?, ?, ?, ?, ?)",
		id, subjectID, e.Template, nullString(e.Categories.String()), s.dialect.timeArg(at)); err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}
	for pos, f := range e.Fields {
		if err := s.insertField(ctx, c, id, pos, f); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (s *Store) insertField(ctx context.Context, c conn, entryID string, pos int, f models.Field) error {
	id := s.newID()
	if _, err := c.exec(ctx,
		"INSERT INTO fields (id, entry_id, name, category, position) VALUES (?, ?, ?, ?, ?)",
		id, entryID, f.Name, nullable(f.Category), pos); err != nil {
		return fmt.Errorf("insert field %q: %w", f.Name, err)
	}
	for j, in := range f.Inputs {
		if err := s.insertInput(ctx, c, id, j, in); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertInput(ctx context.Context, c conn, fieldID string, pos int, in models.FieldInput) error {
	vs, vn, vb := models.Slots(in.Value)
	if _, err := c.exec(ctx, `
		INSERT INTO field_inputs (id, field_id, input_type, input_helper, value_string, value_number, value_boolean, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.newID(), fieldID, string(in.Kind), nullable(in.Helper), nullable(vs), nullable(vn), nullable(vb), pos); err != nil {
		return fmt.Errorf("insert field input: %w", err)
	}
	return nil
}

// upsertField updates a field by id when it exists on entryID and inserts
// it otherwise.
func (s *Store) upsertField(ctx context.Context, c conn, entryID string, pos int, f models.Field) error {
	if f.ID == "" {
		return s.insertField(ctx, c, entryID, pos, f)
	}
	res, err := c.exec(ctx,
		"UPDATE fields SET name = ?, category = ?, position = ? WHERE id = ? AND entry_id = ?",
		f.Name, nullable(f.Category), pos, f.ID, entryID)
	if err != nil {
		return fmt.Errorf("update field %q: %w", f.Name, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		f = f.Clone()
		f.ID = ""
		for j := range f.Inputs {
			f.Inputs[j].ID = ""
		}
		return s.insertField(ctx, c, entryID, pos, f)
	}

	for j, in := range f.Inputs {
		if in.ID != "" {
			vs, vn, vb := models.Slots(in.Value)
			res, err := c.exec(ctx, `
				UPDATE field_inputs SET input_type = ?, input_helper = ?, value_string = ?, value_number = ?, value_boolean = ?, position = ?
				WHERE id = ? AND field_id = ?`,
				string(in.Kind), nullable(in.Helper), nullable(vs), nullable(vn), nullable(vb), j, in.ID, f.ID)
			if err != nil {
				return fmt.Errorf("update field input: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				continue
			}
		}
		if err := s.insertInput(ctx, c, f.ID, j, in); err != nil {
			return err
		}
	}
	return nil
}
