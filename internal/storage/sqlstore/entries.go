package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (models.Entry, error) {
	var (
		e          models.Entry
		categories sql.NullString
		created    timestamp
	)
	if err := row.Scan(&e.ID, &e.SubjectID, &e.Template, &categories, &created); err != nil {
		return models.Entry{}, err
	}
	e.Categories = models.ParseCategories(categories.String)
	e.CreatedAt = created.Time
	return e, nil
}

// loadFields reads the fields of an entry with their inputs, in position order.
func (s *Store) loadFields(ctx context.Context, c conn, entryID string) ([]models.Field, error) {
	rows, err := c.query(ctx,
		"SELECT id, entry_id, name, category FROM fields WHERE entry_id = ? ORDER BY position, id", entryID)
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}

	fields := []models.Field{}
	index := map[string]int{}
	for rows.Next() {
		var f models.Field
		var category sql.NullString
		if err := rows.Scan(&f.ID, &f.EntryID, &f.Name, &category); err != nil {
			rows.Close()
			return nil, err
		}
		f.Category = ptrString(category)
		index[f.ID] = len(fields)
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	inputRows, err := c.query(ctx, `
		SELECT fi.id, fi.field_id, fi.input_type, fi.input_helper, fi.value_string, fi.value_number, fi.value_boolean
		FROM field_inputs fi JOIN fields f ON f.id = fi.field_id
		WHERE f.entry_id = ?
		ORDER BY fi.position, fi.id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("load field inputs: %w", err)
	}
	defer inputRows.Close()

	for inputRows.Next() {
		var (
			in     models.FieldInput
			kind   string
			helper sql.NullString
			vs     sql.NullString
			vn     sql.NullFloat64
			vb     sql.NullBool
		)
		if err := inputRows.Scan(&in.ID, &in.FieldID, &kind, &helper, &vs, &vn, &vb); err != nil {
			return nil, err
		}
		in.Kind = models.ParseInputKind(kind)
		in.Helper = ptrString(helper)
		in.Value = models.ValueFromSlots(in.Kind, ptrString(vs), ptrFloat(vn), ptrBool(vb))

		i, ok := index[in.FieldID]
		if !ok {
			continue
		}
		fields[i].Inputs = append(fields[i].Inputs, in)
	}
	return fields, inputRows.Err()
}

func (s *Store) CreateEntryInstance(ctx context.Context, ownerID, subjectID string, entry models.Entry) (models.Entry, error) {
	var id string
	err := s.withTx(ctx, func(c conn) error {
		if err := s.checkSubject(ctx, c, ownerID, subjectID); err != nil {
			return err
		}
		entry.Template = false
		var err error
		id, err = s.insertEntry(ctx, c, subjectID, entry, s.now())
		return err
	})
	if err != nil {
		return models.Entry{}, err
	}
	return s.GetEntryInstance(ctx, ownerID, subjectID, id)
}

func (s *Store) ListEntryInstances(ctx context.Context, ownerID, subjectID string) ([]models.Entry, error) {
	c := s.conn()
	if err := s.checkSubject(ctx, c, ownerID, subjectID); err != nil {
		return nil, err
	}

	rows, err := c.query(ctx, `
		SELECT id, subject_id, template, categories, created_at
		FROM entries WHERE subject_id = ? AND template = ?
		ORDER BY created_at DESC, id`, subjectID, false)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range entries {
		if entries[i].Fields, err = s.loadFields(ctx, c, entries[i].ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) GetEntryInstance(ctx context.Context, ownerID, subjectID, entryID string) (models.Entry, error) {
	c := s.conn()
	row := c.queryRow(ctx, `
		SELECT e.id, e.subject_id, e.template, e.categories, e.created_at
		FROM entries e JOIN subjects s ON s.id = e.subject_id
		WHERE e.id = ? AND e.subject_id = ? AND s.owner_id = ? AND e.template = ?`,
		entryID, subjectID, ownerID, false)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, apperrors.NotFound("entry", entryID)
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	if entry.Fields, err = s.loadFields(ctx, c, entry.ID); err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}
