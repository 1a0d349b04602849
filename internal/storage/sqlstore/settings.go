package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/models"
)

// GetSettings returns the owner's settings, or the defaults when none were saved.
func (s *Store) GetSettings(ctx context.Context, ownerID string) (models.UserSettings, error) {
	settings := models.UserSettings{OwnerID: ownerID, Units: constants.DefaultUnits}

	var bodyweight sql.NullFloat64
	var units string
	err := s.conn().queryRow(ctx,
		"SELECT bodyweight, units FROM user_settings WHERE owner_id = ?", ownerID).Scan(&bodyweight, &units)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}

	settings.Bodyweight = ptrFloat(bodyweight)
	if units != "" {
		settings.Units = units
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	units := settings.Units
	if units == "" {
		units = constants.DefaultUnits
	}
	_, err := s.conn().exec(ctx, `
		INSERT INTO user_settings (owner_id, bodyweight, units) VALUES (?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET bodyweight = excluded.bodyweight, units = excluded.units`,
		settings.OwnerID, nullable(settings.Bodyweight), units)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
