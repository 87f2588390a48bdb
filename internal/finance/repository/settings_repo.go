package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/confecta/confecta/internal/finance/entity"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Find returns the owner's settings, or ErrNotFound when none were ever
// saved; the service falls back to the configured default.
func (r *SettingsRepository) Find(ctx context.Context, ownerID string) (*entity.OwnerSettings, error) {
	var settings entity.OwnerSettings
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *entity.OwnerSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"monthly_target", "updated_at"}),
		}).
		Create(settings).Error
}
