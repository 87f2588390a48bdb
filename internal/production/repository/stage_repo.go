package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
)

// StageRepository persists the stage catalog.
type StageRepository struct {
	db *gorm.DB
}

func NewStageRepository(db *gorm.DB) *StageRepository {
	return &StageRepository{db: db}
}

// ListOrdered returns the owner's catalog sorted by sequence order.
func (r *StageRepository) ListOrdered(ctx context.Context, ownerID string) ([]entity.StageDefinition, error) {
	var stages []entity.StageDefinition
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("seq_order ASC").
		Find(&stages).Error
	return stages, err
}

// FindByID finds one stage definition scoped to the owner.
func (r *StageRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.StageDefinition, error) {
	var stage entity.StageDefinition
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

// Create inserts a stage definition.
func (r *StageRepository) Create(ctx context.Context, stage *entity.StageDefinition) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

// Update saves a stage definition.
func (r *StageRepository) Update(ctx context.Context, stage *entity.StageDefinition) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// Delete removes a stage definition. Progress rows referencing it are left
// in place — the snapshot keeps them renderable.
func (r *StageRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&entity.StageDefinition{}).Error
}

// NextSeqOrder returns max(seq_order)+1 for the owner's catalog.
func (r *StageRepository) NextSeqOrder(ctx context.Context, ownerID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&entity.StageDefinition{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(MAX(seq_order), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
