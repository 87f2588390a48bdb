package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
)

// FactionRepository persists outsourced partners (facções).
type FactionRepository struct {
	db *gorm.DB
}

func NewFactionRepository(db *gorm.DB) *FactionRepository {
	return &FactionRepository{db: db}
}

func (r *FactionRepository) FindAll(ctx context.Context, ownerID string, page, pageSize int, status string) ([]entity.Faction, int64, error) {
	var items []entity.Faction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Faction{}).Where("owner_id = ?", ownerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *FactionRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Faction, error) {
	var f entity.Faction
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FactionRepository) Create(ctx context.Context, f *entity.Faction) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FactionRepository) Update(ctx context.Context, f *entity.Faction) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FactionRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&entity.Faction{}).Error
}
