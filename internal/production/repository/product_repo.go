package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
)

// ProductRepository persists registered products.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindAll lists products with optional free-text filter.
func (r *ProductRepository) FindAll(ctx context.Context, ownerID string, page, pageSize int, search string) ([]entity.Product, int64, error) {
	var items []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{}).Where("owner_id = ?", ownerID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("description ILIKE ? OR code ILIKE ? OR reference ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *ProductRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&entity.Product{}).Error
}

// GenerateCode produces PRD-YYYYMM-XXXX.
func (r *ProductRepository) GenerateCode(ctx context.Context, ownerID string) (string, error) {
	prefix := fmt.Sprintf("PRD-%s", time.Now().Format("200601"))
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("owner_id = ? AND code LIKE ?", ownerID, prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}
