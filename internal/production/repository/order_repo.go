package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
)

// OrderRepository persists production orders (OPs).
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindAll lists orders with the filters the board screens use.
func (r *OrderRepository) FindAll(ctx context.Context, ownerID string, page, pageSize int, filters map[string]string) ([]entity.ProductionOrder, int64, error) {
	var items []entity.ProductionOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProductionOrder{}).Where("owner_id = ?", ownerID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := filters["priority"]; priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if productID := filters["product_id"]; productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if factionID := filters["faction_id"]; factionID != "" {
		query = query.Where("faction_id = ?", factionID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Product").
		Preload("Faction").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByStatus returns every order of the owner in one status. The
// notification monitor iterates this; record counts are low (hundreds).
func (r *OrderRepository) FindByStatus(ctx context.Context, ownerID, status string) ([]entity.ProductionOrder, error) {
	var items []entity.ProductionOrder
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, status).
		Find(&items).Error
	return items, err
}

// DistinctOwners lists every owner with at least one order, so periodic
// jobs can fan out per owner.
func (r *OrderRepository) DistinctOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).Model(&entity.ProductionOrder{}).
		Distinct("owner_id").
		Pluck("owner_id", &owners).Error
	return owners, err
}

func (r *OrderRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Faction").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) Update(ctx context.Context, o *entity.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// DeleteCascade removes the order and its progress rows in one
// transaction. Pendencies survive: money owed does not disappear with the
// order.
func (r *OrderRepository) DeleteCascade(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress entity.ProductionProgress
		err := tx.Where("order_id = ?", id).First(&progress).Error
		if err == nil {
			if err := tx.Where("progress_id = ?", progress.ID).Delete(&entity.StageProgress{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&progress).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&entity.ProductionOrder{}).Error
	})
}

// GenerateCode produces the time-based OP code OP-YYYYMM-XXXX.
func (r *OrderRepository) GenerateCode(ctx context.Context, ownerID string) (string, error) {
	prefix := fmt.Sprintf("OP-%s", time.Now().Format("200601"))
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ProductionOrder{}).
		Where("owner_id = ? AND code LIKE ?", ownerID, prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}
