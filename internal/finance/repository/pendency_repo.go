package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/confecta/confecta/internal/finance/entity"
	"github.com/confecta/confecta/internal/shared/apperr"
)

type PendencyRepository struct {
	db *gorm.DB
}

func NewPendencyRepository(db *gorm.DB) *PendencyRepository {
	return &PendencyRepository{db: db}
}

// FindAll lists pendencies for an owner. The status filter is resolved
// against the due date because overdue is never stored: "overdue" means
// due strictly before today, "pending" means due today or later.
func (r *PendencyRepository) FindAll(ctx context.Context, ownerID string, page, pageSize int, filters map[string]string, today time.Time) ([]entity.FinancialPendency, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.FinancialPendency{}).Where("owner_id = ?", ownerID)

	if factionID := filters["faction_id"]; factionID != "" {
		query = query.Where("faction_id = ?", factionID)
	}
	if orderID := filters["order_id"]; orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	switch filters["status"] {
	case entity.PendencyStatusOverdue:
		query = query.Where("due_date < ?", today)
	case entity.PendencyStatusPending:
		query = query.Where("due_date >= ?", today)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pendencies []entity.FinancialPendency
	err := query.Order("due_date ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pendencies).Error
	if err != nil {
		return nil, 0, err
	}
	return pendencies, total, nil
}

func (r *PendencyRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.FinancialPendency, error) {
	var pendency entity.FinancialPendency
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&pendency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pendency, nil
}

// Upsert creates or updates the pendency for its (order, stage) pair
// inside tx. The existing row is locked for the duration so two
// finalizations of the same stage serialize; losing a create race to a
// writer outside the lock surfaces ErrStalePendencyWrite.
func (r *PendencyRepository) Upsert(ctx context.Context, tx *gorm.DB, pendency *entity.FinancialPendency) error {
	var existing entity.FinancialPendency
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND stage_id = ? AND owner_id = ?", pendency.OrderID, pendency.StageID, pendency.OwnerID).
		First(&existing).Error
	switch {
	case err == nil:
		pendency.ID = existing.ID
		pendency.CreatedAt = existing.CreatedAt
		// Re-finalizing revises quantities and amount; the payment terms
		// were set when the work was first delivered.
		pendency.DueDate = existing.DueDate
		return tx.WithContext(ctx).Save(pendency).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.WithContext(ctx).Create(pendency).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrStalePendencyWrite
			}
			return err
		}
		return nil
	default:
		return err
	}
}

func (r *PendencyRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).Delete(&entity.FinancialPendency{}, "id = ?", id).Error
}

// FindDueBy returns every open pendency of the owner due strictly before
// cutoff; callers split due-soon from overdue against today.
func (r *PendencyRepository) FindDueBy(ctx context.Context, ownerID string, cutoff time.Time) ([]entity.FinancialPendency, error) {
	var pendencies []entity.FinancialPendency
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND due_date < ?", ownerID, cutoff).
		Order("due_date ASC").
		Find(&pendencies).Error
	return pendencies, err
}

// DistinctOwners lists every owner with at least one open pendency.
func (r *PendencyRepository) DistinctOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).Model(&entity.FinancialPendency{}).
		Distinct("owner_id").
		Pluck("owner_id", &owners).Error
	return owners, err
}

// SumByDueDate returns total amount and row count on one side of today.
func (r *PendencyRepository) SumByDueDate(ctx context.Context, ownerID string, today time.Time, overdue bool) (float64, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.FinancialPendency{}).Where("owner_id = ?", ownerID)
	if overdue {
		query = query.Where("due_date < ?", today)
	} else {
		query = query.Where("due_date >= ?", today)
	}

	var result struct {
		Total float64
		Count int64
	}
	err := query.Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Total, result.Count, nil
}

func (r *PendencyRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
