package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/finance/entity"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) FindAll(ctx context.Context, ownerID string, page, pageSize int, filters map[string]string) ([]entity.FinancialPayment, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.FinancialPayment{}).Where("owner_id = ?", ownerID)

	if factionID := filters["faction_id"]; factionID != "" {
		query = query.Where("faction_id = ?", factionID)
	}
	if orderID := filters["order_id"]; orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []entity.FinancialPayment
	err := query.Order("paid_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *entity.FinancialPayment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

// SumPaidBetween totals payments with paid_at in [from, to).
func (r *PaymentRepository) SumPaidBetween(ctx context.Context, ownerID string, from, to time.Time) (float64, int64, error) {
	var result struct {
		Total float64
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&entity.FinancialPayment{}).
		Where("owner_id = ? AND paid_at >= ? AND paid_at < ?", ownerID, from, to).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Total, result.Count, nil
}
