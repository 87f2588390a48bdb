package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/config"
	"github.com/confecta/confecta/internal/finance/entity"
	"github.com/confecta/confecta/internal/finance/repository"
	prodservice "github.com/confecta/confecta/internal/production/service"
	"github.com/confecta/confecta/internal/shared/apperr"
	"github.com/confecta/confecta/internal/shared/clock"
)

// PendencyService owns the facção payment ledger: one open pendency per
// finalized (order, stage), settled by moving the row into payments.
type PendencyService struct {
	repos  *repository.Repositories
	rdb    *redis.Client
	cfg    config.FinanceConfig
	clk    clock.Clock
	logger *zap.Logger
}

func NewPendencyService(repos *repository.Repositories, rdb *redis.Client, cfg config.FinanceConfig, clk clock.Clock, logger *zap.Logger) *PendencyService {
	return &PendencyService{repos: repos, rdb: rdb, cfg: cfg, clk: clk, logger: logger}
}

// RecordStageCompletion upserts the pendency for a finalized stage:
// amount is completed pieces times the facção's per-piece cost, due date
// defaults to the configured horizon from today. Re-finalizing the same
// stage overwrites the amount but keeps the original due date.
func (s *PendencyService) RecordStageCompletion(ctx context.Context, ownerID string, completion prodservice.StageCompletion) error {
	now := s.clk.Now()
	pendency := &entity.FinancialPendency{
		ID:                 uuid.New().String()[:32],
		OrderID:            completion.OrderID,
		StageID:            completion.StageID,
		OrderCode:          completion.OrderCode,
		StageName:          completion.StageName,
		FactionID:          completion.FactionID,
		FactionName:        completion.FactionName,
		ProductID:          completion.ProductID,
		ProductDescription: completion.ProductDescription,
		CompletedQty:       completion.CompletedQty,
		PerPieceCost:       completion.PerPieceCost,
		Amount:             float64(completion.CompletedQty) * completion.PerPieceCost,
		DueDate:            clock.Today(now).AddDate(0, 0, s.cfg.DefaultDueDays),
		OwnerID:            ownerID,
	}

	err := s.repos.Pendency.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repos.Pendency.Upsert(ctx, tx, pendency)
	})
	if err != nil {
		return err
	}

	s.invalidateSummary(ctx, ownerID)
	return nil
}

// List returns pendencies with their status derived against today.
func (s *PendencyService) List(ctx context.Context, ownerID string, page, pageSize int, filters map[string]string) ([]entity.FinancialPendency, int64, error) {
	now := s.clk.Now()
	pendencies, total, err := s.repos.Pendency.FindAll(ctx, ownerID, page, pageSize, filters, clock.Today(now))
	if err != nil {
		return nil, 0, err
	}
	for i := range pendencies {
		pendencies[i].Status = pendencies[i].DeriveStatus(now)
	}
	return pendencies, total, nil
}

func (s *PendencyService) Get(ctx context.Context, ownerID, id string) (*entity.FinancialPendency, error) {
	pendency, err := s.repos.Pendency.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	pendency.Status = pendency.DeriveStatus(s.clk.Now())
	return pendency, nil
}

// Delete removes an unpaid pendency.
func (s *PendencyService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.repos.Pendency.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	err := s.repos.Pendency.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repos.Pendency.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateSummary(ctx, ownerID)
	return nil
}

// MarkAsPaidRequest optionally backdates the payment.
type MarkAsPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// MarkAsPaid settles a pendency: inserts the payment and deletes the
// pendency in one transaction so the row is never in both tables.
func (s *PendencyService) MarkAsPaid(ctx context.Context, ownerID, id string, req *MarkAsPaidRequest) (*entity.FinancialPayment, error) {
	pendency, err := s.repos.Pendency.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	paidAt := s.clk.Now()
	if req != nil && req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	payment := &entity.FinancialPayment{
		ID:                 uuid.New().String()[:32],
		PendencyID:         pendency.ID,
		OrderID:            pendency.OrderID,
		StageID:            pendency.StageID,
		OrderCode:          pendency.OrderCode,
		StageName:          pendency.StageName,
		FactionID:          pendency.FactionID,
		FactionName:        pendency.FactionName,
		ProductDescription: pendency.ProductDescription,
		CompletedQty:       pendency.CompletedQty,
		PerPieceCost:       pendency.PerPieceCost,
		Amount:             pendency.Amount,
		PaidAt:             paidAt,
		OwnerID:            ownerID,
	}

	err = s.repos.Pendency.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Payment.Create(ctx, tx, payment); err != nil {
			return err
		}
		return s.repos.Pendency.Delete(ctx, tx, pendency.ID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, ownerID)
	return payment, nil
}

func (s *PendencyService) ListPayments(ctx context.Context, ownerID string, page, pageSize int, filters map[string]string) ([]entity.FinancialPayment, int64, error) {
	return s.repos.Payment.FindAll(ctx, ownerID, page, pageSize, filters)
}

// Summary is the financial dashboard snapshot.
type Summary struct {
	TotalPending          float64 `json:"total_pending"`
	PendingCount          int64   `json:"pending_count"`
	TotalOverdue          float64 `json:"total_overdue"`
	OverdueCount          int64   `json:"overdue_count"`
	TotalPaidThisMonth    float64 `json:"total_paid_this_month"`
	PaidCountThisMonth    int64   `json:"paid_count_this_month"`
	TotalPaidLastMonth    float64 `json:"total_paid_last_month"`
	MonthlyTarget         float64 `json:"monthly_target"`
	MonthlyTargetVariance float64 `json:"monthly_target_variance"`
	MonthOverMonthChange  float64 `json:"month_over_month_change"`
}

// GetSummary aggregates the ledger for the dashboard. The result is
// cached briefly in redis and invalidated on every ledger write.
func (s *PendencyService) GetSummary(ctx context.Context, ownerID string) (*Summary, error) {
	cacheKey := s.summaryKey(ownerID)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Summary
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	now := s.clk.Now()
	today := clock.Today(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	summary := &Summary{}
	var err error

	summary.TotalPending, summary.PendingCount, err = s.repos.Pendency.SumByDueDate(ctx, ownerID, today, false)
	if err != nil {
		return nil, err
	}
	summary.TotalOverdue, summary.OverdueCount, err = s.repos.Pendency.SumByDueDate(ctx, ownerID, today, true)
	if err != nil {
		return nil, err
	}
	summary.TotalPaidThisMonth, summary.PaidCountThisMonth, err = s.repos.Payment.SumPaidBetween(ctx, ownerID, monthStart, nextMonthStart)
	if err != nil {
		return nil, err
	}
	summary.TotalPaidLastMonth, _, err = s.repos.Payment.SumPaidBetween(ctx, ownerID, lastMonthStart, monthStart)
	if err != nil {
		return nil, err
	}

	summary.MonthlyTarget = s.monthlyTarget(ctx, ownerID)
	summary.MonthlyTargetVariance = summary.TotalPaidThisMonth - summary.MonthlyTarget
	if summary.TotalPaidLastMonth > 0 {
		summary.MonthOverMonthChange = (summary.TotalPaidThisMonth - summary.TotalPaidLastMonth) / summary.TotalPaidLastMonth * 100
	}

	if s.rdb != nil && s.cfg.SummaryCacheTTL > 0 {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, s.cfg.SummaryCacheTTL).Err(); err != nil {
				s.logger.Warn("Failed to cache financial summary", zap.Error(err))
			}
		}
	}

	return summary, nil
}

func (s *PendencyService) monthlyTarget(ctx context.Context, ownerID string) float64 {
	settings, err := s.repos.Settings.Find(ctx, ownerID)
	if err != nil {
		return s.cfg.DefaultMonthlyTarget
	}
	return settings.MonthlyTarget
}

// UpdateSettingsRequest sets the owner's monthly payment target.
type UpdateSettingsRequest struct {
	MonthlyTarget float64 `json:"monthly_target" binding:"required,gt=0"`
}

func (s *PendencyService) GetSettings(ctx context.Context, ownerID string) (*entity.OwnerSettings, error) {
	settings, err := s.repos.Settings.Find(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return &entity.OwnerSettings{OwnerID: ownerID, MonthlyTarget: s.cfg.DefaultMonthlyTarget}, nil
		}
		return nil, err
	}
	return settings, nil
}

func (s *PendencyService) UpdateSettings(ctx context.Context, ownerID string, req *UpdateSettingsRequest) (*entity.OwnerSettings, error) {
	settings := &entity.OwnerSettings{
		OwnerID:       ownerID,
		MonthlyTarget: req.MonthlyTarget,
		UpdatedAt:     s.clk.Now(),
	}
	if err := s.repos.Settings.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx, ownerID)
	return settings, nil
}

func (s *PendencyService) summaryKey(ownerID string) string {
	return fmt.Sprintf("finance:summary:%s", ownerID)
}

func (s *PendencyService) invalidateSummary(ctx context.Context, ownerID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, s.summaryKey(ownerID)).Err(); err != nil {
		s.logger.Warn("Failed to invalidate summary cache", zap.Error(err))
	}
}
