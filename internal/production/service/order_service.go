package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/repository"
	"github.com/confecta/confecta/internal/shared/apperr"
	"github.com/confecta/confecta/internal/shared/clock"
	"github.com/confecta/confecta/internal/shared/confirm"
)

// CompletionNotifier is invoked when an order reaches completed. The
// notification module implements it; injection happens in main.
type CompletionNotifier interface {
	NotifyOrderCompleted(ctx context.Context, ownerID, orderID, orderCode string)
}

// OrderService manages production orders.
type OrderService struct {
	repo         *repository.OrderRepository
	activityRepo *repository.ActivityLogRepository
	confirmStore *confirm.Store
	clk          clock.Clock
	logger       *zap.Logger
	notifier     CompletionNotifier
}

func NewOrderService(repo *repository.OrderRepository, activityRepo *repository.ActivityLogRepository, confirmStore *confirm.Store, clk clock.Clock, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:         repo,
		activityRepo: activityRepo,
		confirmStore: confirmStore,
		clk:          clk,
		logger:       logger,
	}
}

// SetCompletionNotifier injects the order-completed hook.
func (s *OrderService) SetCompletionNotifier(n CompletionNotifier) {
	s.notifier = n
}

// CreateOrderRequest creates an OP. The grade is snapshotted as sent and
// never recomputed from progress.
type CreateOrderRequest struct {
	ProductID    string       `json:"product_id" binding:"required"`
	FactionID    string       `json:"faction_id"`
	Priority     string       `json:"priority"`
	Grade        entity.Grade `json:"grade" binding:"required"`
	StartDate    *string      `json:"start_date"`
	ExpectedDate *string      `json:"expected_date"`
	Notes        string       `json:"notes"`
}

// UpdateOrderRequest edits mutable order fields. Grade and code are not
// editable.
type UpdateOrderRequest struct {
	FactionID    *string `json:"faction_id"`
	Priority     *string `json:"priority"`
	StartDate    *string `json:"start_date"`
	ExpectedDate *string `json:"expected_date"`
	Notes        *string `json:"notes"`
}

// parseOrderDate validates a YYYY-MM-DD date field. Empty clears it.
func parseOrderDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperr.Validationf("%s must be YYYY-MM-DD, got %q", field, value)
	}
	return &t, nil
}

// DeleteOrderResult reports either completion or a confirmation demand.
type DeleteOrderResult struct {
	Deleted              bool   `json:"deleted"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	ConfirmToken         string `json:"confirm_token,omitempty"`
	Message              string `json:"message,omitempty"`
}

func (s *OrderService) List(ctx context.Context, ownerID string, page, pageSize int, filters map[string]string) ([]entity.ProductionOrder, int64, error) {
	return s.repo.FindAll(ctx, ownerID, page, pageSize, filters)
}

func (s *OrderService) Get(ctx context.Context, ownerID, id string) (*entity.ProductionOrder, error) {
	return s.repo.FindByID(ctx, ownerID, id)
}

func (s *OrderService) Create(ctx context.Context, ownerID string, req *CreateOrderRequest) (*entity.ProductionOrder, error) {
	if req.Grade.TotalPieces() <= 0 {
		return nil, apperr.Validationf("grade must contain at least one piece")
	}

	code, err := s.repo.GenerateCode(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order code: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	order := &entity.ProductionOrder{
		ID:        uuid.New().String()[:32],
		Code:      code,
		ProductID: req.ProductID,
		FactionID: req.FactionID,
		Priority:  priority,
		Status:    entity.OrderStatusPlanned,
		Grade:     req.Grade,
		Notes:     req.Notes,
		OwnerID:   ownerID,
	}

	if req.StartDate != nil {
		if order.StartDate, err = parseOrderDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.ExpectedDate != nil {
		if order.ExpectedDate, err = parseOrderDate("expected_date", *req.ExpectedDate); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, ownerID, "order", order.ID, order.Code, "create", "", entity.OrderStatusPlanned,
		fmt.Sprintf("OP %s created with %d pieces", order.Code, order.TotalPieces()), ownerID)

	return s.repo.FindByID(ctx, ownerID, order.ID)
}

func (s *OrderService) Update(ctx context.Context, ownerID, id string, req *UpdateOrderRequest) (*entity.ProductionOrder, error) {
	order, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.FactionID != nil {
		order.FactionID = *req.FactionID
	}
	if req.Priority != nil {
		order.Priority = *req.Priority
	}
	if req.StartDate != nil {
		if order.StartDate, err = parseOrderDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.ExpectedDate != nil {
		if order.ExpectedDate, err = parseOrderDate("expected_date", *req.ExpectedDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	// Save with associations cleared so preloaded Product/Faction rows are
	// not written back.
	order.Product = nil
	order.Faction = nil
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, ownerID, id)
}

// UpdateStatus moves the order along planned → in_production → completed.
// Reaching completed fires the notification hook.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, id, newStatus string) (*entity.ProductionOrder, error) {
	order, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, target := range entity.ValidOrderTransitions[order.Status] {
		if target == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.Transitionf(order.Status, newStatus)
	}

	fromStatus := order.Status
	order.Status = newStatus
	if newStatus == entity.OrderStatusInProduction && order.StartDate == nil {
		now := s.clk.Now()
		order.StartDate = &now
	}

	order.Product = nil
	order.Faction = nil
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, ownerID, "order", order.ID, order.Code, "status_change", fromStatus, newStatus,
		fmt.Sprintf("OP %s: %s → %s", order.Code, fromStatus, newStatus), ownerID)

	if newStatus == entity.OrderStatusCompleted && s.notifier != nil {
		s.notifier.NotifyOrderCompleted(ctx, ownerID, order.ID, order.Code)
	}

	return order, nil
}

// Delete is destructive: the first call (no token) answers with a
// one-shot confirmation token instead of deleting; re-issuing with the
// token performs the cascade. Pendencies are kept on purpose.
func (s *OrderService) Delete(ctx context.Context, ownerID, id, confirmToken string) (*DeleteOrderResult, error) {
	order, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.confirmStore.Consume(ctx, ownerID, "delete_order", id, confirmToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		token, err := s.confirmStore.Issue(ctx, ownerID, "delete_order", id)
		if err != nil {
			return nil, err
		}
		return &DeleteOrderResult{
			RequiresConfirmation: true,
			ConfirmToken:         token,
			Message:              fmt.Sprintf("Deleting OP %s removes its production progress. Financial pendencies are kept.", order.Code),
		}, nil
	}

	if err := s.repo.DeleteCascade(ctx, ownerID, id); err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, ownerID, "order", order.ID, order.Code, "delete", order.Status, "",
		fmt.Sprintf("OP %s deleted", order.Code), ownerID)
	s.logger.Info("Order deleted", zap.String("order_code", order.Code), zap.String("owner_id", ownerID))

	return &DeleteOrderResult{Deleted: true}, nil
}

// ActivityLog pages through the order's audit trail.
func (s *OrderService) ActivityLog(ctx context.Context, ownerID, orderID string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	return s.activityRepo.FindByEntity(ctx, ownerID, "order", orderID, page, pageSize)
}
