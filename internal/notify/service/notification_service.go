package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/confecta/confecta/internal/notify/entity"
	"github.com/confecta/confecta/internal/notify/repository"
	"github.com/confecta/confecta/internal/shared/clock"
	"github.com/confecta/confecta/internal/shared/sse"
)

// Notifications older than this are garbage collected.
const maxNotificationAge = 30 * 24 * time.Hour

// NotificationService is the notification store plus the SSE nudge on
// creation.
type NotificationService struct {
	repo   *repository.NotificationRepository
	hub    *sse.Hub
	clk    clock.Clock
	logger *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, hub *sse.Hub, clk clock.Clock, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, hub: hub, clk: clk, logger: logger}
}

// List returns the owner's notifications, pruning stale ones first.
// Pruning failures are logged and ignored; listing still works.
func (s *NotificationService) List(ctx context.Context, ownerID string, page, pageSize int, unreadOnly bool) ([]entity.Notification, int64, error) {
	if removed, err := s.repo.GC(ctx, ownerID, s.clk.Now(), maxNotificationAge); err != nil {
		s.logger.Warn("Notification GC on list failed", zap.String("owner_id", ownerID), zap.Error(err))
	} else if removed > 0 {
		s.logger.Debug("Pruned notifications on list", zap.String("owner_id", ownerID), zap.Int64("removed", removed))
	}
	return s.repo.FindAll(ctx, ownerID, page, pageSize, unreadOnly)
}

func (s *NotificationService) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	return s.repo.CountUnread(ctx, ownerID)
}

func (s *NotificationService) MarkRead(ctx context.Context, ownerID, id string) error {
	return s.repo.MarkRead(ctx, ownerID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, ownerID)
}

func (s *NotificationService) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Create persists the notification and nudges the owner's connected
// sessions over SSE. The nudge is fire-and-forget.
func (s *NotificationService) Create(ctx context.Context, ownerID string, n *entity.Notification) error {
	n.ID = uuid.New().String()[:32]
	n.OwnerID = ownerID
	n.CreatedAt = s.clk.Now()
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.PublishNotification(ownerID, n.ID, n.Type)
	}
	return nil
}

// NotifyOrderCompleted is the production module's completion hook. It is
// best-effort: a failed notification never fails the status change.
func (s *NotificationService) NotifyOrderCompleted(ctx context.Context, ownerID, orderID, orderCode string) {
	unread, err := s.repo.FindUnread(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to load unread notifications for completion hook",
			zap.String("order_code", orderCode), zap.Error(err))
		return
	}
	n := BuildOrderCompleted(orderID, orderCode, unread)
	if n == nil {
		return
	}
	if err := s.Create(ctx, ownerID, n); err != nil {
		s.logger.Error("Failed to create completion notification",
			zap.String("order_code", orderCode), zap.Error(err))
	}
}
