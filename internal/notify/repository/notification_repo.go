package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/notify/entity"
	"github.com/confecta/confecta/internal/shared/apperr"
)

// ErrNotFound mirrors gorm.ErrRecordNotFound at this layer.
var ErrNotFound = apperr.ErrNotFound

// Read notifications beyond this count are garbage collected, newest
// kept.
const readKeepLimit = 100

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) FindAll(ctx context.Context, ownerID string, page, pageSize int, unreadOnly bool) ([]entity.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("owner_id = ?", ownerID)
	if unreadOnly {
		query = query.Where("read = false")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []entity.Notification
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// FindUnread returns every unread notification of the owner; the rule
// engine matches against these to suppress duplicates.
func (r *NotificationRepository) FindUnread(ctx context.Context, ownerID string) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND read = false", ownerID).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("owner_id = ? AND read = false", ownerID).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) MarkRead(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("owner_id = ? AND read = false", ownerID).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&entity.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GC prunes the owner's notifications: everything older than maxAge goes,
// and of the read ones only the newest readKeepLimit survive.
func (r *NotificationRepository) GC(ctx context.Context, ownerID string, now time.Time, maxAge time.Duration) (int64, error) {
	var removed int64

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND created_at < ?", ownerID, now.Add(-maxAge)).
		Delete(&entity.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	removed += result.RowsAffected

	var cutoff entity.Notification
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND read = true", ownerID).
		Order("created_at DESC").
		Offset(readKeepLimit).
		First(&cutoff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return removed, nil
		}
		return removed, err
	}

	result = r.db.WithContext(ctx).
		Where("owner_id = ? AND read = true AND created_at <= ?", ownerID, cutoff.CreatedAt).
		Delete(&entity.Notification{})
	if result.Error != nil {
		return removed, result.Error
	}
	removed += result.RowsAffected
	return removed, nil
}

// DistinctOwners lists every owner holding notifications, for the GC
// sweep.
func (r *NotificationRepository) DistinctOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Distinct("owner_id").
		Pluck("owner_id", &owners).Error
	return owners, err
}
