package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
)

// ActivityLogRepository persists the audit trail.
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByEntity pages through one aggregate's log.
func (r *ActivityLogRepository) FindByEntity(ctx context.Context, ownerID, entityType, entityID string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	var items []entity.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ActivityLog{}).
		Where("owner_id = ? AND entity_type = ? AND entity_id = ?", ownerID, entityType, entityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// LogActivity writes a log entry, ignoring errors. The audit trail is
// best-effort and never fails the triggering operation.
func (r *ActivityLogRepository) LogActivity(ctx context.Context, ownerID, entityType, entityID, entityCode, action, fromStatus, toStatus, content, operatorID string) {
	log := &entity.ActivityLog{
		ID:         uuid.New().String()[:32],
		EntityType: entityType,
		EntityID:   entityID,
		EntityCode: entityCode,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Content:    content,
		OperatorID: operatorID,
		OwnerID:    ownerID,
	}
	r.db.WithContext(ctx).Create(log)
}
