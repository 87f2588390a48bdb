package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/shared/apperr"
)

// ProgressRepository persists progress records and their per-stage rows.
// Stage mutations touch a single row, never the whole set.
type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// FindByOrderID loads the order's progress record with stages sorted by
// sequence.
func (r *ProgressRepository) FindByOrderID(ctx context.Context, ownerID, orderID string) (*entity.ProductionProgress, error) {
	var p entity.ProductionProgress
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq_order ASC")
		}).
		Where("order_id = ? AND owner_id = ?", orderID, ownerID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByID loads a progress record by its own id.
func (r *ProgressRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.ProductionProgress, error) {
	var p entity.ProductionProgress
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq_order ASC")
		}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateWithStages inserts the record and its stage rows in one
// transaction. The unique order_id index turns the concurrent-initialize
// race into ErrDuplicateProgress for the losing writer.
func (r *ProgressRepository) CreateWithStages(ctx context.Context, p *entity.ProductionProgress) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stages := p.Stages
		p.Stages = nil
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		p.Stages = stages
		for i := range p.Stages {
			p.Stages[i].ProgressID = p.ID
		}
		if len(p.Stages) > 0 {
			if err := tx.Create(&p.Stages).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrDuplicateProgress
	}
	return err
}

// FindStage loads one stage row of a progress record.
func (r *ProgressRepository) FindStage(ctx context.Context, progressID, stageID string) (*entity.StageProgress, error) {
	var sp entity.StageProgress
	err := r.db.WithContext(ctx).
		Where("progress_id = ? AND stage_id = ?", progressID, stageID).
		First(&sp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// UpdateStage saves a single stage row.
func (r *ProgressRepository) UpdateStage(ctx context.Context, sp *entity.StageProgress) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

// CountActiveStages counts active rows of a record, optionally excluding
// one stage. Runs inside the caller's transaction when tx is non-nil.
func (r *ProgressRepository) CountActiveStages(ctx context.Context, tx *gorm.DB, progressID, excludeStageID string) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var count int64
	query := db.WithContext(ctx).
		Model(&entity.StageProgress{}).
		Where("progress_id = ? AND status = ?", progressID, entity.StageStatusActive)
	if excludeStageID != "" {
		query = query.Where("stage_id <> ?", excludeStageID)
	}
	err := query.Count(&count).Error
	return count, err
}

// Transaction exposes the underlying transactional scope to the service
// layer, which serializes callers per progress id.
func (r *ProgressRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// PausedStageRow is a paused stage joined with its order, as the stalled
// check consumes it.
type PausedStageRow struct {
	OrderID   string     `json:"order_id"`
	OrderCode string     `json:"order_code"`
	StageID   string     `json:"stage_id"`
	StageName string     `json:"stage_name"`
	StartedAt *time.Time `json:"started_at"`
}

// ListPausedStages returns paused stage rows belonging to in_production
// orders of the owner.
func (r *ProgressRepository) ListPausedStages(ctx context.Context, ownerID string) ([]PausedStageRow, error) {
	var rows []PausedStageRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT o.id AS order_id, o.code AS order_code,
		       sp.stage_id, sp.stage_name, sp.started_at
		FROM stage_progress sp
		JOIN production_progress pp ON pp.id = sp.progress_id
		JOIN production_orders o ON o.id = pp.order_id
		WHERE pp.owner_id = ? AND o.status = ? AND sp.status = ?
	`, ownerID, entity.OrderStatusInProduction, entity.StageStatusPaused).
		Scan(&rows).Error
	return rows, err
}
