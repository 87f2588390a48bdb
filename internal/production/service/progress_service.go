package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/repository"
	"github.com/confecta/confecta/internal/shared/apperr"
	"github.com/confecta/confecta/internal/shared/clock"
)

// StageCompletion carries everything the financial ledger needs to record
// money owed for a finished stage.
type StageCompletion struct {
	OrderID            string
	OrderCode          string
	ProductID          string
	ProductDescription string
	StageID            string
	StageName          string
	FactionID          string
	FactionName        string
	CompletedQty       int
	PerPieceCost       float64
}

// PendencyRecorder is the sole bridge from production events to money
// owed. The finance module implements it; injection happens in main.
type PendencyRecorder interface {
	RecordStageCompletion(ctx context.Context, ownerID string, completion StageCompletion) error
}

// ProgressService owns the per-order stage state machine. Mutations are
// serialized per progress id and run inside a transaction, so two sessions
// hammering the same order cannot clobber each other's writes.
type ProgressService struct {
	repo         *repository.ProgressRepository
	orderRepo    *repository.OrderRepository
	stageRepo    *repository.StageRepository
	activityRepo *repository.ActivityLogRepository
	clk          clock.Clock
	logger       *zap.Logger
	locks        *keyedMutex
	recorder     PendencyRecorder
}

func NewProgressService(repo *repository.ProgressRepository, orderRepo *repository.OrderRepository, stageRepo *repository.StageRepository, activityRepo *repository.ActivityLogRepository, clk clock.Clock, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		repo:         repo,
		orderRepo:    orderRepo,
		stageRepo:    stageRepo,
		activityRepo: activityRepo,
		clk:          clk,
		logger:       logger,
		locks:        newKeyedMutex(),
	}
}

// SetPendencyRecorder injects the finance bridge.
func (s *ProgressService) SetPendencyRecorder(r PendencyRecorder) {
	s.recorder = r
}

// FinalizeStageRequest records a stage's outcome.
type FinalizeStageRequest struct {
	CompletedQty int `json:"completed_qty" binding:"min=0"`
	DefectiveQty int `json:"defective_qty" binding:"min=0"`
}

// Initialize lazily creates the order's progress record, seeded from the
// stage catalog sorted by sequence: first stage active, the rest paused,
// all quantities zero. When a record already exists (including the losing
// side of a concurrent initialization) the existing one is returned.
func (s *ProgressService) Initialize(ctx context.Context, ownerID, orderID string) (*entity.ProductionProgress, error) {
	existing, err := s.repo.FindByOrderID(ctx, ownerID, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if _, err := s.orderRepo.FindByID(ctx, ownerID, orderID); err != nil {
		return nil, err
	}

	catalog, err := s.stageRepo.ListOrdered(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, apperr.Validationf("no production stages defined")
	}

	now := s.clk.Now()
	progress := &entity.ProductionProgress{
		ID:      uuid.New().String()[:32],
		OrderID: orderID,
		OwnerID: ownerID,
	}
	for i, def := range catalog {
		sp := entity.StageProgress{
			ID:        uuid.New().String()[:32],
			StageID:   def.ID,
			StageName: def.Name,
			SeqOrder:  def.SeqOrder,
			Status:    entity.StageStatusPaused,
		}
		if i == 0 {
			sp.Status = entity.StageStatusActive
			sp.StartedAt = &now
		}
		progress.Stages = append(progress.Stages, sp)
	}

	if err := s.repo.CreateWithStages(ctx, progress); err != nil {
		if errors.Is(err, apperr.ErrDuplicateProgress) {
			// Lost the initialization race; the winner's record is the record.
			return s.repo.FindByOrderID(ctx, ownerID, orderID)
		}
		return nil, err
	}

	return s.repo.FindByOrderID(ctx, ownerID, orderID)
}

// GetByOrder returns the order's progress record.
func (s *ProgressService) GetByOrder(ctx context.Context, ownerID, orderID string) (*entity.ProductionProgress, error) {
	return s.repo.FindByOrderID(ctx, ownerID, orderID)
}

// FinalizeStage marks the stage finished, stamps finished_at and
// overwrites its quantities. It never touches any other stage — advancing
// to the next stage is a separate ResumeStage call. Completed plus
// defective must fit inside the order's grade total.
func (s *ProgressService) FinalizeStage(ctx context.Context, ownerID, progressID, stageID string, req *FinalizeStageRequest) (*entity.StageProgress, error) {
	unlock := s.locks.Lock(progressID)
	defer unlock()

	progress, err := s.repo.FindByID(ctx, ownerID, progressID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, ownerID, progress.OrderID)
	if err != nil {
		return nil, err
	}

	total := order.TotalPieces()
	if req.CompletedQty+req.DefectiveQty > total {
		return nil, apperr.Validationf("completed (%d) + defective (%d) exceeds order total of %d pieces",
			req.CompletedQty, req.DefectiveQty, total)
	}

	var finished *entity.StageProgress
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		var sp entity.StageProgress
		if err := tx.Where("progress_id = ? AND stage_id = ?", progressID, stageID).First(&sp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if !entity.StageTransitionAllowed(sp.Status, entity.StageStatusFinished) {
			return apperr.Transitionf(sp.Status, entity.StageStatusFinished)
		}

		now := s.clk.Now()
		sp.Status = entity.StageStatusFinished
		sp.CompletedQty = req.CompletedQty
		sp.DefectiveQty = req.DefectiveQty
		sp.FinishedAt = &now
		if sp.StartedAt == nil {
			sp.StartedAt = &now
		}
		if err := tx.Save(&sp).Error; err != nil {
			return err
		}
		finished = &sp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, ownerID, "progress", progressID, order.Code, "finalize_stage",
		entity.StageStatusActive, entity.StageStatusFinished,
		fmt.Sprintf("Stage %s finalized: %d completed, %d defective", finished.StageName, finished.CompletedQty, finished.DefectiveQty),
		ownerID)

	s.recordPendency(ctx, ownerID, order, finished)

	return finished, nil
}

// recordPendency upserts the financial pendency for a finalized stage when
// the order has a facção with a registered per-piece cost. Failures are
// logged, not surfaced: production progress must not roll back because the
// ledger write failed.
func (s *ProgressService) recordPendency(ctx context.Context, ownerID string, order *entity.ProductionOrder, sp *entity.StageProgress) {
	if s.recorder == nil || order.Faction == nil || sp.CompletedQty <= 0 {
		return
	}
	cost, ok := order.Faction.StageCost(sp.StageID)
	if !ok || cost <= 0 {
		return
	}

	completion := StageCompletion{
		OrderID:      order.ID,
		OrderCode:    order.Code,
		ProductID:    order.ProductID,
		StageID:      sp.StageID,
		StageName:    sp.StageName,
		FactionID:    order.Faction.ID,
		FactionName:  order.Faction.Name,
		CompletedQty: sp.CompletedQty,
		PerPieceCost: cost,
	}
	if order.Product != nil {
		completion.ProductDescription = order.Product.Description
	}

	if err := s.recorder.RecordStageCompletion(ctx, ownerID, completion); err != nil {
		s.logger.Error("Failed to record pendency for finalized stage",
			zap.String("order_code", order.Code),
			zap.String("stage", sp.StageName),
			zap.Error(err))
	}
}

// PauseStage moves an active stage to paused. Pausing anything else is an
// invalid transition.
func (s *ProgressService) PauseStage(ctx context.Context, ownerID, progressID, stageID string) (*entity.StageProgress, error) {
	unlock := s.locks.Lock(progressID)
	defer unlock()

	if _, err := s.repo.FindByID(ctx, ownerID, progressID); err != nil {
		return nil, err
	}

	var paused *entity.StageProgress
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		var sp entity.StageProgress
		if err := tx.Where("progress_id = ? AND stage_id = ?", progressID, stageID).First(&sp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if sp.Status != entity.StageStatusActive {
			return apperr.Transitionf(sp.Status, entity.StageStatusPaused)
		}
		sp.Status = entity.StageStatusPaused
		if err := tx.Save(&sp).Error; err != nil {
			return err
		}
		paused = &sp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, ownerID, "progress", progressID, "", "pause_stage",
		entity.StageStatusActive, entity.StageStatusPaused,
		fmt.Sprintf("Stage %s paused", paused.StageName), ownerID)

	return paused, nil
}

// ResumeStage moves a paused stage to active. It backs both resuming a
// manually paused stage and starting the stage after a finished one. At
// most one stage may be active per record; violating that fails with
// ErrConflictingActiveStage.
func (s *ProgressService) ResumeStage(ctx context.Context, ownerID, progressID, stageID string) (*entity.StageProgress, error) {
	unlock := s.locks.Lock(progressID)
	defer unlock()

	if _, err := s.repo.FindByID(ctx, ownerID, progressID); err != nil {
		return nil, err
	}

	var resumed *entity.StageProgress
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		var sp entity.StageProgress
		if err := tx.Where("progress_id = ? AND stage_id = ?", progressID, stageID).First(&sp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if sp.Status != entity.StageStatusPaused {
			return apperr.Transitionf(sp.Status, entity.StageStatusActive)
		}

		active, err := s.repo.CountActiveStages(ctx, tx, progressID, stageID)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperr.ErrConflictingActiveStage
		}

		sp.Status = entity.StageStatusActive
		if sp.StartedAt == nil {
			now := s.clk.Now()
			sp.StartedAt = &now
		}
		if err := tx.Save(&sp).Error; err != nil {
			return err
		}
		resumed = &sp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activityRepo.LogActivity(ctx, ownerID, "progress", progressID, "", "resume_stage",
		entity.StageStatusPaused, entity.StageStatusActive,
		fmt.Sprintf("Stage %s activated", resumed.StageName), ownerID)

	return resumed, nil
}
