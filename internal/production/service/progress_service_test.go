package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/production/entity"
	"github.com/confecta/confecta/internal/production/repository"
	"github.com/confecta/confecta/internal/shared/apperr"
	"github.com/confecta/confecta/internal/shared/clock"
	"github.com/confecta/confecta/internal/testutil"
)

const testOwner = "test-owner-001"

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type recorderStub struct {
	calls []StageCompletion
}

func (r *recorderStub) RecordStageCompletion(_ context.Context, _ string, c StageCompletion) error {
	r.calls = append(r.calls, c)
	return nil
}

func setupProgressTest(t *testing.T) (*gorm.DB, *ProgressService, *recorderStub) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewProgressService(repos.Progress, repos.Order, repos.Stage, repos.ActivityLog,
		clock.Fixed{T: fixedNow}, zap.NewNop())
	rec := &recorderStub{}
	svc.SetPendencyRecorder(rec)
	return db, svc, rec
}

func seedCatalog(t *testing.T, db *gorm.DB) []entity.StageDefinition {
	t.Helper()
	stages := []entity.StageDefinition{
		{ID: "stage-corte", Name: "Corte", SeqOrder: 1, OwnerID: testOwner},
		{ID: "stage-costura", Name: "Costura", SeqOrder: 2, OwnerID: testOwner},
		{ID: "stage-acabamento", Name: "Acabamento", SeqOrder: 3, OwnerID: testOwner},
	}
	for i := range stages {
		if err := db.Create(&stages[i]).Error; err != nil {
			t.Fatalf("Failed to seed stage: %v", err)
		}
	}
	return stages
}

func seedOrder(t *testing.T, db *gorm.DB, withFaction bool) *entity.ProductionOrder {
	t.Helper()

	product := &entity.Product{ID: "prod-001", Code: "PRD-202603-0001", Description: "Camiseta básica", OwnerID: testOwner}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}

	order := &entity.ProductionOrder{
		ID:        "order-001",
		Code:      "OP-202603-0001",
		ProductID: product.ID,
		Status:    entity.OrderStatusInProduction,
		Grade: entity.Grade{
			{ColorID: "c1", ColorName: "Azul", QuantitiesBySize: map[string]int{"P": 30, "M": 40, "G": 30}},
		},
		OwnerID: testOwner,
	}
	if withFaction {
		faction := &entity.Faction{
			ID:      "fac-001",
			Name:    "Facção Central",
			Status:  "active",
			OwnerID: testOwner,
			StageCosts: entity.JSONB{
				"stage-costura": 2.5,
			},
		}
		if err := db.Create(faction).Error; err != nil {
			t.Fatalf("Failed to seed faction: %v", err)
		}
		order.FactionID = faction.ID
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}

func TestInitializeSeedsFromCatalog(t *testing.T) {
	db, svc, _ := setupProgressTest(t)
	seedCatalog(t, db)
	order := seedOrder(t, db, false)

	progress, err := svc.Initialize(context.Background(), testOwner, order.ID)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if len(progress.Stages) != 3 {
		t.Fatalf("expected 3 stage rows, got %d", len(progress.Stages))
	}

	first := progress.Stages[0]
	if first.StageID != "stage-corte" || first.Status != entity.StageStatusActive {
		t.Errorf("first stage should be active Corte, got %s/%s", first.StageID, first.Status)
	}
	if first.StartedAt == nil || !first.StartedAt.Equal(fixedNow) {
		t.Errorf("first stage started_at should be stamped, got %v", first.StartedAt)
	}
	for _, sp := range progress.Stages[1:] {
		if sp.Status != entity.StageStatusPaused {
			t.Errorf("stage %s should start paused, got %s", sp.StageID, sp.Status)
		}
		if sp.CompletedQty != 0 || sp.DefectiveQty != 0 {
			t.Errorf("stage %s quantities should start at zero", sp.StageID)
		}
	}

	// Second call returns the same record, not a new one.
	again, err := svc.Initialize(context.Background(), testOwner, order.ID)
	if err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}
	if again.ID != progress.ID {
		t.Errorf("Initialize should be idempotent: %s != %s", again.ID, progress.ID)
	}
}

func TestInitializeRequiresCatalog(t *testing.T) {
	db, svc, _ := setupProgressTest(t)
	order := seedOrder(t, db, false)

	_, err := svc.Initialize(context.Background(), testOwner, order.ID)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error with empty catalog, got %v", err)
	}
}

func TestFinalizeStage(t *testing.T) {
	db, svc, rec := setupProgressTest(t)
	seedCatalog(t, db)
	order := seedOrder(t, db, true)

	progress, err := svc.Initialize(context.Background(), testOwner, order.ID)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	sp, err := svc.FinalizeStage(context.Background(), testOwner, progress.ID, "stage-corte",
		&FinalizeStageRequest{CompletedQty: 95, DefectiveQty: 5})
	if err != nil {
		t.Fatalf("FinalizeStage failed: %v", err)
	}
	if sp.Status != entity.StageStatusFinished {
		t.Errorf("stage should be finished, got %s", sp.Status)
	}
	if sp.FinishedAt == nil {
		t.Error("finished_at should be stamped")
	}
	if sp.CompletedQty != 95 || sp.DefectiveQty != 5 {
		t.Errorf("quantities not recorded: %d/%d", sp.CompletedQty, sp.DefectiveQty)
	}

	// Finalizing never advances the next stage by itself.
	reloaded, err := svc.GetByOrder(context.Background(), testOwner, order.ID)
	if err != nil {
		t.Fatalf("GetByOrder failed: %v", err)
	}
	if cur := CurrentStage(reloaded); cur != nil {
		t.Errorf("no stage should be active after finalize, got %s", cur.StageID)
	}

	// Corte has no registered cost for this facção: no pendency.
	if len(rec.calls) != 0 {
		t.Errorf("no pendency expected for costless stage, got %+v", rec.calls)
	}
}

func TestFinalizeStageRecordsPendency(t *testing.T) {
	db, svc, rec := setupProgressTest(t)
	seedCatalog(t, db)
	order := seedOrder(t, db, true)

	progress, _ := svc.Initialize(context.Background(), testOwner, order.ID)

	if _, err := svc.ResumeStage(context.Background(), testOwner, progress.ID, "stage-costura"); err == nil {
		t.Fatal("resume should fail while Corte is active")
	}
	if _, err := svc.PauseStage(context.Background(), testOwner, progress.ID, "stage-corte"); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if _, err := svc.ResumeStage(context.Background(), testOwner, progress.ID, "stage-costura"); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	if _, err := svc.FinalizeStage(context.Background(), testOwner, progress.ID, "stage-costura",
		&FinalizeStageRequest{CompletedQty: 80, DefectiveQty: 0}); err != nil {
		t.Fatalf("FinalizeStage failed: %v", err)
	}

	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 pendency recording, got %d", len(rec.calls))
	}
	call := rec.calls[0]
	if call.CompletedQty != 80 || call.PerPieceCost != 2.5 {
		t.Errorf("unexpected completion: %+v", call)
	}
	if call.OrderCode != order.Code || call.StageID != "stage-costura" {
		t.Errorf("unexpected completion identity: %+v", call)
	}
}

func TestFinalizeStageRejectsOverGrade(t *testing.T) {
	db, svc, _ := setupProgressTest(t)
	seedCatalog(t, db)
	order := seedOrder(t, db, false) // grade total: 100

	progress, _ := svc.Initialize(context.Background(), testOwner, order.ID)

	_, err := svc.FinalizeStage(context.Background(), testOwner, progress.ID, "stage-corte",
		&FinalizeStageRequest{CompletedQty: 95, DefectiveQty: 10})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for 105/100 pieces, got %v", err)
	}

	// The stage must be untouched.
	reloaded, _ := svc.GetByOrder(context.Background(), testOwner, order.ID)
	if reloaded.Stages[0].Status != entity.StageStatusActive {
		t.Errorf("rejected finalize must leave the stage active, got %s", reloaded.Stages[0].Status)
	}
}

func TestFinalizedStageIsTerminal(t *testing.T) {
	db, svc, _ := setupProgressTest(t)
	seedCatalog(t, db)
	order := seedOrder(t, db, false)

	progress, _ := svc.Initialize(context.Background(), testOwner, order.ID)
	if _, err := svc.FinalizeStage(context.Background(), testOwner, progress.ID, "stage-corte",
		&FinalizeStageRequest{CompletedQty: 100}); err != nil {
		t.Fatalf("FinalizeStage failed: %v", err)
	}

	if _, err := svc.FinalizeStage(context.Background(), testOwner, progress.ID, "stage-corte",
		&FinalizeStageRequest{CompletedQty: 50}); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("re-finalizing should be an invalid transition, got %v", err)
	}
	if _, err := svc.ResumeStage(context.Background(), testOwner, progress.ID, "stage-corte"); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("resuming a finished stage should be an invalid transition, got %v", err)
	}
	if _, err := svc.PauseStage(context.Background(), testOwner, progress.ID, "stage-corte"); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("pausing a finished stage should be an invalid transition, got %v", err)
	}
}

func TestResumeEnforcesSingleActiveStage(t *testing.T) {
	db, svc, _ := setupProgressTest(t)
	seedCatalog(t, db)
	order := seedOrder(t, db, false)

	progress, _ := svc.Initialize(context.Background(), testOwner, order.ID)

	// Corte is active; activating Costura must fail.
	_, err := svc.ResumeStage(context.Background(), testOwner, progress.ID, "stage-costura")
	if !errors.Is(err, apperr.ErrConflictingActiveStage) {
		t.Fatalf("expected ErrConflictingActiveStage, got %v", err)
	}

	if _, err := svc.PauseStage(context.Background(), testOwner, progress.ID, "stage-corte"); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	resumed, err := svc.ResumeStage(context.Background(), testOwner, progress.ID, "stage-costura")
	if err != nil {
		t.Fatalf("resume after pause failed: %v", err)
	}
	if resumed.StartedAt == nil {
		t.Error("first activation should stamp started_at")
	}
}

func TestPauseOnlyFromActive(t *testing.T) {
	db, svc, _ := setupProgressTest(t)
	seedCatalog(t, db)
	order := seedOrder(t, db, false)

	progress, _ := svc.Initialize(context.Background(), testOwner, order.ID)

	// Costura starts paused.
	if _, err := svc.PauseStage(context.Background(), testOwner, progress.ID, "stage-costura"); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("pausing a paused stage should be an invalid transition, got %v", err)
	}
}
