package service

import (
	"testing"

	"github.com/confecta/confecta/internal/production/entity"
)

func threeStageProgress(statuses [3]string) *entity.ProductionProgress {
	return &entity.ProductionProgress{
		ID:      "prog-1",
		OrderID: "order-1",
		Stages: []entity.StageProgress{
			{StageID: "s1", StageName: "Corte", SeqOrder: 1, Status: statuses[0]},
			{StageID: "s2", StageName: "Costura", SeqOrder: 2, Status: statuses[1]},
			{StageID: "s3", StageName: "Acabamento", SeqOrder: 3, Status: statuses[2]},
		},
	}
}

func TestCurrentStage(t *testing.T) {
	p := threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusActive, entity.StageStatusPaused})
	if got := CurrentStage(p); got == nil || got.StageID != "s2" {
		t.Fatalf("CurrentStage = %+v, want s2", got)
	}

	p = threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusPaused, entity.StageStatusPaused})
	if got := CurrentStage(p); got != nil {
		t.Fatalf("CurrentStage with no active stage = %+v, want nil", got)
	}
}

func TestNextStage(t *testing.T) {
	p := threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusActive, entity.StageStatusPaused})
	if got := NextStage(p); got == nil || got.StageID != "s3" {
		t.Fatalf("NextStage = %+v, want s3", got)
	}

	// Nothing active and nothing finished: progress has not started.
	p = threeStageProgress([3]string{entity.StageStatusPaused, entity.StageStatusPaused, entity.StageStatusPaused})
	if got := NextStage(p); got != nil {
		t.Fatalf("NextStage on untouched progress = %+v, want nil", got)
	}

	// Last stage active: nothing follows.
	p = threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusFinished, entity.StageStatusActive})
	if got := NextStage(p); got != nil {
		t.Fatalf("NextStage after last stage = %+v, want nil", got)
	}
}

func TestNextStageBetweenFinalizeAndResume(t *testing.T) {
	// Corte just finalized, Costura not resumed yet: the next stage to
	// work is Costura even though nothing is active.
	p := threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusPaused, entity.StageStatusPaused})
	if got := NextStage(p); got == nil || got.StageID != "s2" {
		t.Fatalf("NextStage after finalize = %+v, want s2", got)
	}

	// Same with two stages finished.
	p = threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusFinished, entity.StageStatusPaused})
	if got := NextStage(p); got == nil || got.StageID != "s3" {
		t.Fatalf("NextStage after second finalize = %+v, want s3", got)
	}

	// Everything finished: done.
	p = threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusFinished, entity.StageStatusFinished})
	if got := NextStage(p); got != nil {
		t.Fatalf("NextStage on finished progress = %+v, want nil", got)
	}
}

func TestNextStageSkipsFinished(t *testing.T) {
	p := &entity.ProductionProgress{
		Stages: []entity.StageProgress{
			{StageID: "s1", SeqOrder: 1, Status: entity.StageStatusActive},
			{StageID: "s2", SeqOrder: 2, Status: entity.StageStatusFinished},
			{StageID: "s3", SeqOrder: 3, Status: entity.StageStatusPaused},
		},
	}
	if got := NextStage(p); got == nil || got.StageID != "s3" {
		t.Fatalf("NextStage should skip the finished s2, got %+v", got)
	}
}

func TestIsPaused(t *testing.T) {
	cases := []struct {
		name     string
		statuses [3]string
		want     bool
	}{
		{"active present", [3]string{entity.StageStatusFinished, entity.StageStatusActive, entity.StageStatusPaused}, false},
		{"all paused", [3]string{entity.StageStatusPaused, entity.StageStatusPaused, entity.StageStatusPaused}, true},
		{"paused remainder", [3]string{entity.StageStatusFinished, entity.StageStatusPaused, entity.StageStatusPaused}, true},
		{"all finished", [3]string{entity.StageStatusFinished, entity.StageStatusFinished, entity.StageStatusFinished}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsPaused(threeStageProgress(c.statuses)); got != c.want {
				t.Errorf("IsPaused = %v, want %v", got, c.want)
			}
		})
	}
}

func TestAllFinished(t *testing.T) {
	p := threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusFinished, entity.StageStatusFinished})
	if !AllFinished(p) {
		t.Error("AllFinished should be true when every stage finished")
	}
	p = threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusActive, entity.StageStatusPaused})
	if AllFinished(p) {
		t.Error("AllFinished should be false with unfinished stages")
	}
	if AllFinished(&entity.ProductionProgress{}) {
		t.Error("AllFinished on zero stages should be false")
	}
}

func TestPercentComplete(t *testing.T) {
	p := threeStageProgress([3]string{entity.StageStatusFinished, entity.StageStatusActive, entity.StageStatusPaused})
	p.Stages[1].CompletedQty = 33

	if got := PercentComplete(p, 100); got != 33 {
		t.Errorf("PercentComplete = %d, want 33", got)
	}
	// Rounds half up.
	p.Stages[1].CompletedQty = 1
	if got := PercentComplete(p, 3); got != 33 {
		t.Errorf("PercentComplete(1/3) = %d, want 33", got)
	}
	p.Stages[1].CompletedQty = 2
	if got := PercentComplete(p, 3); got != 67 {
		t.Errorf("PercentComplete(2/3) = %d, want 67", got)
	}
	// No active stage or zero total: zero.
	if got := PercentComplete(p, 0); got != 0 {
		t.Errorf("PercentComplete with zero total = %d, want 0", got)
	}
	idle := threeStageProgress([3]string{entity.StageStatusPaused, entity.StageStatusPaused, entity.StageStatusPaused})
	if got := PercentComplete(idle, 100); got != 0 {
		t.Errorf("PercentComplete without active stage = %d, want 0", got)
	}
}
