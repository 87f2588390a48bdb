package service

import (
	"math"

	"github.com/confecta/confecta/internal/production/entity"
)

// Derived views over a progress record. Nothing here is persisted; the
// stage rows are the single source of truth and these recompute on every
// read.

// CurrentStage returns the active stage, or nil when every stage is
// paused or finished.
func CurrentStage(p *entity.ProductionProgress) *entity.StageProgress {
	for i := range p.Stages {
		if p.Stages[i].Status == entity.StageStatusActive {
			return &p.Stages[i]
		}
	}
	return nil
}

// NextStage returns the first unfinished stage past the furthest
// progressed one, in sequence order. The reference point is the active
// stage or, when nothing is active (the window between finalizing one
// stage and resuming the next), the highest finished stage. Nil when no
// stage has been started yet or nothing unfinished follows.
func NextStage(p *entity.ProductionProgress) *entity.StageProgress {
	ref := -1
	if current := CurrentStage(p); current != nil {
		ref = current.SeqOrder
	}
	for i := range p.Stages {
		sp := &p.Stages[i]
		if sp.Status == entity.StageStatusFinished && sp.SeqOrder > ref {
			ref = sp.SeqOrder
		}
	}
	if ref < 0 {
		return nil
	}
	for i := range p.Stages {
		sp := &p.Stages[i]
		if sp.SeqOrder > ref && sp.Status != entity.StageStatusFinished {
			return sp
		}
	}
	return nil
}

// PausedStage returns the first paused stage in sequence order, or nil.
func PausedStage(p *entity.ProductionProgress) *entity.StageProgress {
	for i := range p.Stages {
		if p.Stages[i].Status == entity.StageStatusPaused {
			return &p.Stages[i]
		}
	}
	return nil
}

// IsPaused reports whether no stage is active and at least one stage is
// unfinished. A record with every stage finished is complete, not paused.
func IsPaused(p *entity.ProductionProgress) bool {
	unfinished := false
	for i := range p.Stages {
		switch p.Stages[i].Status {
		case entity.StageStatusActive:
			return false
		case entity.StageStatusPaused:
			unfinished = true
		}
	}
	return unfinished
}

// PercentComplete is the active stage's completed quantity over the order
// total, as a whole percentage. Zero when nothing is active or the order
// total is zero.
func PercentComplete(p *entity.ProductionProgress, orderTotal int) int {
	if orderTotal <= 0 {
		return 0
	}
	current := CurrentStage(p)
	if current == nil {
		return 0
	}
	return int(math.Round(float64(current.CompletedQty) / float64(orderTotal) * 100))
}

// AllFinished reports whether every stage row is finished.
func AllFinished(p *entity.ProductionProgress) bool {
	if len(p.Stages) == 0 {
		return false
	}
	for i := range p.Stages {
		if p.Stages[i].Status != entity.StageStatusFinished {
			return false
		}
	}
	return true
}
