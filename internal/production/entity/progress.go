package entity

import "time"

// Stage progress status values.
const (
	StageStatusActive   = "active"
	StageStatusPaused   = "paused"
	StageStatusFinished = "finished"
)

// ValidStageTransitions is the closed transition table for a stage row.
// finished is terminal: nothing ever leaves it.
var ValidStageTransitions = map[string][]string{
	StageStatusPaused: {StageStatusActive, StageStatusFinished},
	StageStatusActive: {StageStatusPaused, StageStatusFinished},
}

// StageTransitionAllowed reports whether from→to appears in the table.
func StageTransitionAllowed(from, to string) bool {
	for _, target := range ValidStageTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// ProductionProgress is the per-order progress record, created lazily the
// first time an order is viewed. order_id is unique: the second concurrent
// initialization loses and reuses the winner's record.
type ProductionProgress struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	OrderID   string    `json:"order_id" gorm:"size:32;uniqueIndex;not null"`
	OwnerID   string    `json:"owner_id" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Stages []StageProgress `json:"stages" gorm:"foreignKey:ProgressID"`
}

func (ProductionProgress) TableName() string {
	return "production_progress"
}

// StageProgress is one stage row of a progress record. StageName and
// SeqOrder are snapshotted from the catalog at initialization so later
// catalog edits or deletions cannot rewrite history.
type StageProgress struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	ProgressID    string     `json:"progress_id" gorm:"size:32;not null;uniqueIndex:idx_progress_stage"`
	StageID       string     `json:"stage_id" gorm:"size:32;not null;uniqueIndex:idx_progress_stage"`
	StageName     string     `json:"stage_name" gorm:"size:100;not null"`
	SeqOrder      int        `json:"seq_order" gorm:"not null"`
	CompletedQty  int        `json:"completed_qty" gorm:"default:0"`
	DefectiveQty  int        `json:"defective_qty" gorm:"default:0"`
	Status        string     `json:"status" gorm:"size:20;default:paused"`
	ResponsibleID string     `json:"responsible_id" gorm:"size:32"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (StageProgress) TableName() string {
	return "stage_progress"
}
