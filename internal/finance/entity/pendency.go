package entity

import (
	"time"
)

// Derived pendency statuses. Only pending is stored; overdue is computed
// at read time from the due date, and paid rows live in the payments
// table.
const (
	PendencyStatusPending = "pending"
	PendencyStatusOverdue = "overdue"
	PendencyStatusPaid    = "paid"
)

// FinancialPendency is money owed to a facção for a finalized stage.
// Exactly one row may exist per (order, stage); re-finalizing a stage
// updates the row in place.
type FinancialPendency struct {
	ID                 string    `gorm:"primaryKey;size:32" json:"id"`
	OrderID            string    `gorm:"size:32;not null;uniqueIndex:idx_pendency_order_stage" json:"order_id"`
	StageID            string    `gorm:"size:32;not null;uniqueIndex:idx_pendency_order_stage" json:"stage_id"`
	OrderCode          string    `gorm:"size:32" json:"order_code"`
	StageName          string    `gorm:"size:100" json:"stage_name"`
	FactionID          string    `gorm:"size:32;index" json:"faction_id"`
	FactionName        string    `gorm:"size:100" json:"faction_name"`
	ProductID          string    `gorm:"size:32" json:"product_id"`
	ProductDescription string    `gorm:"size:255" json:"product_description"`
	CompletedQty       int       `gorm:"not null" json:"completed_qty"`
	PerPieceCost       float64   `gorm:"type:decimal(12,2);not null" json:"per_piece_cost"`
	Amount             float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate            time.Time `gorm:"not null;index" json:"due_date"`
	OwnerID            string    `gorm:"size:32;not null;index" json:"owner_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Computed on read, never persisted.
	Status string `gorm:"-" json:"status"`
}

func (FinancialPendency) TableName() string {
	return "financial_pendencies"
}

// DeriveStatus computes the pendency's status for a given moment. A
// pendency is overdue once today is strictly past its due date, both
// truncated to the day in the same zone.
func (p *FinancialPendency) DeriveStatus(now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(p.DueDate.Year(), p.DueDate.Month(), p.DueDate.Day(), 0, 0, 0, 0, now.Location())
	if today.After(due) {
		return PendencyStatusOverdue
	}
	return PendencyStatusPending
}

// FinancialPayment is a settled pendency. MarkAsPaid moves the row here
// and deletes the pendency in the same transaction, so the two tables
// stay disjoint.
type FinancialPayment struct {
	ID                 string    `gorm:"primaryKey;size:32" json:"id"`
	PendencyID         string    `gorm:"size:32;index" json:"pendency_id"`
	OrderID            string    `gorm:"size:32;not null;index" json:"order_id"`
	StageID            string    `gorm:"size:32;not null" json:"stage_id"`
	OrderCode          string    `gorm:"size:32" json:"order_code"`
	StageName          string    `gorm:"size:100" json:"stage_name"`
	FactionID          string    `gorm:"size:32;index" json:"faction_id"`
	FactionName        string    `gorm:"size:100" json:"faction_name"`
	ProductDescription string    `gorm:"size:255" json:"product_description"`
	CompletedQty       int       `gorm:"not null" json:"completed_qty"`
	PerPieceCost       float64   `gorm:"type:decimal(12,2);not null" json:"per_piece_cost"`
	Amount             float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAt             time.Time `gorm:"not null;index" json:"paid_at"`
	OwnerID            string    `gorm:"size:32;not null;index" json:"owner_id"`
	CreatedAt          time.Time `json:"created_at"`
}

func (FinancialPayment) TableName() string {
	return "financial_payments"
}

// OwnerSettings holds per-owner tunables, currently just the monthly
// payment target shown on the financial summary.
type OwnerSettings struct {
	OwnerID       string    `gorm:"primaryKey;size:32" json:"owner_id"`
	MonthlyTarget float64   `gorm:"type:decimal(12,2);not null" json:"monthly_target"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (OwnerSettings) TableName() string {
	return "owner_settings"
}
