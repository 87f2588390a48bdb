package entity

import "time"

// Production order (OP) status values.
const (
	OrderStatusPlanned      = "planned"
	OrderStatusInProduction = "in_production"
	OrderStatusCompleted    = "completed"
)

// ValidOrderTransitions is the closed transition table for order status.
var ValidOrderTransitions = map[string][]string{
	OrderStatusPlanned:      {OrderStatusInProduction},
	OrderStatusInProduction: {OrderStatusCompleted},
}

// ProductionOrder is the unit of manufacturing work tracked end-to-end.
// Code is generated at creation and is the external identifier used by
// pendencies and notifications. Grade is a fixed snapshot of requested
// quantities per color/size.
type ProductionOrder struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Code         string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	ProductID    string     `json:"product_id" gorm:"size:32;not null;index"`
	FactionID    string     `json:"faction_id" gorm:"size:32;index"`
	Priority     string     `json:"priority" gorm:"size:20;default:normal"` // low/normal/high/urgent
	Status       string     `json:"status" gorm:"size:20;default:planned;index"`
	Grade        Grade      `json:"grade" gorm:"type:jsonb"`
	StartDate    *time.Time `json:"start_date"`
	ExpectedDate *time.Time `json:"expected_date"`
	Notes        string     `json:"notes" gorm:"type:text"`
	OwnerID      string     `json:"owner_id" gorm:"size:32;not null;index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Faction *Faction `json:"faction,omitempty" gorm:"foreignKey:FactionID"`
}

func (ProductionOrder) TableName() string {
	return "production_orders"
}

// TotalPieces is the grade total used by quantity validation and percent
// complete.
func (o *ProductionOrder) TotalPieces() int {
	return o.Grade.TotalPieces()
}
