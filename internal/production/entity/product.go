package entity

import "time"

// Product is a registered article of clothing.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Code        string    `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"size:200;not null"`
	Reference   string    `json:"reference" gorm:"size:100"`
	ImageURL    string    `json:"image_url" gorm:"size:500"`
	OwnerID     string    `json:"owner_id" gorm:"size:32;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Faction is an outsourced production partner (facção) performing one
// stage of manufacturing for a per-piece cost.
type Faction struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	Name    string `json:"name" gorm:"size:200;not null"`
	Contact string `json:"contact" gorm:"size:100"`
	Phone   string `json:"phone" gorm:"size:30"`
	City    string `json:"city" gorm:"size:100"`
	Status  string `json:"status" gorm:"size:20;default:active"` // active/inactive
	// Per-piece cost by stage id; feeds pendency creation on finalize.
	StageCosts JSONB     `json:"stage_costs" gorm:"type:jsonb"`
	Notes      string    `json:"notes" gorm:"type:text"`
	OwnerID    string    `json:"owner_id" gorm:"size:32;not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Faction) TableName() string {
	return "factions"
}

// StageCost returns the facção's per-piece cost for a stage, false when no
// cost is registered.
func (f *Faction) StageCost(stageID string) (float64, bool) {
	if f.StageCosts == nil {
		return 0, false
	}
	raw, ok := f.StageCosts[stageID]
	if !ok {
		return 0, false
	}
	cost, ok := raw.(float64)
	return cost, ok
}
