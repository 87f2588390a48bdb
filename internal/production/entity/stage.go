package entity

import "time"

// StageDefinition is one named step of the manufacturing sequence (etapa),
// e.g. Corte, Costura, Acabamento. SeqOrder determines sequencing; identity
// is immutable. Deleting a definition does not cascade into in-flight
// progress rows — dangling stage ids are tolerated and rendered as removed.
type StageDefinition struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	SeqOrder    int       `json:"seq_order" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	OwnerID     string    `json:"owner_id" gorm:"size:32;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (StageDefinition) TableName() string {
	return "stage_definitions"
}
