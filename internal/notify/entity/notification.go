package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Notification types, one per monitor rule plus the completion hook.
const (
	TypeDeadlineNear   = "deadline_near"
	TypePaymentDue     = "payment_due"
	TypeStageStalled   = "stage_stalled"
	TypeOrderCompleted = "order_completed"
)

// Metadata is a small JSONB bag keyed by rule-specific discriminators
// (order_code, pendency_id, stage_name). De-duplication matches on it.
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("metadata: unsupported scan type")
		}
	}
	return json.Unmarshal(bytes, m)
}

// Notification is append-only except for the read flag.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	OwnerID   string    `gorm:"size:32;not null;index" json:"owner_id"`
	Type      string    `gorm:"size:32;not null;index" json:"type"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Link      string    `gorm:"size:255" json:"link"`
	Metadata  Metadata  `gorm:"type:jsonb" json:"metadata,omitempty"`
	Read      bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
