package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB maps a postgres jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// GradeEntry is one color row of an order's grade: requested quantity per
// size label.
type GradeEntry struct {
	ColorID          string         `json:"color_id"`
	ColorName        string         `json:"color_name"`
	QuantitiesBySize map[string]int `json:"quantities_by_size"`
}

// Grade is the size/color quantity matrix snapshotted at order creation.
// It is never recomputed from progress.
type Grade []GradeEntry

func (g Grade) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	return json.Marshal(g)
}

func (g *Grade) Scan(value interface{}) error {
	if value == nil {
		*g = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan Grade: %v", value)
	}
	return json.Unmarshal(bytes, g)
}

// TotalPieces sums every size of every color.
func (g Grade) TotalPieces() int {
	total := 0
	for _, entry := range g {
		for _, qty := range entry.QuantitiesBySize {
			total += qty
		}
	}
	return total
}
