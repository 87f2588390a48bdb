package repository

import (
	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/shared/apperr"
)

// ErrNotFound aliases the shared sentinel so callers matching on the
// repository package keep working.
var ErrNotFound = apperr.ErrNotFound

// Repositories bundles the production-side repositories.
type Repositories struct {
	Stage       *StageRepository
	Product     *ProductRepository
	Faction     *FactionRepository
	Order       *OrderRepository
	Progress    *ProgressRepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories wires every repository onto one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Stage:       NewStageRepository(db),
		Product:     NewProductRepository(db),
		Faction:     NewFactionRepository(db),
		Order:       NewOrderRepository(db),
		Progress:    NewProgressRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
