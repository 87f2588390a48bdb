package repository

import (
	"gorm.io/gorm"

	"github.com/confecta/confecta/internal/shared/apperr"
)

// ErrNotFound mirrors gorm.ErrRecordNotFound at this layer.
var ErrNotFound = apperr.ErrNotFound

// Repositories holds the finance module's data access objects.
type Repositories struct {
	Pendency *PendencyRepository
	Payment  *PaymentRepository
	Settings *SettingsRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Pendency: NewPendencyRepository(db),
		Payment:  NewPaymentRepository(db),
		Settings: NewSettingsRepository(db),
	}
}
