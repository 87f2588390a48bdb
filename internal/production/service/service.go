package service

import (
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/confecta/confecta/internal/production/repository"
	"github.com/confecta/confecta/internal/shared/clock"
	"github.com/confecta/confecta/internal/shared/confirm"
)

// Services bundles the production-side services.
type Services struct {
	Stage    *StageService
	Product  *ProductService
	Faction  *FactionService
	Order    *OrderService
	Progress *ProgressService
}

// NewServices wires the production services. The pendency recorder and
// completion notifier are injected afterwards by main to avoid an import
// cycle between modules.
func NewServices(repos *repository.Repositories, rdb *redis.Client, clk clock.Clock, logger *zap.Logger) *Services {
	confirmStore := confirm.NewStore(rdb)
	progressSvc := NewProgressService(repos.Progress, repos.Order, repos.Stage, repos.ActivityLog, clk, logger)
	return &Services{
		Stage:    NewStageService(repos.Stage),
		Product:  NewProductService(repos.Product),
		Faction:  NewFactionService(repos.Faction),
		Order:    NewOrderService(repos.Order, repos.ActivityLog, confirmStore, clk, logger),
		Progress: progressSvc,
	}
}

// keyedMutex serializes mutations per aggregate id so concurrent
// finalize/pause/resume calls against the same progress record cannot
// interleave their read-modify-write cycles.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
