package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/confecta/confecta/internal/config"
	finrepo "github.com/confecta/confecta/internal/finance/repository"
	"github.com/confecta/confecta/internal/notify/entity"
	"github.com/confecta/confecta/internal/notify/repository"
	prodentity "github.com/confecta/confecta/internal/production/entity"
	prodrepo "github.com/confecta/confecta/internal/production/repository"
	"github.com/confecta/confecta/internal/shared/apperr"
	"github.com/confecta/confecta/internal/shared/clock"
)

const monitorLockKey = "notify:monitor:lock"

// Monitor periodically evaluates the notification rules over every
// owner's data. It is an explicit object with a lifecycle: construct it,
// Start it, Stop it on shutdown. Cycles run on a single goroutine so they
// never overlap in-process; a redis lock keeps replicas from
// double-firing.
type Monitor struct {
	orderRepo    *prodrepo.OrderRepository
	progressRepo *prodrepo.ProgressRepository
	pendencyRepo *finrepo.PendencyRepository
	notifRepo    *repository.NotificationRepository
	notifSvc     *NotificationService
	rdb          *redis.Client
	cfg          config.MonitorConfig
	clk          clock.Clock
	logger       *zap.Logger

	cron     *cron.Cron
	cancel   context.CancelFunc
	done     chan struct{}
	instance string
}

func NewMonitor(
	orderRepo *prodrepo.OrderRepository,
	progressRepo *prodrepo.ProgressRepository,
	pendencyRepo *finrepo.PendencyRepository,
	notifRepo *repository.NotificationRepository,
	notifSvc *NotificationService,
	rdb *redis.Client,
	cfg config.MonitorConfig,
	clk clock.Clock,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		orderRepo:    orderRepo,
		progressRepo: progressRepo,
		pendencyRepo: pendencyRepo,
		notifRepo:    notifRepo,
		notifSvc:     notifSvc,
		rdb:          rdb,
		cfg:          cfg,
		clk:          clk,
		logger:       logger,
		instance:     uuid.New().String()[:32],
	}
}

// Start launches the poll loop (immediate first cycle, then ticking at
// the configured interval) and schedules the nightly GC sweep. Calling
// Start on a started monitor is a bug.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	if m.cfg.GCCronSpec != "" {
		m.cron = cron.New()
		if _, err := m.cron.AddFunc(m.cfg.GCCronSpec, func() { m.runGC(context.Background()) }); err != nil {
			m.logger.Error("Invalid GC cron spec, sweep disabled",
				zap.String("spec", m.cfg.GCCronSpec), zap.Error(err))
		} else {
			m.cron.Start()
		}
	}

	go func() {
		defer close(m.done)

		m.runCycle(ctx)

		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.runCycle(ctx)
			}
		}
	}()

	m.logger.Info("Notification monitor started",
		zap.Duration("interval", m.cfg.Interval),
		zap.String("gc_cron", m.cfg.GCCronSpec))
}

// Stop halts the loop and waits for an in-flight cycle to finish.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	if m.cron != nil {
		cronCtx := m.cron.Stop()
		<-cronCtx.Done()
	}
	m.logger.Info("Notification monitor stopped")
}

// runCycle evaluates every rule for every owner under the cycle timeout.
// Errors are logged and the cycle moves on; the monitor itself never
// dies.
func (m *Monitor) runCycle(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, m.cfg.CycleTimeout)
	defer cancel()

	if !m.acquireLock(ctx) {
		m.logger.Debug("Monitor cycle skipped, another instance holds the lock")
		return
	}
	defer m.releaseLock()

	start := m.clk.Now()
	owners, err := m.loadOwners(ctx)
	if err != nil {
		m.logger.Error("Monitor cycle failed to list owners", zap.Error(err))
		return
	}

	created := 0
	for _, ownerID := range owners {
		n, err := m.evaluateOwner(ctx, ownerID)
		if err != nil {
			m.logger.Error("Monitor cycle failed for owner",
				zap.String("owner_id", ownerID),
				zap.String("class", apperr.Classify(err).String()),
				zap.Error(err))
			continue
		}
		created += n
	}

	m.logger.Info("Monitor cycle finished",
		zap.Int("owners", len(owners)),
		zap.Int("notifications", created),
		zap.Duration("elapsed", time.Since(start)))
}

func (m *Monitor) acquireLock(ctx context.Context) bool {
	if m.rdb == nil {
		return true
	}
	ttl := m.cfg.CycleTimeout * time.Duration(m.cfg.LockTTLFactor)
	if ttl <= 0 {
		ttl = m.cfg.CycleTimeout
	}
	ok, err := m.rdb.SetNX(ctx, monitorLockKey, m.instance, ttl).Result()
	if err != nil {
		// Redis down: run anyway, single-replica deployments must not
		// stop notifying.
		m.logger.Warn("Monitor lock unavailable, proceeding without it", zap.Error(err))
		return true
	}
	return ok
}

func (m *Monitor) releaseLock() {
	if m.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Only delete a lock this instance holds. A cycle that ran without
	// the lock, or overran the TTL, must not release another replica's.
	holder, err := m.rdb.Get(ctx, monitorLockKey).Result()
	if err != nil {
		if err != redis.Nil {
			m.logger.Warn("Failed to release monitor lock", zap.Error(err))
		}
		return
	}
	if holder != m.instance {
		return
	}
	if err := m.rdb.Del(ctx, monitorLockKey).Err(); err != nil {
		m.logger.Warn("Failed to release monitor lock", zap.Error(err))
	}
}

// loadOwners unions owners with orders and owners with open pendencies.
func (m *Monitor) loadOwners(ctx context.Context) ([]string, error) {
	orderOwners, err := m.orderRepo.DistinctOwners(ctx)
	if err != nil {
		return nil, err
	}
	pendencyOwners, err := m.pendencyRepo.DistinctOwners(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(orderOwners)+len(pendencyOwners))
	var owners []string
	for _, lists := range [][]string{orderOwners, pendencyOwners} {
		for _, o := range lists {
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
			owners = append(owners, o)
		}
	}
	return owners, nil
}

// evaluateOwner loads the owner's snapshots once, runs the three periodic
// rules concurrently and persists whatever they emit. Returns how many
// notifications were created.
func (m *Monitor) evaluateOwner(ctx context.Context, ownerID string) (int, error) {
	now := m.clk.Now()

	unread, err := m.notifRepo.FindUnread(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	var (
		deadline []entity.Notification
		payment  []entity.Notification
		stalled  []entity.Notification
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := m.orderRepo.FindByStatus(gctx, ownerID, prodentity.OrderStatusInProduction)
		if err != nil {
			return err
		}
		snapshots := make([]OrderSnapshot, 0, len(orders))
		for _, o := range orders {
			snapshots = append(snapshots, OrderSnapshot{ID: o.ID, Code: o.Code, ExpectedDate: o.ExpectedDate})
		}
		deadline = EvaluateDeadlineNear(snapshots, unread, now)
		return nil
	})
	g.Go(func() error {
		cutoff := clock.Today(now).AddDate(0, 0, paymentDueDays+1)
		pendencies, err := m.pendencyRepo.FindDueBy(gctx, ownerID, cutoff)
		if err != nil {
			return err
		}
		snapshots := make([]PendencySnapshot, 0, len(pendencies))
		for _, p := range pendencies {
			snapshots = append(snapshots, PendencySnapshot{
				ID:          p.ID,
				OrderCode:   p.OrderCode,
				StageName:   p.StageName,
				FactionName: p.FactionName,
				Amount:      p.Amount,
				DueDate:     p.DueDate,
			})
		}
		payment = EvaluatePaymentDue(snapshots, unread, now)
		return nil
	})
	g.Go(func() error {
		rows, err := m.progressRepo.ListPausedStages(gctx, ownerID)
		if err != nil {
			return err
		}
		snapshots := make([]StalledStageSnapshot, 0, len(rows))
		for _, r := range rows {
			snapshots = append(snapshots, StalledStageSnapshot{
				OrderID:   r.OrderID,
				OrderCode: r.OrderCode,
				StageID:   r.StageID,
				StageName: r.StageName,
				StartedAt: r.StartedAt,
			})
		}
		stalled = EvaluateStageStalled(snapshots, unread, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	created := 0
	for _, batch := range [][]entity.Notification{deadline, payment, stalled} {
		for i := range batch {
			if err := m.notifSvc.Create(ctx, ownerID, &batch[i]); err != nil {
				m.logger.Error("Failed to persist notification",
					zap.String("owner_id", ownerID),
					zap.String("type", batch[i].Type),
					zap.Error(err))
				continue
			}
			created++
		}
	}
	return created, nil
}

// runGC sweeps every owner's stale notifications.
func (m *Monitor) runGC(ctx context.Context) {
	owners, err := m.notifRepo.DistinctOwners(ctx)
	if err != nil {
		m.logger.Error("Notification GC failed to list owners", zap.Error(err))
		return
	}
	var removed int64
	for _, ownerID := range owners {
		n, err := m.notifRepo.GC(ctx, ownerID, m.clk.Now(), maxNotificationAge)
		if err != nil {
			m.logger.Error("Notification GC failed for owner",
				zap.String("owner_id", ownerID), zap.Error(err))
			continue
		}
		removed += n
	}
	m.logger.Info("Notification GC sweep finished",
		zap.Int("owners", len(owners)),
		zap.Int64("removed", removed))
}
