// Package scheduler runs the nightly housekeeping sweep on a cron
// schedule: expiring consumables past their expiration date and updating
// the low-stock and overdue gauges.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"aquascope/internal/metrics"
	"aquascope/internal/model"
	"aquascope/internal/store"
)

// Scheduler owns the cron runner.
type Scheduler struct {
	store   *store.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	cron    *cron.Cron
}

// New builds a scheduler with the sweep registered on spec, a standard
// five-field cron expression.
func New(st *store.Store, m *metrics.Metrics, logger *zap.Logger, spec string) (*Scheduler, error) {
	s := &Scheduler{
		store:   st,
		metrics: m,
		logger:  logger.Named("scheduler"),
		cron:    cron.New(),
	}
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("sweep failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins cron scheduling and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("scheduler started")
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// Sweep expires consumables whose expiration date has passed and
// refreshes the stock and overdue gauges.
func (s *Scheduler) Sweep(ctx context.Context) error {
	started := time.Now()
	today := model.Today()

	expired, err := s.expireConsumables(ctx, today)
	if err != nil {
		return err
	}

	var lowStock, overdue int
	db := s.store.DB()
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM consumables WHERE status IN (?, ?)`,
		model.ConsumableLowStock, model.ConsumableDepleted).Scan(&lowStock); err != nil {
		return err
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM maintenance_reminders WHERE is_active = 1 AND next_due <= ?`,
		today.String()).Scan(&overdue); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ObserveSweep(time.Since(started), lowStock, overdue)
	}
	s.logger.Info("sweep complete",
		zap.Int64("expired_consumables", expired),
		zap.Int("low_stock", lowStock),
		zap.Int("overdue_reminders", overdue),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (s *Scheduler) expireConsumables(ctx context.Context, today model.Date) (int64, error) {
	res, err := s.store.DB().ExecContext(ctx,
		`UPDATE consumables SET status = ?, updated_at = ?
		WHERE expiration_date IS NOT NULL AND expiration_date < ? AND status NOT IN (?, ?)`,
		model.ConsumableExpired, time.Now().UTC().Format(time.RFC3339Nano),
		today.String(), model.ConsumableExpired, model.ConsumableDepleted)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
