package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReconcileDriver is the slice of the reminder coordinator the reconciler
// needs.
type ReconcileDriver interface {
	Reconcile(ctx context.Context) error
}

// ReconcilerConfig controls the reconcile cadence.
type ReconcilerConfig struct {
	Interval time.Duration
}

// Reconciler re-derives reminder tracking state against the notification
// store on an interval, plus once at startup. It is the service-shaped
// version of reconciling on app foregrounding.
type Reconciler struct {
	driver  ReconcileDriver
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ReconcilerConfig
}

func NewReconciler(
	driver ReconcileDriver,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg ReconcilerConfig,
) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reconciler{
		driver:  driver,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			r.logger.Error("reminder reconcile failed", zap.Error(err))
		}
	})

	return r
}

// Start launches the reconcile loop and kicks off one immediate pass so a
// restart converges without waiting a full interval.
func (r *Reconciler) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Interval)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			r.logger.Warn("startup reconcile failed", zap.Error(err))
		}
	}()
	r.logger.Info("reconciler started", zap.Duration("interval", r.cfg.Interval))
}

// Stop gracefully stops the loop.
func (r *Reconciler) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("reconciler stopped")
}

// Run performs a single reconcile pass.
func (r *Reconciler) Run(ctx context.Context) error {
	if r == nil || r.driver == nil {
		return nil
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping reconcile (offline)")
		return nil
	}
	return r.driver.Reconcile(ctx)
}
