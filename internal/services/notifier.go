package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Matrix-I/todo-backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// NotifierConfig controls how frequently due reminders are delivered.
type NotifierConfig struct {
	Interval time.Duration
}

// Notifier periodically moves pending reminders whose fire time has
// arrived into the delivered set. It stands in for the platform's
// notification daemon: the coordinator never talks to it directly, it only
// observes its effects through the store.
type Notifier struct {
	deliverer repository.ReminderDeliverer
	monitor   ConnectionHealth
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       NotifierConfig
}

func NewNotifier(
	deliverer repository.ReminderDeliverer,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg NotifierConfig,
) *Notifier {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{
		deliverer: deliverer,
		monitor:   monitor,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = n.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := n.Deliver(ctx); err != nil {
			n.logger.Error("reminder delivery failed", zap.Error(err))
		}
	})

	return n
}

// Start launches the delivery loop.
func (n *Notifier) Start() {
	if n == nil || n.cron == nil {
		return
	}
	n.cron.Start()
	n.logger.Info("notifier started", zap.Duration("interval", n.cfg.Interval))
}

// Stop gracefully stops the loop.
func (n *Notifier) Stop(ctx context.Context) {
	if n == nil || n.cron == nil {
		return
	}
	stopCtx := n.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	n.logger.Info("notifier stopped")
}

// Deliver fires every reminder whose time has come.
func (n *Notifier) Deliver(ctx context.Context) error {
	if n == nil || n.deliverer == nil {
		return nil
	}
	if n.monitor != nil && !n.monitor.IsOnline() {
		n.logger.Debug("skipping reminder delivery (offline)")
		return nil
	}

	delivered, err := n.deliverer.DeliverDue(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, req := range delivered {
		n.logger.Info("reminder delivered",
			zap.String("task_id", req.TaskID),
			zap.Time("fire_at", req.FireAt),
			zap.String("body", req.Body))
	}
	return nil
}
