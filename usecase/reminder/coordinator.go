package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Matrix-I/todo-backend/domain"
	"github.com/Matrix-I/todo-backend/repository"
	"github.com/Matrix-I/todo-backend/usecase"
)

// Coordinator maintains the one-to-zero-or-one mapping from task id to
// scheduled reminder. The ledger records local intent before any external
// call, so a failed store call never loses what the user asked for; a
// later Reconcile re-derives consistency from both sides.
type Coordinator struct {
	store   repository.NotificationStore
	ledger  repository.ReminderLedger
	logger  *zap.Logger
	now     func() time.Time
	enabled bool

	mu        sync.Mutex
	cancelled map[string]struct{}
}

var _ usecase.ReminderScheduler = (*Coordinator)(nil)

// NewCoordinator wires the coordinator to its two stores. enabled mirrors
// the user-facing notification permission: when false, intent is still
// recorded locally but nothing is registered with the store, so reminders
// silently never fire.
func NewCoordinator(store repository.NotificationStore, ledger repository.ReminderLedger, enabled bool, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:     store,
		ledger:    ledger,
		logger:    logger,
		now:       time.Now,
		enabled:   enabled,
		cancelled: make(map[string]struct{}),
	}
}

// Schedule registers a reminder for the task, replacing any earlier one
// under the same id. A fire time that has already passed is skipped
// silently: scheduling something stale is a non-transition, not an error.
func (c *Coordinator) Schedule(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	fireAt, ok := task.FireAt()
	if !ok {
		return domain.NewError(domain.ErrCodeInvalid, "task does not request a reminder")
	}

	now := c.now()
	if !fireAt.After(now) {
		c.logger.Debug("skipping stale reminder",
			zap.String("task_id", task.ID),
			zap.Time("fire_at", fireAt))
		return nil
	}

	if err := c.store.Cancel(ctx, task.ID); err != nil {
		// Schedule replaces under the same id; reconcile covers the rest.
		c.logger.Warn("failed to cancel prior reminder before reschedule",
			zap.String("task_id", task.ID),
			zap.Error(err))
	}

	if err := c.ledger.Put(domain.TrackedReminder{
		TaskID:      task.ID,
		FireAt:      fireAt,
		ScheduledAt: now,
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "failed to track reminder", err)
	}

	c.mu.Lock()
	delete(c.cancelled, task.ID)
	c.mu.Unlock()

	if !c.enabled {
		c.logger.Info("notifications disabled; reminder tracked but not registered",
			zap.String("task_id", task.ID),
			zap.Time("fire_at", fireAt))
		return nil
	}

	if err := c.store.Schedule(ctx, domain.NewReminderRequest(task, fireAt)); err != nil {
		c.logger.Error("failed to schedule reminder",
			zap.String("task_id", task.ID),
			zap.Time("fire_at", fireAt),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeScheduling, "failed to schedule reminder", err)
	}

	c.logger.Debug("reminder scheduled",
		zap.String("task_id", task.ID),
		zap.Time("fire_at", fireAt))
	return nil
}

// Cancel removes any reminder registered under the id from the ledger and
// from both sides of the external store. Cancelling an untracked id is a
// no-op. The id is remembered for the rest of the session so Reconcile can
// re-drive the removal if the store call fails or the store still reports
// the id as delivered.
func (c *Coordinator) Cancel(ctx context.Context, taskID string) error {
	if taskID == "" {
		return nil
	}

	if err := c.ledger.Delete(taskID); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "failed to untrack reminder", err)
	}

	c.mu.Lock()
	c.cancelled[taskID] = struct{}{}
	c.mu.Unlock()

	if err := c.store.Cancel(ctx, taskID); err != nil {
		c.logger.Warn("failed to cancel reminder in store",
			zap.String("task_id", taskID),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeScheduling, "failed to cancel reminder", err)
	}
	return nil
}

// Reconcile re-derives tracked state against the external store: both the
// pending and the delivered id lists are fetched concurrently and joined
// before anything is touched. Ledger entries absent from the union are
// dropped (fired and acknowledged, or cancelled elsewhere). Ids cancelled
// in this session stay cancelled even if the store still reports them.
// The badge count ends up equal to the number of tracked reminders.
func (c *Coordinator) Reconcile(ctx context.Context) error {
	var (
		wg           sync.WaitGroup
		pending      []string
		delivered    []string
		pendingErr   error
		deliveredErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pending, pendingErr = c.store.PendingIDs(ctx)
	}()
	go func() {
		defer wg.Done()
		delivered, deliveredErr = c.store.DeliveredIDs(ctx)
	}()
	wg.Wait()

	if pendingErr != nil {
		return domain.WrapError(domain.ErrCodeScheduling, "failed to list pending reminders", pendingErr)
	}
	if deliveredErr != nil {
		return domain.WrapError(domain.ErrCodeScheduling, "failed to list delivered reminders", deliveredErr)
	}

	external := make(map[string]struct{}, len(pending)+len(delivered))
	for _, id := range pending {
		external[id] = struct{}{}
	}
	for _, id := range delivered {
		external[id] = struct{}{}
	}

	tracked, err := c.ledger.All()
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "failed to read reminder ledger", err)
	}

	dropped := 0
	for _, r := range tracked {
		if _, ok := external[r.TaskID]; ok {
			continue
		}
		if err := c.ledger.Delete(r.TaskID); err != nil {
			return domain.WrapError(domain.ErrCodePersistence, "failed to drop reminder", err)
		}
		dropped++
	}

	for _, id := range c.cancelledSnapshot() {
		if _, ok := external[id]; !ok {
			c.resolveCancelled(id)
			continue
		}
		// Still visible externally; local removal is authoritative.
		if err := c.store.Cancel(ctx, id); err != nil {
			c.logger.Warn("failed to re-drive cancellation",
				zap.String("task_id", id),
				zap.Error(err))
			continue
		}
		c.resolveCancelled(id)
	}

	count, err := c.ledger.Count()
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "failed to count reminders", err)
	}
	if err := c.store.SetBadgeCount(ctx, count); err != nil {
		return domain.WrapError(domain.ErrCodeScheduling, "failed to set badge count", err)
	}

	c.logger.Info("reminders reconciled",
		zap.Int("pending", len(pending)),
		zap.Int("delivered", len(delivered)),
		zap.Int("dropped", dropped),
		zap.Int("tracked", count))
	return nil
}

// ClearAll cancels every tracked reminder and resets the badge to zero.
func (c *Coordinator) ClearAll(ctx context.Context) error {
	tracked, err := c.ledger.All()
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "failed to read reminder ledger", err)
	}

	for _, r := range tracked {
		if err := c.store.Cancel(ctx, r.TaskID); err != nil {
			c.logger.Warn("failed to cancel reminder during clear",
				zap.String("task_id", r.TaskID),
				zap.Error(err))
		}
	}

	if err := c.ledger.Clear(); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "failed to clear reminder ledger", err)
	}

	c.mu.Lock()
	c.cancelled = make(map[string]struct{})
	c.mu.Unlock()

	if err := c.store.SetBadgeCount(ctx, 0); err != nil {
		return domain.WrapError(domain.ErrCodeScheduling, "failed to reset badge count", err)
	}

	c.logger.Info("cleared all reminders", zap.Int("count", len(tracked)))
	return nil
}

// Tracked returns the ledger's current view of scheduled reminders.
func (c *Coordinator) Tracked() ([]domain.TrackedReminder, error) {
	return c.ledger.All()
}

// TrackedCount returns the number of tracked reminders, which is also the
// badge value Reconcile will publish.
func (c *Coordinator) TrackedCount() (int, error) {
	return c.ledger.Count()
}

func (c *Coordinator) cancelledSnapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.cancelled))
	for id := range c.cancelled {
		ids = append(ids, id)
	}
	return ids
}

func (c *Coordinator) resolveCancelled(id string) {
	c.mu.Lock()
	delete(c.cancelled, id)
	c.mu.Unlock()
}
