package task

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Matrix-I/todo-backend/domain"
	"github.com/Matrix-I/todo-backend/repository"
	"github.com/Matrix-I/todo-backend/usecase"
)

// Result is a mutation outcome: the persisted task plus any non-fatal
// reminder side-effect failure. A non-nil Reminder never means the write
// failed; callers surface it as a warning.
type Result struct {
	Task     *domain.Task
	Reminder error
}

type UseCase struct {
	tasks     repository.TaskRepository
	reminders usecase.ReminderScheduler
	logger    *zap.Logger
	now       func() time.Time
}

func New(tasks repository.TaskRepository, reminders usecase.ReminderScheduler, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		reminders: reminders,
		logger:    logger,
		now:       time.Now,
	}
}

// Visible returns the tasks matching the filter in the order the sort key
// demands. The list is re-derived from the store on every call rather than
// cached per filter/sort combination.
func (uc *UseCase) Visible(ctx context.Context, filter domain.Filter, key domain.SortKey) ([]domain.Task, error) {
	all, err := uc.tasks.List(ctx)
	if err != nil {
		return nil, persistenceErr("failed to list tasks", err)
	}

	refs := make([]*domain.Task, len(all))
	for i := range all {
		refs[i] = &all[i]
	}

	visible := domain.VisibleTasks(refs, filter, key, uc.now())
	ordered := make([]domain.Task, len(visible))
	for i, t := range visible {
		ordered[i] = *t
	}
	return ordered, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// Create validates, normalizes and persists a new task, then schedules its
// reminder when the fields ask for one. A failed save aborts the whole
// operation; nothing is scheduled for a task that was never stored.
func (uc *UseCase) Create(ctx context.Context, draft *domain.Task) (Result, error) {
	if draft == nil {
		return Result{}, domain.ErrInvalidPayload
	}
	if err := draft.Validate(); err != nil {
		return Result{}, err
	}
	draft.Normalize()

	created, err := uc.tasks.Create(ctx, draft)
	if err != nil {
		uc.logger.Error("failed to create task", zap.Error(err))
		return Result{}, persistenceErr("failed to create task", err)
	}

	return Result{Task: created, Reminder: uc.syncReminder(ctx, created)}, nil
}

// Update replaces the editable fields of a task. Reminder state is only
// touched when a field the reminder derives from actually changed, and
// only after the write succeeded.
func (uc *UseCase) Update(ctx context.Context, incoming *domain.Task) (Result, error) {
	if incoming == nil || incoming.ID == "" {
		return Result{}, domain.ErrInvalidPayload
	}
	if err := incoming.Validate(); err != nil {
		return Result{}, err
	}

	current, err := uc.tasks.GetByID(ctx, incoming.ID)
	if err != nil {
		return Result{}, err
	}

	incoming.CreatedAt = current.CreatedAt
	incoming.Normalize()

	if err := uc.tasks.Update(ctx, incoming); err != nil {
		uc.logger.Error("failed to update task", zap.String("task_id", incoming.ID), zap.Error(err))
		return Result{}, persistenceErr("failed to update task", err)
	}

	if !reminderFieldsChanged(current, incoming) {
		return Result{Task: incoming}, nil
	}
	return Result{Task: incoming, Reminder: uc.syncReminder(ctx, incoming)}, nil
}

// ToggleComplete flips completion. Completing a task disarms its alarm and
// cancels the reminder; un-completing does not resurrect the alarm.
func (uc *UseCase) ToggleComplete(ctx context.Context, id string) (Result, error) {
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return Result{}, err
	}

	toggled := *current
	toggled.IsCompleted = !toggled.IsCompleted
	toggled.Normalize()

	if err := uc.tasks.Update(ctx, &toggled); err != nil {
		uc.logger.Error("failed to toggle task", zap.String("task_id", id), zap.Error(err))
		return Result{}, persistenceErr("failed to toggle task", err)
	}

	return Result{Task: &toggled, Reminder: uc.syncReminder(ctx, &toggled)}, nil
}

// Delete removes the task and cancels its reminder. A cancel failure after
// a successful delete is logged only; reconcile cleans up the remainder.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return persistenceErr("failed to delete task", err)
	}

	if uc.reminders != nil {
		if err := uc.reminders.Cancel(ctx, id); err != nil {
			uc.logger.Warn("failed to cancel reminder for deleted task",
				zap.String("task_id", id), zap.Error(err))
		}
	}
	return nil
}

// ClearCompleted bulk-deletes every completed task, returning how many
// were removed. Reminders are cancelled per id even though a completed
// task should not have one tracked.
func (uc *UseCase) ClearCompleted(ctx context.Context) (int, error) {
	ids, err := uc.tasks.DeleteCompleted(ctx)
	if err != nil {
		return 0, persistenceErr("failed to clear completed tasks", err)
	}

	if uc.reminders != nil {
		for _, id := range ids {
			if err := uc.reminders.Cancel(ctx, id); err != nil {
				uc.logger.Warn("failed to cancel reminder for cleared task",
					zap.String("task_id", id), zap.Error(err))
			}
		}
	}
	return len(ids), nil
}

// syncReminder drives the coordinator from the task's current fields:
// cancel-then-schedule when a reminder is wanted (the cancel covers edits
// whose new fire time is already stale), plain cancel otherwise. The
// returned error is the non-fatal warning channel.
func (uc *UseCase) syncReminder(ctx context.Context, t *domain.Task) error {
	if uc.reminders == nil {
		return nil
	}

	if err := uc.reminders.Cancel(ctx, t.ID); err != nil {
		uc.logger.Warn("failed to cancel reminder",
			zap.String("task_id", t.ID), zap.Error(err))
		if !t.WantsReminder() {
			return err
		}
	}
	if !t.WantsReminder() {
		return nil
	}

	if err := uc.reminders.Schedule(ctx, t); err != nil {
		uc.logger.Warn("failed to schedule reminder",
			zap.String("task_id", t.ID), zap.Error(err))
		return err
	}
	return nil
}

func reminderFieldsChanged(old, updated *domain.Task) bool {
	if old.Title != updated.Title ||
		old.IsCompleted != updated.IsCompleted ||
		old.HasTime != updated.HasTime ||
		old.HasAlarm != updated.HasAlarm ||
		old.AlarmOffsetMinutes != updated.AlarmOffsetMinutes {
		return true
	}
	switch {
	case old.DueDate == nil && updated.DueDate == nil:
		return false
	case old.DueDate == nil || updated.DueDate == nil:
		return true
	}
	return !old.DueDate.Equal(*updated.DueDate)
}

func persistenceErr(message string, err error) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	return domain.WrapError(domain.ErrCodePersistence, message, err)
}
