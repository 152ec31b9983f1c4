package usecase

import (
	"context"

	"github.com/Matrix-I/todo-backend/domain"
)

// ReminderScheduler abstracts the reminder coordinator so the task use
// case stays scheduling-agnostic. Schedule derives intent from the task's
// own fields; an unarmed task schedules nothing.
type ReminderScheduler interface {
	Schedule(ctx context.Context, task *domain.Task) error
	Cancel(ctx context.Context, taskID string) error
}
