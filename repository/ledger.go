package repository

import "github.com/Matrix-I/todo-backend/domain"

// ReminderLedger is the coordinator's durable record of which reminders it
// believes are scheduled. It is a local embedded store, so calls are
// synchronous and need no context.
type ReminderLedger interface {
	Put(reminder domain.TrackedReminder) error
	Get(taskID string) (*domain.TrackedReminder, error)
	Delete(taskID string) error
	All() ([]domain.TrackedReminder, error)
	Clear() error
	Count() (int, error)
}
