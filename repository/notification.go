package repository

import (
	"context"
	"time"

	"github.com/Matrix-I/todo-backend/domain"
)

// NotificationStore is the contract of the external reminder store. A
// schedule call for an id that is already pending replaces the earlier
// registration rather than stacking a second one. Pending reminders whose
// fire time arrives move to the delivered set; they stay there until
// removed or until the whole mapping is cleared.
type NotificationStore interface {
	Schedule(ctx context.Context, req domain.ReminderRequest) error
	Cancel(ctx context.Context, taskID string) error
	PendingIDs(ctx context.Context) ([]string, error)
	DeliveredIDs(ctx context.Context) ([]string, error)
	RemoveDelivered(ctx context.Context, taskID string) error
	SetBadgeCount(ctx context.Context, count int) error
}

// ReminderDeliverer moves due pending reminders into the delivered set.
// Implemented by stores that own the pending queue; the delivery loop
// drives it on a schedule.
type ReminderDeliverer interface {
	DeliverDue(ctx context.Context, now time.Time) ([]domain.ReminderRequest, error)
}

// NotificationCenter is the full reminder backend: the store face the
// coordinator talks to plus the delivery face the notifier drives.
type NotificationCenter interface {
	NotificationStore
	ReminderDeliverer
}
