package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReminderRequest is the payload handed to the notification store when a
// reminder is registered. FireAt is always strictly in the future at the
// moment of scheduling.
type ReminderRequest struct {
	TaskID string    `json:"task_id"`
	FireAt time.Time `json:"fire_at"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
}

// TrackedReminder is the coordinator's local record of one scheduled
// reminder. At most one exists per task id.
type TrackedReminder struct {
	TaskID      string    `json:"task_id"`
	FireAt      time.Time `json:"fire_at"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewReminderRequest composes the notification payload for a task whose
// reminder fires at fireAt. The body carries the time remaining until the
// task is due, measured from the fire moment.
func NewReminderRequest(t *Task, fireAt time.Time) ReminderRequest {
	remaining := time.Duration(t.AlarmOffsetMinutes) * time.Minute
	return ReminderRequest{
		TaskID: t.ID,
		FireAt: fireAt,
		Title:  t.Title,
		Body:   fmt.Sprintf("%s — due in %s", t.Title, FormatRemaining(remaining)),
	}
}

// FormatRemaining renders a duration as human-readable remaining time:
// days and hours when at least a day remains, hours and minutes when at
// least an hour remains, bare minutes otherwise. Zero-valued components
// are omitted and units pluralize with their count.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Minutes())

	var parts []string
	switch {
	case total >= 24*60:
		days := total / (24 * 60)
		hours := (total % (24 * 60)) / 60
		parts = append(parts, pluralize(days, "day"))
		if hours > 0 {
			parts = append(parts, pluralize(hours, "hour"))
		}
	case total >= 60:
		hours := total / 60
		minutes := total % 60
		parts = append(parts, pluralize(hours, "hour"))
		if minutes > 0 {
			parts = append(parts, pluralize(minutes, "minute"))
		}
	default:
		parts = append(parts, pluralize(total, "minute"))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
