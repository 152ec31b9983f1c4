package domain

import (
	"strings"
	"time"
)

// Priority classifies how urgently a task should be handled.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRanks = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// Rank returns the ordering weight of the priority. Higher ranks sort
// first. Unrecognized values rank as medium.
func (p Priority) Rank() int {
	if rank, ok := priorityRanks[p]; ok {
		return rank
	}
	return priorityRanks[PriorityMedium]
}

// NormalizePriority maps unknown or missing values to PriorityMedium.
func NormalizePriority(p Priority) Priority {
	lowered := Priority(strings.ToLower(string(p)))
	if _, ok := priorityRanks[lowered]; ok {
		return lowered
	}
	return PriorityMedium
}

// Alarm offsets are the fixed set of lead times (minutes before the due
// time) a reminder may use.
const (
	AlarmOffset15m     = 15
	AlarmOffset30m     = 30
	AlarmOffset1h      = 60
	AlarmOffset2h      = 120
	AlarmOffset1d      = 1440
	DefaultAlarmOffset = AlarmOffset30m
)

var alarmOffsetOptions = map[int]struct{}{
	AlarmOffset15m: {},
	AlarmOffset30m: {},
	AlarmOffset1h:  {},
	AlarmOffset2h:  {},
	AlarmOffset1d:  {},
}

// NormalizeAlarmOffset maps any value outside the fixed option set to the
// default offset. External data (API payloads, stored rows) passes through
// this on load.
func NormalizeAlarmOffset(minutes int) int {
	if _, ok := alarmOffsetOptions[minutes]; ok {
		return minutes
	}
	return DefaultAlarmOffset
}

// AlarmOffsetOptions returns the allowed offsets in ascending order.
func AlarmOffsetOptions() []int {
	return []int{AlarmOffset15m, AlarmOffset30m, AlarmOffset1h, AlarmOffset2h, AlarmOffset1d}
}

// Task is a single to-do item. The id is assigned once at creation and
// never reused; everything else is user-editable.
type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Notes              string     `json:"notes,omitempty"`
	IsCompleted        bool       `json:"is_completed"`
	Priority           Priority   `json:"priority"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	HasTime            bool       `json:"has_time"`
	HasAlarm           bool       `json:"has_alarm"`
	AlarmOffsetMinutes int        `json:"alarm_offset_minutes"`
	CreatedAt          time.Time  `json:"created_at"`
	LastModifiedAt     time.Time  `json:"last_modified_at"`
}

// IsOverdue reports whether the task is past due: incomplete, with a due
// date earlier than the reference time. Recomputed on read, never stored.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// WantsReminder reports whether the task's fields ask for a scheduled
// reminder: an armed alarm on a due date that carries a time of day.
func (t *Task) WantsReminder() bool {
	return t != nil && t.HasAlarm && t.HasTime && t.DueDate != nil
}

// FireAt returns the moment the task's reminder should deliver: the due
// time minus the alarm offset. ok is false when the task has no concrete
// due time to anchor a reminder to.
func (t *Task) FireAt() (time.Time, bool) {
	if !t.WantsReminder() {
		return time.Time{}, false
	}
	return t.DueDate.Add(-time.Duration(t.AlarmOffsetMinutes) * time.Minute), true
}

// Normalize enforces the entity invariants in place:
//
//	hasAlarm implies hasTime implies dueDate != nil
//	isCompleted implies hasAlarm == false
//	alarmOffsetMinutes is a member of the fixed option set
//	priority is one of high/medium/low
//
// Violations resolve downward (the alarm is dropped, never invented), so
// Normalize is safe to apply both before persisting and on load.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Priority = NormalizePriority(t.Priority)
	t.AlarmOffsetMinutes = NormalizeAlarmOffset(t.AlarmOffsetMinutes)
	if t.DueDate == nil {
		t.HasTime = false
	}
	if !t.HasTime {
		t.HasAlarm = false
	}
	if t.IsCompleted {
		t.HasAlarm = false
	}
}

// Validate reports whether the task can be persisted at all. A task with
// an empty title is rejected before any mutation happens.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}
