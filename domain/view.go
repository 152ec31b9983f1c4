package domain

import (
	"sort"
	"strings"
	"time"
)

// Filter selects which slice of the task list a view shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

// SortKey selects the ordering of a task list view.
type SortKey string

const (
	SortByDueDate      SortKey = "due_date"
	SortByPriority     SortKey = "priority"
	SortByAlphabetical SortKey = "alphabetical"
)

// ParseFilter validates a filter name from an external source. The empty
// string means "all".
func ParseFilter(raw string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	case FilterOverdue:
		return FilterOverdue, nil
	}
	return "", NewError(ErrCodeInvalid, "unknown filter")
}

// ParseSortKey validates a sort key name from an external source. The
// empty string means "due_date".
func ParseSortKey(raw string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortByDueDate:
		return SortByDueDate, nil
	case SortByPriority:
		return SortByPriority, nil
	case SortByAlphabetical:
		return SortByAlphabetical, nil
	}
	return "", NewError(ErrCodeInvalid, "unknown sort key")
}

// Matches reports whether the task belongs to the filtered view at the
// given reference time.
func (f Filter) Matches(t *Task, now time.Time) bool {
	switch f {
	case FilterActive:
		return !t.IsCompleted
	case FilterCompleted:
		return t.IsCompleted
	case FilterOverdue:
		return t.IsOverdue(now)
	default:
		return true
	}
}

// VisibleTasks returns the tasks matching the filter, ordered by the sort
// key. The input slice is never mutated; the result is a fresh slice
// holding the same pointers. Sorting is stable, so tasks that compare
// equal keep their relative input order.
func VisibleTasks(tasks []*Task, filter Filter, key SortKey, now time.Time) []*Task {
	visible := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if filter.Matches(t, now) {
			visible = append(visible, t)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return lessTasks(visible[i], visible[j], key)
	})
	return visible
}

func lessTasks(a, b *Task, key SortKey) bool {
	switch key {
	case SortByPriority:
		// Higher rank first; newer creation breaks ties.
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.CreatedAt.After(b.CreatedAt)
	case SortByAlphabetical:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	default:
		// Due date ascending, undated tasks after all dated ones.
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	}
}
