package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewNow = time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

func sampleTasks() []*Task {
	return []*Task{
		{ID: "a", Title: "buy groceries", Priority: PriorityLow, DueDate: datePtr(viewNow.Add(2 * time.Hour)), CreatedAt: viewNow.Add(-4 * time.Hour)},
		{ID: "b", Title: "Answer email", Priority: PriorityHigh, DueDate: datePtr(viewNow.Add(-time.Hour)), CreatedAt: viewNow.Add(-3 * time.Hour)},
		{ID: "c", Title: "clean desk", Priority: PriorityMedium, CreatedAt: viewNow.Add(-2 * time.Hour)},
		{ID: "d", Title: "pay rent", Priority: PriorityHigh, IsCompleted: true, DueDate: datePtr(viewNow.Add(-24 * time.Hour)), CreatedAt: viewNow.Add(-time.Hour)},
	}
}

func idsOf(tasks []*Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestParseFilter(t *testing.T) {
	for raw, want := range map[string]Filter{
		"":          FilterAll,
		"all":       FilterAll,
		"Active":    FilterActive,
		"completed": FilterCompleted,
		" overdue ": FilterOverdue,
	} {
		got, err := ParseFilter(raw)
		require.NoError(t, err, "filter %q", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseFilter("starred")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestParseSortKey(t *testing.T) {
	for raw, want := range map[string]SortKey{
		"":             SortByDueDate,
		"due_date":     SortByDueDate,
		"priority":     SortByPriority,
		"Alphabetical": SortByAlphabetical,
	} {
		got, err := ParseSortKey(raw)
		require.NoError(t, err, "sort key %q", raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseSortKey("newest")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestVisibleTasks_Filters(t *testing.T) {
	tasks := sampleTasks()

	assert.Len(t, VisibleTasks(tasks, FilterAll, SortByDueDate, viewNow), 4)
	assert.Equal(t, []string{"b", "a", "c"}, idsOf(VisibleTasks(tasks, FilterActive, SortByDueDate, viewNow)))
	assert.Equal(t, []string{"d"}, idsOf(VisibleTasks(tasks, FilterCompleted, SortByDueDate, viewNow)))
	assert.Equal(t, []string{"b"}, idsOf(VisibleTasks(tasks, FilterOverdue, SortByDueDate, viewNow)))
}

func TestVisibleTasks_DueDateSortPutsUndatedLast(t *testing.T) {
	tasks := sampleTasks()

	got := idsOf(VisibleTasks(tasks, FilterAll, SortByDueDate, viewNow))

	assert.Equal(t, []string{"d", "b", "a", "c"}, got)
}

func TestVisibleTasks_PrioritySortBreaksTiesByNewestFirst(t *testing.T) {
	tasks := sampleTasks()

	got := idsOf(VisibleTasks(tasks, FilterAll, SortByPriority, viewNow))

	// d and b are both high; d was created later so it leads.
	assert.Equal(t, []string{"d", "b", "c", "a"}, got)
}

func TestVisibleTasks_PriorityBeatsCreationOrder(t *testing.T) {
	older := &Task{ID: "low-old", Title: "b", Priority: PriorityLow, CreatedAt: viewNow.Add(-2 * time.Hour)}
	newer := &Task{ID: "high-new", Title: "c", Priority: PriorityHigh, CreatedAt: viewNow.Add(-time.Hour)}

	got := idsOf(VisibleTasks([]*Task{older, newer}, FilterAll, SortByPriority, viewNow))

	assert.Equal(t, []string{"high-new", "low-old"}, got)
}

func TestVisibleTasks_AlphabeticalIgnoresCase(t *testing.T) {
	tasks := sampleTasks()

	got := idsOf(VisibleTasks(tasks, FilterAll, SortByAlphabetical, viewNow))

	assert.Equal(t, []string{"b", "a", "c", "d"}, got)
}

func TestVisibleTasks_StableForEqualKeys(t *testing.T) {
	due := viewNow.Add(time.Hour)
	created := viewNow.Add(-time.Hour)
	first := &Task{ID: "first", Title: "same", Priority: PriorityMedium, DueDate: datePtr(due), CreatedAt: created}
	second := &Task{ID: "second", Title: "same", Priority: PriorityMedium, DueDate: datePtr(due), CreatedAt: created}

	for _, key := range []SortKey{SortByDueDate, SortByPriority, SortByAlphabetical} {
		got := idsOf(VisibleTasks([]*Task{first, second}, FilterAll, key, viewNow))
		assert.Equal(t, []string{"first", "second"}, got, "sort key %s", key)
	}
}

func TestVisibleTasks_DoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	original := idsOf(tasks)

	VisibleTasks(tasks, FilterAll, SortByAlphabetical, viewNow)

	assert.Equal(t, original, idsOf(tasks))
}

func TestVisibleTasks_SkipsNilEntries(t *testing.T) {
	tasks := []*Task{nil, {ID: "x", Title: "x"}}

	got := VisibleTasks(tasks, FilterAll, SortByDueDate, viewNow)

	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID)
}
