package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matrix-I/todo-backend/domain"
)

var ucNow = time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
	seq   int

	createErr error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[string]domain.Task)}
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		return &t, nil
	}
	return nil, domain.ErrTaskNotFound
}

func (r *fakeRepo) List(_ context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		all = append(all, t)
	}
	return all, nil
}

func (r *fakeRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	if task.ID == "" {
		task.ID = fmt.Sprintf("task-%d", r.seq)
	}
	task.CreatedAt = ucNow.Add(time.Duration(r.seq) * time.Minute)
	task.LastModifiedAt = task.CreatedAt
	r.tasks[task.ID] = *task
	return task, nil
}

func (r *fakeRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	task.LastModifiedAt = ucNow
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeRepo) DeleteCompleted(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, t := range r.tasks {
		if t.IsCompleted {
			ids = append(ids, id)
			delete(r.tasks, id)
		}
	}
	return ids, nil
}

type fakeScheduler struct {
	scheduled []string
	cancelled []string

	scheduleErr error
	cancelErr   error
}

func (s *fakeScheduler) Schedule(_ context.Context, task *domain.Task) error {
	if s.scheduleErr != nil {
		return s.scheduleErr
	}
	s.scheduled = append(s.scheduled, task.ID)
	return nil
}

func (s *fakeScheduler) Cancel(_ context.Context, taskID string) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.cancelled = append(s.cancelled, taskID)
	return nil
}

func newTestUseCase() (*UseCase, *fakeRepo, *fakeScheduler) {
	repo := newFakeRepo()
	scheduler := &fakeScheduler{}
	uc := New(repo, scheduler, nil)
	uc.now = func() time.Time { return ucNow }
	return uc, repo, scheduler
}

func armedDraft(title string) *domain.Task {
	due := ucNow.Add(3 * time.Hour)
	return &domain.Task{
		Title:              title,
		Priority:           domain.PriorityHigh,
		DueDate:            &due,
		HasTime:            true,
		HasAlarm:           true,
		AlarmOffsetMinutes: 60,
	}
}

func TestCreate_RejectsEmptyTitleWithoutMutation(t *testing.T) {
	uc, repo, scheduler := newTestUseCase()

	_, err := uc.Create(context.Background(), &domain.Task{Title: "   "})

	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	assert.Empty(t, repo.tasks)
	assert.Empty(t, scheduler.scheduled)
}

func TestCreate_AppliesDefaults(t *testing.T) {
	uc, _, _ := newTestUseCase()

	res, err := uc.Create(context.Background(), &domain.Task{Title: "buy milk", AlarmOffsetMinutes: 45})

	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, res.Task.Priority)
	assert.Equal(t, domain.DefaultAlarmOffset, res.Task.AlarmOffsetMinutes)
	assert.False(t, res.Task.HasAlarm)
}

func TestCreate_SchedulesArmedTask(t *testing.T) {
	uc, _, scheduler := newTestUseCase()

	res, err := uc.Create(context.Background(), armedDraft("dentist"))

	require.NoError(t, err)
	assert.NoError(t, res.Reminder)
	assert.Equal(t, []string{res.Task.ID}, scheduler.scheduled)
}

func TestCreate_PersistenceFailureSchedulesNothing(t *testing.T) {
	uc, repo, scheduler := newTestUseCase()
	repo.createErr = errors.New("disk full")

	_, err := uc.Create(context.Background(), armedDraft("dentist"))

	assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))
	assert.Empty(t, scheduler.scheduled)
}

func TestCreate_ReminderFailureIsNonFatal(t *testing.T) {
	uc, repo, scheduler := newTestUseCase()
	scheduler.scheduleErr = errors.New("store unavailable")

	res, err := uc.Create(context.Background(), armedDraft("dentist"))

	require.NoError(t, err)
	assert.Error(t, res.Reminder)
	assert.Len(t, repo.tasks, 1, "the write must survive a reminder failure")
}

func TestUpdate_UnknownTaskIsNotFound(t *testing.T) {
	uc, _, _ := newTestUseCase()

	_, err := uc.Update(context.Background(), &domain.Task{ID: "ghost", Title: "x"})

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdate_UnrelatedFieldChangeLeavesReminderAlone(t *testing.T) {
	uc, _, scheduler := newTestUseCase()
	res, err := uc.Create(context.Background(), armedDraft("dentist"))
	require.NoError(t, err)

	edited := *res.Task
	edited.Notes = "bring insurance card"
	_, err = uc.Update(context.Background(), &edited)

	require.NoError(t, err)
	assert.Len(t, scheduler.scheduled, 1, "notes edits must not reschedule")
}

func TestUpdate_TitleChangeReschedules(t *testing.T) {
	uc, _, scheduler := newTestUseCase()
	res, err := uc.Create(context.Background(), armedDraft("dentist"))
	require.NoError(t, err)

	edited := *res.Task
	edited.Title = "dentist, 2pm"
	_, err = uc.Update(context.Background(), &edited)

	require.NoError(t, err)
	// The notification body carries the title, so the registration is redone.
	assert.Len(t, scheduler.scheduled, 2)
}

func TestUpdate_DisarmingCancels(t *testing.T) {
	uc, _, scheduler := newTestUseCase()
	res, err := uc.Create(context.Background(), armedDraft("dentist"))
	require.NoError(t, err)

	edited := *res.Task
	edited.HasAlarm = false
	_, err = uc.Update(context.Background(), &edited)

	require.NoError(t, err)
	assert.Contains(t, scheduler.cancelled, res.Task.ID)
	assert.Len(t, scheduler.scheduled, 1, "no new registration after disarming")
}

func TestToggleComplete_DisarmsAndCancels(t *testing.T) {
	uc, _, scheduler := newTestUseCase()
	res, err := uc.Create(context.Background(), armedDraft("dentist"))
	require.NoError(t, err)

	toggled, err := uc.ToggleComplete(context.Background(), res.Task.ID)

	require.NoError(t, err)
	assert.True(t, toggled.Task.IsCompleted)
	assert.False(t, toggled.Task.HasAlarm)
	assert.Contains(t, scheduler.cancelled, res.Task.ID)
}

func TestToggleComplete_UncompletingDoesNotResurrectAlarm(t *testing.T) {
	uc, _, scheduler := newTestUseCase()
	res, err := uc.Create(context.Background(), armedDraft("dentist"))
	require.NoError(t, err)

	completed, err := uc.ToggleComplete(context.Background(), res.Task.ID)
	require.NoError(t, err)
	reopened, err := uc.ToggleComplete(context.Background(), completed.Task.ID)
	require.NoError(t, err)

	assert.False(t, reopened.Task.IsCompleted)
	assert.False(t, reopened.Task.HasAlarm)
	assert.Len(t, scheduler.scheduled, 1, "only the original create scheduled")
}

func TestDelete_CancelsReminder(t *testing.T) {
	uc, repo, scheduler := newTestUseCase()
	res, err := uc.Create(context.Background(), armedDraft("dentist"))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), res.Task.ID))

	assert.Empty(t, repo.tasks)
	assert.Contains(t, scheduler.cancelled, res.Task.ID)
}

func TestDelete_MissingTaskIsNotFound(t *testing.T) {
	uc, _, _ := newTestUseCase()

	err := uc.Delete(context.Background(), "ghost")

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestClearCompleted_RemovesAndCancels(t *testing.T) {
	uc, repo, scheduler := newTestUseCase()
	first, err := uc.Create(context.Background(), &domain.Task{Title: "done already"})
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), &domain.Task{Title: "still open"})
	require.NoError(t, err)
	_, err = uc.ToggleComplete(context.Background(), first.Task.ID)
	require.NoError(t, err)

	removed, err := uc.ClearCompleted(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, repo.tasks, 1)
	assert.Contains(t, scheduler.cancelled, first.Task.ID)
}

func TestVisible_FiltersAndSorts(t *testing.T) {
	uc, _, _ := newTestUseCase()
	early := ucNow.Add(time.Hour)
	late := ucNow.Add(5 * time.Hour)

	_, err := uc.Create(context.Background(), &domain.Task{Title: "later", DueDate: &late})
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), &domain.Task{Title: "sooner", DueDate: &early})
	require.NoError(t, err)
	done, err := uc.Create(context.Background(), &domain.Task{Title: "finished"})
	require.NoError(t, err)
	_, err = uc.ToggleComplete(context.Background(), done.Task.ID)
	require.NoError(t, err)

	visible, err := uc.Visible(context.Background(), domain.FilterActive, domain.SortByDueDate)

	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "sooner", visible[0].Title)
	assert.Equal(t, "later", visible[1].Title)
}
