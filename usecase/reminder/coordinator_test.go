package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matrix-I/todo-backend/domain"
)

type fakeStore struct {
	mu        sync.Mutex
	pending   map[string]domain.ReminderRequest
	delivered map[string]struct{}
	badge     int

	scheduleErr error
	cancelErr   error
	pendingErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending:   make(map[string]domain.ReminderRequest),
		delivered: make(map[string]struct{}),
	}
}

func (s *fakeStore) Schedule(_ context.Context, req domain.ReminderRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduleErr != nil {
		return s.scheduleErr
	}
	s.pending[req.TaskID] = req
	delete(s.delivered, req.TaskID)
	return nil
}

func (s *fakeStore) Cancel(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelErr != nil {
		return s.cancelErr
	}
	delete(s.pending, taskID)
	delete(s.delivered, taskID)
	return nil
}

func (s *fakeStore) PendingIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeStore) DeliveredIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.delivered))
	for id := range s.delivered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeStore) RemoveDelivered(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.delivered, taskID)
	return nil
}

func (s *fakeStore) SetBadgeCount(_ context.Context, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badge = count
	return nil
}

// deliver simulates the store firing a pending reminder.
func (s *fakeStore) deliver(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, taskID)
	s.delivered[taskID] = struct{}{}
}

type fakeLedger struct {
	mu    sync.Mutex
	items map[string]domain.TrackedReminder
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{items: make(map[string]domain.TrackedReminder)}
}

func (l *fakeLedger) Put(r domain.TrackedReminder) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[r.TaskID] = r
	return nil
}

func (l *fakeLedger) Get(taskID string) (*domain.TrackedReminder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.items[taskID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (l *fakeLedger) Delete(taskID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, taskID)
	return nil
}

func (l *fakeLedger) All() ([]domain.TrackedReminder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := make([]domain.TrackedReminder, 0, len(l.items))
	for _, r := range l.items {
		all = append(all, r)
	}
	return all, nil
}

func (l *fakeLedger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[string]domain.TrackedReminder)
	return nil
}

func (l *fakeLedger) Count() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items), nil
}

var coordNow = time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)

func newTestCoordinator() (*Coordinator, *fakeStore, *fakeLedger) {
	store := newFakeStore()
	ledger := newFakeLedger()
	c := NewCoordinator(store, ledger, true, nil)
	c.now = func() time.Time { return coordNow }
	return c, store, ledger
}

func armedTask(id string, due time.Time, offsetMinutes int) *domain.Task {
	return &domain.Task{
		ID:                 id,
		Title:              "task " + id,
		Priority:           domain.PriorityMedium,
		DueDate:            &due,
		HasTime:            true,
		HasAlarm:           true,
		AlarmOffsetMinutes: offsetMinutes,
	}
}

func TestSchedule_RegistersFutureReminder(t *testing.T) {
	c, store, ledger := newTestCoordinator()
	task := armedTask("a", coordNow.Add(2*time.Hour), 60)

	require.NoError(t, c.Schedule(context.Background(), task))

	req, ok := store.pending["a"]
	require.True(t, ok)
	assert.True(t, req.FireAt.Equal(coordNow.Add(time.Hour)))
	assert.Equal(t, "task a — due in 1 hour", req.Body)

	tracked, err := ledger.Get("a")
	require.NoError(t, err)
	require.NotNil(t, tracked)
	assert.True(t, tracked.FireAt.Equal(coordNow.Add(time.Hour)))
}

func TestSchedule_SkipsStaleFireAt(t *testing.T) {
	c, store, ledger := newTestCoordinator()
	// Due in 30 minutes with a 60 minute lead: the fire moment already passed.
	task := armedTask("a", coordNow.Add(30*time.Minute), 60)

	require.NoError(t, c.Schedule(context.Background(), task))

	assert.Empty(t, store.pending)
	count, _ := ledger.Count()
	assert.Zero(t, count)
}

func TestSchedule_FireAtExactlyNowIsStale(t *testing.T) {
	c, store, _ := newTestCoordinator()
	task := armedTask("a", coordNow.Add(time.Hour), 60)

	require.NoError(t, c.Schedule(context.Background(), task))

	assert.Empty(t, store.pending)
}

func TestSchedule_ReplacesExistingRegistration(t *testing.T) {
	c, store, ledger := newTestCoordinator()
	due := coordNow.Add(3 * time.Hour)

	require.NoError(t, c.Schedule(context.Background(), armedTask("a", due, 60)))
	require.NoError(t, c.Schedule(context.Background(), armedTask("a", due, 30)))

	require.Len(t, store.pending, 1)
	assert.True(t, store.pending["a"].FireAt.Equal(due.Add(-30*time.Minute)))

	count, _ := ledger.Count()
	assert.Equal(t, 1, count)
}

func TestSchedule_RejectsUnarmedTask(t *testing.T) {
	c, _, _ := newTestCoordinator()
	due := coordNow.Add(2 * time.Hour)
	task := &domain.Task{ID: "a", Title: "no alarm", DueDate: &due, HasTime: true}

	err := c.Schedule(context.Background(), task)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestSchedule_StoreFailureKeepsLocalIntent(t *testing.T) {
	c, store, ledger := newTestCoordinator()
	store.scheduleErr = errors.New("store unavailable")
	task := armedTask("a", coordNow.Add(2*time.Hour), 60)

	err := c.Schedule(context.Background(), task)

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeScheduling))
	tracked, _ := ledger.Get("a")
	assert.NotNil(t, tracked, "ledger keeps the intent for reconcile to repair")
}

func TestCancel_RemovesPendingAndDelivered(t *testing.T) {
	c, store, ledger := newTestCoordinator()
	require.NoError(t, c.Schedule(context.Background(), armedTask("a", coordNow.Add(2*time.Hour), 60)))
	store.deliver("a")

	require.NoError(t, c.Cancel(context.Background(), "a"))

	assert.Empty(t, store.pending)
	assert.Empty(t, store.delivered)
	count, _ := ledger.Count()
	assert.Zero(t, count)
}

func TestCancel_UnknownIDIsNoOp(t *testing.T) {
	c, _, _ := newTestCoordinator()

	assert.NoError(t, c.Cancel(context.Background(), "ghost"))
	assert.NoError(t, c.Cancel(context.Background(), ""))
}

func TestReconcile_DropsIDsAbsentFromStore(t *testing.T) {
	c, store, ledger := newTestCoordinator()
	require.NoError(t, c.Schedule(context.Background(), armedTask("keep", coordNow.Add(2*time.Hour), 60)))
	// Tracked locally but the store has no trace of it.
	require.NoError(t, ledger.Put(domain.TrackedReminder{TaskID: "gone", FireAt: coordNow.Add(time.Hour)}))

	require.NoError(t, c.Reconcile(context.Background()))

	tracked, err := c.Tracked()
	require.NoError(t, err)
	require.Len(t, tracked, 1)
	assert.Equal(t, "keep", tracked[0].TaskID)
	assert.Equal(t, 1, store.badge)
}

func TestReconcile_DeliveredButUnacknowledgedStaysTracked(t *testing.T) {
	c, store, _ := newTestCoordinator()
	require.NoError(t, c.Schedule(context.Background(), armedTask("a", coordNow.Add(2*time.Hour), 60)))
	store.deliver("a")

	require.NoError(t, c.Reconcile(context.Background()))

	count, err := c.TrackedCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, store.badge)
}

func TestReconcile_SessionCancelIsAuthoritative(t *testing.T) {
	c, store, _ := newTestCoordinator()
	require.NoError(t, c.Schedule(context.Background(), armedTask("a", coordNow.Add(2*time.Hour), 60)))
	store.deliver("a")

	// The store refuses the cancel, leaving the delivered entry behind.
	store.cancelErr = errors.New("store unavailable")
	err := c.Cancel(context.Background(), "a")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeScheduling))
	assert.Contains(t, store.delivered, "a")

	store.cancelErr = nil
	require.NoError(t, c.Reconcile(context.Background()))

	count, _ := c.TrackedCount()
	assert.Zero(t, count)
	assert.Empty(t, store.delivered, "reconcile re-drives the cancellation")
	assert.Zero(t, store.badge)
}

func TestReconcile_LookupFailureAbortsPass(t *testing.T) {
	c, store, ledger := newTestCoordinator()
	require.NoError(t, ledger.Put(domain.TrackedReminder{TaskID: "a", FireAt: coordNow.Add(time.Hour)}))
	store.pendingErr = errors.New("store unavailable")

	err := c.Reconcile(context.Background())

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeScheduling))
	count, _ := ledger.Count()
	assert.Equal(t, 1, count, "no state is touched when a lookup fails")
}

func TestSchedule_DisabledNotificationsKeepIntentOnly(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	c := NewCoordinator(store, ledger, false, nil)
	c.now = func() time.Time { return coordNow }

	require.NoError(t, c.Schedule(context.Background(), armedTask("a", coordNow.Add(2*time.Hour), 60)))

	assert.Empty(t, store.pending, "nothing reaches the store without permission")
	tracked, _ := ledger.Get("a")
	assert.NotNil(t, tracked, "intent is still recorded")
}

func TestClearAll_EmptiesEverything(t *testing.T) {
	c, store, _ := newTestCoordinator()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.Schedule(context.Background(), armedTask(id, coordNow.Add(2*time.Hour), 30)))
	}
	store.deliver("b")

	require.NoError(t, c.ClearAll(context.Background()))

	assert.Empty(t, store.pending)
	assert.Empty(t, store.delivered)
	count, _ := c.TrackedCount()
	assert.Zero(t, count)
	assert.Zero(t, store.badge)
}
