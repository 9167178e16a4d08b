package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanvictor/lembrazap/internal/models"
)

var refNow = time.Date(2025, 7, 11, 15, 30, 0, 0, time.UTC)

// fakeStore mirrors the repository's state machine: claims require PENDING,
// failures bump the retry count and apply the same threshold decision.
type fakeStore struct {
	reminders []*models.Reminder

	statuses  map[string]models.Status
	retries   map[string]int
	sent      []string
	failed    map[string]string
	released  int
	lastLimit int
	claimErr  error
}

func newStoreWith(reminders ...*models.Reminder) *fakeStore {
	statuses := make(map[string]models.Status)
	for _, r := range reminders {
		statuses[r.ID] = models.StatusPending
	}
	return &fakeStore{
		reminders: reminders,
		statuses:  statuses,
		retries:   make(map[string]int),
		failed:    make(map[string]string),
	}
}

func (f *fakeStore) FindDue(_ context.Context, _ time.Time, limit int) ([]*models.Reminder, error) {
	f.lastLimit = limit
	var due []*models.Reminder
	for _, r := range f.reminders {
		if f.statuses[r.ID] == models.StatusPending {
			due = append(due, r)
		}
	}
	return due, nil
}

func (f *fakeStore) Claim(_ context.Context, id string) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.statuses[id] != models.StatusPending {
		return false, nil
	}
	f.statuses[id] = models.StatusSending
	return true, nil
}

func (f *fakeStore) MarkSent(_ context.Context, id string, _ time.Time) error {
	f.statuses[id] = models.StatusSent
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, id string, reason string) error {
	f.retries[id]++
	f.failed[id] = reason
	status, _ := models.StatusAfterFailure(f.retries[id])
	f.statuses[id] = status
	return nil
}

func (f *fakeStore) ReleaseStuckSending(_ context.Context) (int64, error) {
	var count int64
	for id, status := range f.statuses {
		if status == models.StatusSending {
			f.statuses[id] = models.StatusPending
			count++
		}
	}
	f.released++
	return count, nil
}

type fakeGateway struct {
	sent    []string
	sendErr error
}

func (f *fakeGateway) SendText(_ context.Context, number, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, number)
	return nil
}

type fakeEngine struct {
	materialized []string
	catchUps     int
}

func (f *fakeEngine) MaterializeNext(_ context.Context, r *models.Reminder) (*models.Reminder, error) {
	f.materialized = append(f.materialized, r.ID)
	return nil, nil
}

func (f *fakeEngine) ProcessRecentlySent(_ context.Context, _ time.Time) error {
	f.catchUps++
	return nil
}

func newScheduler(store Store, gw Gateway, engine RecurrenceEngine) *Scheduler {
	s := New(store, gw, engine, time.Minute, time.Second)
	s.SetClock(func() time.Time { return refNow })
	return s
}

func due(id string) *models.Reminder {
	return &models.Reminder{
		ID:          id,
		Phone:       "5511999999999",
		Message:     models.MessagePrefix + "Lembrete " + id,
		ScheduledAt: refNow.Add(-time.Minute),
		Status:      models.StatusPending,
	}
}

func TestRunCycleSendsDueReminders(t *testing.T) {
	store := newStoreWith(due("a"), due("b"))
	gw := &fakeGateway{}
	engine := &fakeEngine{}
	s := newScheduler(store, gw, engine)

	s.RunCycle(context.Background())

	assert.Equal(t, []string{"a", "b"}, store.sent)
	assert.Len(t, gw.sent, 2)
	assert.Empty(t, store.failed)
	assert.Empty(t, engine.materialized)
	assert.Equal(t, 100, store.lastLimit)
}

func TestRunCycleSkipsUnclaimedReminders(t *testing.T) {
	store := newStoreWith(due("a"))
	gw := &fakeGateway{}
	s := newScheduler(store, gw, &fakeEngine{})

	// another cycle holds the claim
	dueList, err := store.FindDue(context.Background(), refNow, 1)
	require.NoError(t, err)
	require.Len(t, dueList, 1)
	store.statuses["a"] = models.StatusSending

	s.dispatch(context.Background(), dueList[0])

	assert.Empty(t, gw.sent)
	assert.Empty(t, store.sent)
}

func TestRunCycleClaimIsSingleShot(t *testing.T) {
	store := newStoreWith(due("a"))
	gw := &fakeGateway{}
	s := newScheduler(store, gw, &fakeEngine{})

	s.RunCycle(context.Background())
	s.RunCycle(context.Background())

	assert.Len(t, gw.sent, 1)
	assert.Equal(t, []string{"a"}, store.sent)
}

func TestRunCycleRecordsSendFailure(t *testing.T) {
	store := newStoreWith(due("a"))
	gw := &fakeGateway{sendErr: errors.New("send failed: status 500")}
	s := newScheduler(store, gw, &fakeEngine{})

	s.RunCycle(context.Background())

	assert.Empty(t, store.sent)
	assert.Equal(t, "send failed: status 500", store.failed["a"])
}

func TestThirdFailureExhaustsReminder(t *testing.T) {
	store := newStoreWith(due("a"))
	gw := &fakeGateway{sendErr: errors.New("send failed: status 500")}
	s := newScheduler(store, gw, &fakeEngine{})

	for i := 0; i < models.MaxRetries+2; i++ {
		s.RunCycle(context.Background())
	}

	// exactly three attempts, then the reminder leaves the due set but
	// stays in the store
	assert.Equal(t, models.MaxRetries, store.retries["a"])
	assert.Equal(t, models.StatusExhausted, store.statuses["a"])
	assert.Equal(t, "send failed: status 500", store.failed["a"])
	assert.Len(t, store.reminders, 1)

	remaining, err := store.FindDue(context.Background(), refNow, dueBatchSize)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestStartReleasesStuckClaims(t *testing.T) {
	store := newStoreWith(due("a"))
	store.statuses["a"] = models.StatusSending
	s := newScheduler(store, &fakeGateway{}, &fakeEngine{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)

	assert.Equal(t, 1, store.released)
	assert.Equal(t, models.StatusPending, store.statuses["a"])
}

func TestRunCycleMaterializesRecurringAfterSend(t *testing.T) {
	recurring := due("a")
	recurring.IsRecurring = true
	recurring.RecurrenceType = models.RecurrenceDaily
	recurring.RecurrencePattern = "1"
	recurring.SeriesID = "series-1"

	store := newStoreWith(recurring)
	engine := &fakeEngine{}
	s := newScheduler(store, &fakeGateway{}, engine)

	s.RunCycle(context.Background())

	assert.Equal(t, []string{"a"}, store.sent)
	assert.Equal(t, []string{"a"}, engine.materialized)
}

func TestRunCycleDoesNotMaterializeOnFailure(t *testing.T) {
	recurring := due("a")
	recurring.IsRecurring = true

	store := newStoreWith(recurring)
	engine := &fakeEngine{}
	s := newScheduler(store, &fakeGateway{sendErr: errors.New("boom")}, engine)

	s.RunCycle(context.Background())

	assert.Empty(t, engine.materialized)
}

func TestRecurrenceCatchUpRunsPeriodically(t *testing.T) {
	store := newStoreWith()
	engine := &fakeEngine{}
	s := newScheduler(store, &fakeGateway{}, engine)

	for i := 0; i < catchUpEvery*2; i++ {
		s.RunCycle(context.Background())
	}
	assert.Equal(t, 2, engine.catchUps)
}

func TestNotifyCoalesces(t *testing.T) {
	s := newScheduler(newStoreWith(), &fakeGateway{}, &fakeEngine{})

	// a second notify while one is pending must not block
	s.Notify()
	s.Notify()

	select {
	case <-s.notifyCh:
	default:
		require.Fail(t, "expected a pending notification")
	}
	select {
	case <-s.notifyCh:
		require.Fail(t, "expected notifications to coalesce")
	default:
	}
}
