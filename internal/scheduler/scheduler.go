// Package scheduler polls for due reminders and dispatches them to WhatsApp.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ruanvictor/lembrazap/internal/models"
	"github.com/ruanvictor/lembrazap/pkg/logger"
)

const dueBatchSize = 100

// catchUpEvery is how many poll cycles pass between recurrence catch-up
// sweeps. The sweep only repairs series whose follow-up creation failed, so
// it runs at a slower cadence than dispatch.
const catchUpEvery = 10

type Store interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error)
	Claim(ctx context.Context, id string) (bool, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	ReleaseStuckSending(ctx context.Context) (int64, error)
}

type Gateway interface {
	SendText(ctx context.Context, number, text string) error
}

type RecurrenceEngine interface {
	MaterializeNext(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	ProcessRecentlySent(ctx context.Context, now time.Time) error
}

type Scheduler struct {
	store       Store
	gateway     Gateway
	recurrence  RecurrenceEngine
	interval    time.Duration
	sendTimeout time.Duration
	now         func() time.Time

	// running guards against overlapping cycles when a cycle outlasts the
	// poll interval.
	running  sync.Mutex
	notifyCh chan struct{}
	cycles   int
}

func New(store Store, gateway Gateway, recurrence RecurrenceEngine, interval, sendTimeout time.Duration) *Scheduler {
	return &Scheduler{
		store:       store,
		gateway:     gateway,
		recurrence:  recurrence,
		interval:    interval,
		sendTimeout: sendTimeout,
		now:         models.NowLiteral,
		notifyCh:    make(chan struct{}, 1),
	}
}

// SetClock overrides the reference clock. Tests use this to pin "now".
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start runs the poll loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("scheduler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// claims stranded by a previous run would otherwise stay invisible to
	// FindDue forever
	if released, err := s.store.ReleaseStuckSending(ctx); err != nil {
		logger.Error("failed to release stuck claims", zap.Error(err))
	} else if released > 0 {
		logger.Info("released stuck claims", zap.Int64("count", released))
	}

	s.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		case <-s.notifyCh:
			s.RunCycle(ctx)
		}
	}
}

// Notify requests an immediate poll cycle, coalescing with any already
// pending request.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// RunCycle executes one dispatch pass. If a previous cycle is still running
// the call returns immediately.
func (s *Scheduler) RunCycle(ctx context.Context) {
	if !s.running.TryLock() {
		logger.Debug("previous cycle still running, skipping")
		return
	}
	defer s.running.Unlock()

	now := s.now()
	due, err := s.store.FindDue(ctx, now, dueBatchSize)
	if err != nil {
		logger.Error("failed to load due reminders", zap.Error(err))
		return
	}

	for _, reminder := range due {
		if ctx.Err() != nil {
			return
		}
		s.dispatch(ctx, reminder)
	}

	s.cycles++
	if s.cycles%catchUpEvery == 0 {
		if err := s.recurrence.ProcessRecentlySent(ctx, now); err != nil {
			logger.Error("recurrence catch-up failed", zap.Error(err))
		}
	}
}

// dispatch sends one reminder. The claim transition is what makes delivery
// single-shot: a reminder already picked up by another cycle loses the claim
// and is skipped here.
func (s *Scheduler) dispatch(ctx context.Context, reminder *models.Reminder) {
	claimed, err := s.store.Claim(ctx, reminder.ID)
	if err != nil {
		logger.Error("failed to claim reminder", zap.String("id", reminder.ID), zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	err = s.gateway.SendText(sendCtx, reminder.Phone, reminder.Message)
	cancel()

	if err != nil {
		logger.Error("failed to send reminder",
			zap.String("id", reminder.ID),
			zap.Int("retry_count", reminder.RetryCount),
			zap.Error(err))
		if markErr := s.store.MarkFailed(ctx, reminder.ID, err.Error()); markErr != nil {
			logger.Error("failed to record send failure", zap.String("id", reminder.ID), zap.Error(markErr))
		}
		return
	}

	if err := s.store.MarkSent(ctx, reminder.ID, s.now()); err != nil {
		logger.Error("failed to mark reminder sent", zap.String("id", reminder.ID), zap.Error(err))
		return
	}
	logger.Info("reminder sent", zap.String("id", reminder.ID), zap.String("phone", reminder.Phone))

	if reminder.IsRecurring {
		if _, err := s.recurrence.MaterializeNext(ctx, reminder); err != nil {
			logger.Error("failed to create next occurrence",
				zap.String("id", reminder.ID), zap.Error(err))
		}
	}
}
