// Package commands executes parsed chat commands against the reminder store.
//
// Every positional reference (#N) is resolved against a freshly fetched
// pending list, ordered by scheduled time ascending, capped at pendingLimit.
// Handlers never cache that list between messages; the two-step cancel is
// stateless and re-resolves the index on confirmation.
package commands

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruanvictor/lembrazap/internal/format"
	"github.com/ruanvictor/lembrazap/internal/models"
	"github.com/ruanvictor/lembrazap/internal/parser"
	"github.com/ruanvictor/lembrazap/pkg/logger"
)

const pendingLimit = 20

const cancelReason = "Cancelado pelo usuário"

type Store interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	FindPending(ctx context.Context, phone string, limit int) ([]*models.Reminder, error)
	UpdateMessage(ctx context.Context, id string, message string) error
	UpdateScheduledAt(ctx context.Context, id string, scheduledAt time.Time) error
	Cancel(ctx context.Context, id string, reason string) error
}

type SeriesCanceller interface {
	CancelSeries(ctx context.Context, seriesID string) (int64, error)
}

// Result is a command outcome. Reply=false means no response at all is sent
// back (unrecognized messages stay silent).
type Result struct {
	Success  bool
	Reply    bool
	Response string
}

type Manager struct {
	store  Store
	series SeriesCanceller
	now    func() time.Time
}

func NewManager(store Store, series SeriesCanceller) *Manager {
	return &Manager{store: store, series: series, now: models.NowLiteral}
}

// SetClock overrides the reference clock. Tests use this to pin "now".
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Execute classifies text and runs the matching command for the sender.
// Failures never escape: they degrade to a formatted reply.
func (m *Manager) Execute(ctx context.Context, phone string, text string) Result {
	cmd := parser.Parse(text, m.now())

	switch cmd.Kind {
	case parser.KindHelp:
		return Result{Success: true, Reply: true, Response: format.Help()}
	case parser.KindInvalidFormat:
		return Result{Reply: true, Response: format.InvalidFormat()}
	case parser.KindCreate:
		return m.handleCreate(ctx, phone, cmd)
	case parser.KindList:
		return m.handleList(ctx, phone)
	case parser.KindCancel:
		return m.handleCancel(ctx, phone, cmd)
	case parser.KindEdit:
		return m.handleEdit(ctx, phone, cmd)
	case parser.KindReschedule:
		return m.handleReschedule(ctx, phone, cmd)
	default:
		return Result{}
	}
}

func (m *Manager) handleCreate(ctx context.Context, phone string, cmd parser.Command) Result {
	normalized, err := models.NormalizePhone(phone)
	if err != nil {
		return Result{Reply: true, Response: format.InvalidPhone()}
	}

	message := cmd.Message
	if !strings.HasPrefix(message, models.MessagePrefix) {
		message = models.MessagePrefix + message
	}

	reminder := &models.Reminder{
		Phone:       normalized,
		Message:     message,
		ScheduledAt: cmd.ScheduledAt,
		Status:      models.StatusPending,
	}
	if cmd.Recurrence.IsRecurring {
		reminder.IsRecurring = true
		reminder.RecurrenceType = cmd.Recurrence.Type
		reminder.RecurrencePattern = cmd.Recurrence.Pattern
		reminder.SeriesID = uuid.NewString()
	}

	if err := m.store.Create(ctx, reminder); err != nil {
		logger.Error("failed to create reminder", zap.String("phone", normalized), zap.Error(err))
		return Result{Reply: true, Response: format.InternalError()}
	}

	logger.Info("reminder created",
		zap.String("id", reminder.ID),
		zap.Time("scheduled_at", reminder.ScheduledAt),
		zap.Bool("recurring", reminder.IsRecurring))
	return Result{Success: true, Reply: true, Response: format.Created(reminder, cmd.RolledForward)}
}

func (m *Manager) handleList(ctx context.Context, phone string) Result {
	reminders, err := m.fetchPending(ctx, phone)
	if err != nil {
		return Result{Reply: true, Response: format.GenericError("listar")}
	}
	if len(reminders) == 0 {
		return Result{Success: true, Reply: true, Response: format.NoReminders()}
	}
	return Result{Success: true, Reply: true, Response: format.ReminderList(reminders)}
}

func (m *Manager) handleCancel(ctx context.Context, phone string, cmd parser.Command) Result {
	if cmd.Index < 1 {
		return Result{Reply: true, Response: format.CancelUsage()}
	}

	reminders, err := m.fetchPending(ctx, phone)
	if err != nil {
		return Result{Reply: true, Response: format.GenericError("cancelar")}
	}
	if len(reminders) == 0 {
		return Result{Reply: true, Response: format.NoPendingFor("cancelar")}
	}
	if cmd.Index > len(reminders) {
		return Result{Reply: true, Response: format.InvalidIndex(len(reminders))}
	}

	target := reminders[cmd.Index-1]

	if !cmd.Confirmed {
		// no mutation: the confirmation token must come back in the
		// same command text that takes effect
		return Result{Success: true, Reply: true, Response: format.ConfirmCancel(cmd.Index, target)}
	}

	if target.IsRecurring && target.SeriesID != "" {
		count, err := m.series.CancelSeries(ctx, target.SeriesID)
		if err != nil {
			logger.Error("failed to cancel series", zap.String("series_id", target.SeriesID), zap.Error(err))
			return Result{Reply: true, Response: format.GenericError("cancelar")}
		}
		return Result{Success: true, Reply: true, Response: format.SeriesCanceled(cmd.Index, count)}
	}

	if err := m.store.Cancel(ctx, target.ID, cancelReason); err != nil {
		logger.Error("failed to cancel reminder", zap.String("id", target.ID), zap.Error(err))
		return Result{Reply: true, Response: format.GenericError("cancelar")}
	}
	logger.Info("reminder cancelled", zap.String("id", target.ID))
	return Result{Success: true, Reply: true, Response: format.Canceled(cmd.Index)}
}

func (m *Manager) handleEdit(ctx context.Context, phone string, cmd parser.Command) Result {
	if cmd.Index < 1 || cmd.NewMessage == "" {
		return Result{Reply: true, Response: format.EditUsage()}
	}

	reminders, err := m.fetchPending(ctx, phone)
	if err != nil {
		return Result{Reply: true, Response: format.GenericError("editar")}
	}
	if len(reminders) == 0 {
		return Result{Reply: true, Response: format.NoPendingFor("editar")}
	}
	if cmd.Index > len(reminders) {
		return Result{Reply: true, Response: format.InvalidIndex(len(reminders))}
	}

	target := reminders[cmd.Index-1]
	newMessage := cmd.NewMessage
	if !strings.HasPrefix(newMessage, models.MessagePrefix) {
		newMessage = models.MessagePrefix + newMessage
	}

	if err := m.store.UpdateMessage(ctx, target.ID, newMessage); err != nil {
		logger.Error("failed to edit reminder", zap.String("id", target.ID), zap.Error(err))
		return Result{Reply: true, Response: format.GenericError("editar")}
	}
	logger.Info("reminder edited", zap.String("id", target.ID))
	return Result{Success: true, Reply: true,
		Response: format.Edited(cmd.Index, target.Message, cmd.NewMessage, target.ScheduledAt)}
}

func (m *Manager) handleReschedule(ctx context.Context, phone string, cmd parser.Command) Result {
	if cmd.Index < 1 {
		return Result{Reply: true, Response: format.RescheduleUsage()}
	}
	if cmd.ScheduledAt.IsZero() {
		return Result{Reply: true, Response: format.InvalidFormat()}
	}

	reminders, err := m.fetchPending(ctx, phone)
	if err != nil {
		return Result{Reply: true, Response: format.GenericError("reagendar")}
	}
	if len(reminders) == 0 {
		return Result{Reply: true, Response: format.NoPendingFor("reagendar")}
	}
	if cmd.Index > len(reminders) {
		return Result{Reply: true, Response: format.InvalidIndex(len(reminders))}
	}

	target := reminders[cmd.Index-1]
	if err := m.store.UpdateScheduledAt(ctx, target.ID, cmd.ScheduledAt); err != nil {
		logger.Error("failed to reschedule reminder", zap.String("id", target.ID), zap.Error(err))
		return Result{Reply: true, Response: format.GenericError("reagendar")}
	}
	logger.Info("reminder rescheduled",
		zap.String("id", target.ID), zap.Time("scheduled_at", cmd.ScheduledAt))
	return Result{Success: true, Reply: true,
		Response: format.Rescheduled(cmd.Index, target.Message, target.ScheduledAt, cmd.ScheduledAt, cmd.RolledForward)}
}

// CreateDirect persists a reminder from the REST surface, bypassing the chat
// grammar. The phone and prefix rules still apply.
func (m *Manager) CreateDirect(ctx context.Context, phone, message string, scheduledAt time.Time) (*models.Reminder, error) {
	normalized, err := models.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(message, models.MessagePrefix) {
		message = models.MessagePrefix + message
	}
	reminder := &models.Reminder{
		Phone:       normalized,
		Message:     message,
		ScheduledAt: scheduledAt,
		Status:      models.StatusPending,
	}
	if err := m.store.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (m *Manager) fetchPending(ctx context.Context, phone string) ([]*models.Reminder, error) {
	normalized, err := models.NormalizePhone(phone)
	if err != nil {
		normalized = phone
	}
	reminders, err := m.store.FindPending(ctx, normalized, pendingLimit)
	if err != nil {
		logger.Error("failed to fetch pending reminders", zap.String("phone", normalized), zap.Error(err))
		return nil, err
	}
	return reminders, nil
}
