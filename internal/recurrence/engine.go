package recurrence

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ruanvictor/lembrazap/internal/models"
	"github.com/ruanvictor/lembrazap/pkg/logger"
)

// SeriesCancelReason is recorded on every occurrence cancelled through the
// series path, distinguishing it from a single-reminder cancel.
const SeriesCancelReason = "Série cancelada pelo usuário"

// duplicateTolerance bounds the window checked before materializing the next
// occurrence, so re-processing the same sent event never creates duplicates.
const duplicateTolerance = time.Hour

type Store interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	CancelSeries(ctx context.Context, seriesID string, reason string) (int64, error)
	FindRecentlySentRecurring(ctx context.Context, since time.Time) ([]*models.Reminder, error)
	ExistsInSeriesBetween(ctx context.Context, seriesID string, from, to time.Time) (bool, error)
}

type Engine struct {
	store Store
}

func New(store Store) *Engine {
	return &Engine{store: store}
}

// NextOccurrence computes the occurrence after current for the given
// recurrence type. Returns nil when the type is unknown (series terminal).
func NextOccurrence(current time.Time, recurrenceType models.RecurrenceType, pattern string) *time.Time {
	switch recurrenceType {
	case models.RecurrenceDaily:
		next := current.AddDate(0, 0, 1)
		return &next

	case models.RecurrenceWeekly:
		if pattern == "1" {
			next := current.AddDate(0, 0, 7)
			return &next
		}
		target, err := strconv.Atoi(pattern)
		if err != nil {
			return nil
		}
		delta := target - int(current.Weekday())
		if delta <= 0 {
			delta += 7
		}
		next := current.AddDate(0, 0, delta)
		return &next

	case models.RecurrenceSpecificDays:
		days := parseDayList(pattern)
		if len(days) == 0 {
			return nil
		}
		currentDay := int(current.Weekday())
		for _, day := range days {
			if day > currentDay {
				next := current.AddDate(0, 0, day-currentDay)
				return &next
			}
		}
		// wrap to the first listed day next week
		next := current.AddDate(0, 0, 7-currentDay+days[0])
		return &next

	case models.RecurrenceMonthly:
		year, month, day := current.Date()
		hour, minute, sec := current.Clock()
		next := time.Date(year, month+1, day, hour, minute, sec, 0, current.Location())
		if next.Day() != day {
			// target month is shorter, clamp to its last day
			next = time.Date(year, month+2, 0, hour, minute, sec, 0, current.Location())
		}
		return &next

	default:
		return nil
	}
}

// MaterializeNext creates the next occurrence of a recurring reminder's
// series. Returns (nil, nil) when the series terminates: unknown type, or
// the computed date falls past the series end date.
func (e *Engine) MaterializeNext(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	if !reminder.IsRecurring || reminder.RecurrenceType == "" || reminder.RecurrencePattern == "" {
		return nil, nil
	}

	next := NextOccurrence(reminder.ScheduledAt, reminder.RecurrenceType, reminder.RecurrencePattern)
	if next == nil {
		return nil, nil
	}

	if reminder.EndDate != nil && next.After(*reminder.EndDate) {
		logger.Info("recurring series reached its end date",
			zap.String("series_id", reminder.SeriesID))
		return nil, nil
	}

	parentID := reminder.ParentID
	if parentID == "" {
		parentID = reminder.ID
	}

	occurrence := &models.Reminder{
		Phone:             reminder.Phone,
		Message:           reminder.Message,
		ScheduledAt:       *next,
		Status:            models.StatusPending,
		IsRecurring:       true,
		RecurrenceType:    reminder.RecurrenceType,
		RecurrencePattern: reminder.RecurrencePattern,
		SeriesID:          reminder.SeriesID,
		ParentID:          parentID,
		EndDate:           reminder.EndDate,
	}

	if err := e.store.Create(ctx, occurrence); err != nil {
		return nil, fmt.Errorf("failed to create next occurrence: %w", err)
	}

	logger.Info("next occurrence created",
		zap.String("id", occurrence.ID),
		zap.String("series_id", occurrence.SeriesID),
		zap.Time("scheduled_at", occurrence.ScheduledAt))
	return occurrence, nil
}

// ProcessRecentlySent walks recurring reminders sent inside the last day and
// materializes the follow-up occurrence for any series that does not already
// have one near the computed date. Safe to invoke repeatedly.
func (e *Engine) ProcessRecentlySent(ctx context.Context, now time.Time) error {
	since := now.AddDate(0, 0, -1)
	reminders, err := e.store.FindRecentlySentRecurring(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to load recently sent recurring reminders: %w", err)
	}

	for _, reminder := range reminders {
		next := NextOccurrence(reminder.ScheduledAt, reminder.RecurrenceType, reminder.RecurrencePattern)
		if next == nil {
			continue
		}

		exists, err := e.store.ExistsInSeriesBetween(ctx, reminder.SeriesID, *next, next.Add(duplicateTolerance))
		if err != nil {
			logger.Error("failed to check for existing occurrence",
				zap.String("series_id", reminder.SeriesID), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		if _, err := e.MaterializeNext(ctx, reminder); err != nil {
			logger.Error("failed to materialize next occurrence",
				zap.String("id", reminder.ID), zap.Error(err))
		}
	}
	return nil
}

// CancelSeries cancels every pending occurrence of a series and returns how
// many were affected. Sent occurrences stay untouched.
func (e *Engine) CancelSeries(ctx context.Context, seriesID string) (int64, error) {
	count, err := e.store.CancelSeries(ctx, seriesID, SeriesCancelReason)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel series: %w", err)
	}
	logger.Info("recurring series cancelled",
		zap.String("series_id", seriesID), zap.Int64("count", count))
	return count, nil
}

func parseDayList(pattern string) []int {
	var days []int
	for _, part := range strings.Split(pattern, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || day < 0 || day > 6 {
			continue
		}
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}
