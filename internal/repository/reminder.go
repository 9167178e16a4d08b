package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ruanvictor/lembrazap/internal/database"
	"github.com/ruanvictor/lembrazap/internal/models"
)

const reminderColumns = `id, phone, message, scheduled_at, status, status_reason, sent_at,
	retry_count, last_error, is_recurring, recurrence_type, recurrence_pattern,
	series_id, parent_id, end_date, created_at`

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReminder(row scannable) (*models.Reminder, error) {
	r := &models.Reminder{}
	var statusReason, lastError, recType, recPattern, seriesID, parentID *string
	if err := row.Scan(
		&r.ID, &r.Phone, &r.Message, &r.ScheduledAt, &r.Status, &statusReason, &r.SentAt,
		&r.RetryCount, &lastError, &r.IsRecurring, &recType, &recPattern,
		&seriesID, &parentID, &r.EndDate, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	if statusReason != nil {
		r.StatusReason = *statusReason
	}
	if lastError != nil {
		r.LastError = *lastError
	}
	if recType != nil {
		r.RecurrenceType = models.RecurrenceType(*recType)
	}
	if recPattern != nil {
		r.RecurrencePattern = *recPattern
	}
	if seriesID != nil {
		r.SeriesID = *seriesID
	}
	if parentID != nil {
		r.ParentID = *parentID
	}
	return r, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	if reminder.Status == "" {
		reminder.Status = models.StatusPending
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (id, phone, message, scheduled_at, status, is_recurring,
		 recurrence_type, recurrence_pattern, series_id, parent_id, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		reminder.ID, reminder.Phone, reminder.Message, reminder.ScheduledAt, reminder.Status,
		reminder.IsRecurring, nullable(string(reminder.RecurrenceType)),
		nullable(reminder.RecurrencePattern), nullable(reminder.SeriesID),
		nullable(reminder.ParentID), reminder.EndDate,
	).Scan(&reminder.CreatedAt)
}

// FindPending returns the sender's not-yet-delivered reminders ordered by
// scheduled time. This ordering is the addressing scheme for the positional
// commands, so every caller must use it unmodified.
func (r *ReminderRepository) FindPending(ctx context.Context, phone string, limit int) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders WHERE phone = $1 AND status = $2
		 ORDER BY scheduled_at ASC LIMIT $3`,
		phone, models.StatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders WHERE scheduled_at <= $1 AND status = $2
		 ORDER BY scheduled_at ASC LIMIT $3`,
		now, models.StatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// Claim conditionally moves a reminder from PENDING to SENDING. Returns false
// when another cycle already claimed it, which is what makes overlapping poll
// cycles safe.
func (r *ReminderRepository) Claim(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET status = $1 WHERE id = $2 AND status = $3`,
		models.StatusSending, id, models.StatusPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseStuckSending returns reminders left in SENDING by an interrupted
// dispatch back to PENDING so the next cycle retries them. Run at startup,
// before any cycle claims.
func (r *ReminderRepository) ReleaseStuckSending(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET status = $1 WHERE status = $2`,
		models.StatusPending, models.StatusSending,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ReminderRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET status = $1, sent_at = $2, retry_count = 0 WHERE id = $3`,
		models.StatusSent, sentAt, id,
	)
	return err
}

// MarkFailed records a dispatch failure. The reminder returns to PENDING for
// the next cycle until the retry ceiling is reached, then moves to EXHAUSTED.
// The row is still in SENDING and exclusively ours here, so the retry bump
// and the state change can be separate statements.
func (r *ReminderRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	var retryCount int
	err := r.db.Pool.QueryRow(ctx,
		`UPDATE reminders SET retry_count = retry_count + 1, last_error = $1
		 WHERE id = $2 RETURNING retry_count`,
		truncateReason(reason), id,
	).Scan(&retryCount)
	if err != nil {
		return err
	}

	status, statusReason := models.StatusAfterFailure(retryCount)
	if statusReason == "" {
		_, err = r.db.Pool.Exec(ctx,
			`UPDATE reminders SET status = $1 WHERE id = $2`, status, id)
		return err
	}
	_, err = r.db.Pool.Exec(ctx,
		`UPDATE reminders SET status = $1, status_reason = $2 WHERE id = $3`,
		status, statusReason, id,
	)
	return err
}

// truncateReason caps last_error at the column width. VARCHAR(255) counts
// characters, so cut on runes rather than bytes.
func truncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) > 255 {
		return string(runes[:255])
	}
	return reason
}

func (r *ReminderRepository) UpdateMessage(ctx context.Context, id string, message string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET message = $1 WHERE id = $2`,
		message, id,
	)
	return err
}

func (r *ReminderRepository) UpdateScheduledAt(ctx context.Context, id string, scheduledAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET scheduled_at = $1 WHERE id = $2`,
		scheduledAt, id,
	)
	return err
}

func (r *ReminderRepository) Cancel(ctx context.Context, id string, reason string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET status = $1, status_reason = $2 WHERE id = $3 AND status = $4`,
		models.StatusCanceled, reason, id, models.StatusPending,
	)
	return err
}

// CancelSeries cancels every still-pending occurrence of a series in one
// batch. Already-sent occurrences are untouched.
func (r *ReminderRepository) CancelSeries(ctx context.Context, seriesID string, reason string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET status = $1, status_reason = $2
		 WHERE series_id = $3 AND status = $4`,
		models.StatusCanceled, reason, seriesID, models.StatusPending,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ReminderRepository) FindRecentlySentRecurring(ctx context.Context, since time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE is_recurring = TRUE AND status = $1 AND sent_at >= $2 AND recurrence_type IS NOT NULL`,
		models.StatusSent, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// ExistsInSeriesBetween reports whether the series already has an occurrence
// scheduled inside [from, to). Guards materialization against duplicates.
func (r *ReminderRepository) ExistsInSeriesBetween(ctx context.Context, seriesID string, from, to time.Time) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reminders
		 WHERE series_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3)`,
		seriesID, from, to,
	).Scan(&exists)
	return exists, err
}

func (r *ReminderRepository) FindAll(ctx context.Context) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminders WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
