package models

import "time"

// Status is the delivery state of a reminder.
type Status string

const (
	StatusPending Status = "PENDING"
	// StatusSending marks a reminder claimed by a dispatch cycle. A send
	// result always moves it to SENT, PENDING or EXHAUSTED.
	StatusSending   Status = "SENDING"
	StatusSent      Status = "SENT"
	StatusCanceled  Status = "CANCELED"
	StatusExhausted Status = "EXHAUSTED"
)

type RecurrenceType string

const (
	RecurrenceDaily        RecurrenceType = "DAILY"
	RecurrenceWeekly       RecurrenceType = "WEEKLY"
	RecurrenceSpecificDays RecurrenceType = "SPECIFIC_DAYS"
	RecurrenceMonthly      RecurrenceType = "MONTHLY"
)

// MaxRetries is the dispatch retry ceiling. Once reached the reminder moves
// to EXHAUSTED and is no longer selected; cleanup tooling deletes it later.
const MaxRetries = 3

// ExhaustedReason is recorded when dispatch gives up on a reminder.
const ExhaustedReason = "Tentativas de envio esgotadas"

// MessagePrefix marks stored message bodies as reminders.
const MessagePrefix = "🔔 *Lembrete:* "

// StatusAfterFailure decides where a claimed reminder goes after its
// retryCount-th consecutive failed dispatch: back to PENDING while under the
// retry ceiling, EXHAUSTED with the reason once it is reached.
func StatusAfterFailure(retryCount int) (Status, string) {
	if retryCount >= MaxRetries {
		return StatusExhausted, ExhaustedReason
	}
	return StatusPending, ""
}

type Reminder struct {
	ID           string     `json:"id"`
	Phone        string     `json:"phone"`
	Message      string     `json:"message"`
	ScheduledAt  time.Time  `json:"scheduled_at"` // literal clock, see NowLiteral
	Status       Status     `json:"status"`
	StatusReason string     `json:"status_reason,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	RetryCount   int        `json:"retry_count"`
	LastError    string     `json:"last_error,omitempty"`

	IsRecurring       bool           `json:"is_recurring"`
	RecurrenceType    RecurrenceType `json:"recurrence_type,omitempty"`
	RecurrencePattern string         `json:"recurrence_pattern,omitempty"`
	SeriesID          string         `json:"series_id,omitempty"`
	ParentID          string         `json:"parent_id,omitempty"` // empty on the series head
	EndDate           *time.Time     `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NowLiteral returns the current wall clock under the literal convention:
// the local calendar/time-of-day digits written into a UTC timestamp with no
// zone shift, truncated to the minute. Every stored scheduled_at uses the
// same convention, so comparisons stay meaningful.
func NowLiteral() time.Time {
	n := time.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), 0, 0, time.UTC)
}
