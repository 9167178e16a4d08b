package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindHelp
	KindCreate
	KindInvalidFormat
	KindList
	KindCancel
	KindEdit
	KindReschedule
)

// Command is one classified inbound message. For the positional commands,
// Index == 0 means the shape matched but the argument failed validation,
// which callers report differently from an unrecognized message.
type Command struct {
	Kind Kind

	// Create
	Message       string
	ScheduledAt   time.Time
	RolledForward bool
	Recurrence    Recurrence

	// Cancel / Edit / Reschedule
	Index      int
	Confirmed  bool
	NewMessage string
}

var (
	reminderKeywordRe = regexp.MustCompile(`(?i)#lembrete\s*`)
	cancelRe          = regexp.MustCompile(`(?i)^#cancelar\s+(\d+)(\s+confirmar)?$`)
	editRe            = regexp.MustCompile(`(?i)^#editar\s+(\d+)\s+(.+)$`)
	rescheduleRe      = regexp.MustCompile(`(?i)^#reagendar\s+(\d+)\s+(.+)$`)
)

// Parse classifies trimmed, case-insensitive text into exactly one command.
// The shapes are mutually exclusive by construction; anything else is
// unrecognized and gets no reply.
func Parse(text string, now time.Time) Command {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if lower == "#lembrar" {
		return Command{Kind: KindList}
	}

	if m := cancelRe.FindStringSubmatch(trimmed); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n < 1 {
			return Command{Kind: KindCancel}
		}
		return Command{Kind: KindCancel, Index: n, Confirmed: m[2] != ""}
	}

	if m := editRe.FindStringSubmatch(trimmed); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n < 1 {
			return Command{Kind: KindEdit}
		}
		return Command{Kind: KindEdit, Index: n, NewMessage: strings.TrimSpace(m[2])}
	}

	if m := rescheduleRe.FindStringSubmatch(trimmed); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n < 1 {
			return Command{Kind: KindReschedule}
		}
		t, rolled, ok := ResolveDateTimeOnly(m[2], now)
		if !ok {
			// shape matched, date/time tail did not
			return Command{Kind: KindReschedule, Index: n}
		}
		return Command{Kind: KindReschedule, Index: n, ScheduledAt: t, RolledForward: rolled}
	}

	if strings.Contains(lower, "#lembrete") {
		return parseCreate(trimmed, now)
	}

	return Command{Kind: KindUnrecognized}
}

// parseCreate strips the keyword, runs the recurrence detector over the tail
// and then the datetime resolver over what is left.
func parseCreate(text string, now time.Time) Command {
	loc := reminderKeywordRe.FindStringIndex(text)
	tail := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	if tail == "" {
		return Command{Kind: KindHelp}
	}

	rec, cleaned := DetectRecurrence(tail)
	res, ok := ResolveDateTime(cleaned, now)
	if !ok {
		return Command{Kind: KindInvalidFormat}
	}

	return Command{
		Kind:          KindCreate,
		Message:       res.Message,
		ScheduledAt:   res.Time,
		RolledForward: res.RolledForward,
		Recurrence:    rec,
	}
}
