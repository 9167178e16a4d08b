package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ResolvedDateTime is the result of extracting a date/time expression from
// the front of a command tail. Time is a literal-clock timestamp: the digits
// the user typed, written into UTC fields with no zone shift.
type ResolvedDateTime struct {
	Time          time.Time
	RolledForward bool
	Message       string
}

var (
	timeTokenRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	dateTokenRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`)
)

// 0=Sunday .. 6=Saturday
var dayWords = map[string]int{
	"domingo": 0, "segunda": 1, "terça": 2, "quarta": 3,
	"quinta": 4, "sexta": 5, "sábado": 6,
}

// ResolveDateTime parses the supported date/time forms from the front of tail
// and returns the literal timestamp plus the remaining message text. Tried in
// order, first match wins:
//
//	HH:MM DD/MM[/YYYY] <mensagem>
//	HH:MM <mensagem>                    (today, rolls forward if already past)
//	DD/MM[/YYYY] HH:MM <mensagem>
//	amanhã|hoje|<dia da semana> HH:MM <mensagem>
//
// Explicit-date forms are stored verbatim even when already past; only the
// implicit-today forms roll forward and set RolledForward.
func ResolveDateTime(tail string, now time.Time) (ResolvedDateTime, bool) {
	res, ok := resolve(tail, now)
	if !ok {
		return ResolvedDateTime{}, false
	}
	if !validMessage(res.Message) {
		return ResolvedDateTime{}, false
	}
	return res, true
}

// ResolveDateTimeOnly parses a tail that consists of a date/time expression
// and nothing else, as used by #reagendar.
func ResolveDateTimeOnly(tail string, now time.Time) (time.Time, bool, bool) {
	res, ok := resolve(tail, now)
	if !ok || res.Message != "" {
		return time.Time{}, false, false
	}
	return res.Time, res.RolledForward, true
}

func resolve(tail string, now time.Time) (ResolvedDateTime, bool) {
	tok1, rest1 := splitToken(strings.TrimSpace(tail))
	if tok1 == "" {
		return ResolvedDateTime{}, false
	}
	tok2, rest2 := splitToken(rest1)

	if hm := timeTokenRe.FindStringSubmatch(tok1); hm != nil {
		hour, _ := strconv.Atoi(hm[1])
		minute, _ := strconv.Atoi(hm[2])

		if dm := dateTokenRe.FindStringSubmatch(tok2); dm != nil {
			// HH:MM DD/MM[/YYYY]
			t, ok := literalDate(dm, hour, minute, now)
			return ResolvedDateTime{Time: t, Message: rest2}, ok
		}

		// HH:MM, implicit today
		t, ok := makeLiteral(now.Year(), now.Month(), now.Day(), hour, minute)
		if !ok {
			return ResolvedDateTime{}, false
		}
		rolled := false
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
			rolled = true
		}
		return ResolvedDateTime{Time: t, RolledForward: rolled, Message: rest1}, true
	}

	if dm := dateTokenRe.FindStringSubmatch(tok1); dm != nil {
		hm := timeTokenRe.FindStringSubmatch(tok2)
		if hm == nil {
			return ResolvedDateTime{}, false
		}
		hour, _ := strconv.Atoi(hm[1])
		minute, _ := strconv.Atoi(hm[2])
		t, ok := literalDate(dm, hour, minute, now)
		return ResolvedDateTime{Time: t, Message: rest2}, ok
	}

	word := strings.ToLower(tok1)
	if word == "hoje" || word == "amanhã" || isDayWord(word) {
		hm := timeTokenRe.FindStringSubmatch(tok2)
		if hm == nil {
			return ResolvedDateTime{}, false
		}
		hour, _ := strconv.Atoi(hm[1])
		minute, _ := strconv.Atoi(hm[2])
		t, ok := makeLiteral(now.Year(), now.Month(), now.Day(), hour, minute)
		if !ok {
			return ResolvedDateTime{}, false
		}

		rolled := false
		switch {
		case word == "hoje":
			if !t.After(now) {
				t = t.AddDate(0, 0, 1)
				rolled = true
			}
		case word == "amanhã":
			t = t.AddDate(0, 0, 1)
		default:
			target := dayWords[word]
			delta := target - int(now.Weekday())
			if delta <= 0 {
				delta += 7 // never same-day, always the next occurrence
			}
			t = t.AddDate(0, 0, delta)
		}
		return ResolvedDateTime{Time: t, RolledForward: rolled, Message: rest2}, true
	}

	return ResolvedDateTime{}, false
}

func literalDate(dm []string, hour, minute int, now time.Time) (time.Time, bool) {
	day, _ := strconv.Atoi(dm[1])
	month, _ := strconv.Atoi(dm[2])
	year := now.Year()
	if dm[3] != "" {
		year, _ = strconv.Atoi(dm[3])
	}
	return makeLiteral(year, time.Month(month), day, hour, minute)
}

// makeLiteral builds the literal timestamp and rejects any combination that
// does not denormalize to the same digits (31/02, 25:00 and the like).
func makeLiteral(year int, month time.Month, day, hour, minute int) (time.Time, bool) {
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute {
		return time.Time{}, false
	}
	return t, true
}

// validMessage applies the historical acceptance rules for the reminder body:
// non-empty, not led by a digit, longer than 3 characters.
func validMessage(msg string) bool {
	if msg == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(msg)
	if unicode.IsDigit(first) {
		return false
	}
	return utf8.RuneCountInString(msg) > 3
}

func isDayWord(word string) bool {
	_, ok := dayWords[word]
	return ok
}

// splitToken cuts the first whitespace-delimited token off s, preserving the
// internal spacing of the remainder.
func splitToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}
