package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ruanvictor/lembrazap/internal/models"
)

// Recurrence is what the detector extracted from the command text.
type Recurrence struct {
	IsRecurring bool
	Type        models.RecurrenceType
	Pattern     string
}

const weekdayNames = `domingo|segunda|terça|quarta|quinta|sexta|sábado|sunday|monday|tuesday|wednesday|thursday|friday|saturday`

// 0=Sunday .. 6=Saturday
var weekdayNumbers = map[string]int{
	"domingo": 0, "segunda": 1, "terça": 2, "quarta": 3, "quinta": 4, "sexta": 5, "sábado": 6,
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3, "thursday": 4, "friday": 5, "saturday": 6,
}

var (
	dailyRe   = regexp.MustCompile(`(?i)\b(?:todos\s+os\s+dias|todo\s+dia|cada\s+dia|diariamente|every\s+day|daily)\b`)
	monthlyRe = regexp.MustCompile(`(?i)\b(?:todo\s+m[êe]s|cada\s+m[êe]s|mensalmente|every\s+month|monthly)\b`)
	weeklyRe  = regexp.MustCompile(`(?i)\b(?:toda\s+semana|cada\s+semana|semanalmente|every\s+week|weekly)\b`)

	weeklyDayRe = regexp.MustCompile(`(?i)\b(?:toda|todo|a\s+cada|every)\s+(` + weekdayNames + `)(?:-feira)?s?\b`)

	multiDayRe = regexp.MustCompile(`(?i)\b((?:` + weekdayNames + `)(?:-feira)?s?(?:\s*,\s*(?:` + weekdayNames + `)(?:-feira)?s?)*\s+(?:e|and)\s+(?:` + weekdayNames + `)(?:-feira)?s?)\b`)

	weekdayWordRe = regexp.MustCompile(`(?i)(?:` + weekdayNames + `)`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// DetectRecurrence scans text for a recurrence phrase. Categories are tried
// in priority order and the first match wins; the matched phrase is removed
// from the returned text.
func DetectRecurrence(text string) (Recurrence, string) {
	if loc := dailyRe.FindStringIndex(text); loc != nil {
		return Recurrence{IsRecurring: true, Type: models.RecurrenceDaily, Pattern: "1"},
			stripMatch(text, loc)
	}

	if loc := monthlyRe.FindStringIndex(text); loc != nil {
		return Recurrence{IsRecurring: true, Type: models.RecurrenceMonthly, Pattern: "1"},
			stripMatch(text, loc)
	}

	if loc := weeklyRe.FindStringIndex(text); loc != nil {
		return Recurrence{IsRecurring: true, Type: models.RecurrenceWeekly, Pattern: "1"},
			stripMatch(text, loc)
	}

	if m := weeklyDayRe.FindStringSubmatchIndex(text); m != nil {
		day := weekdayNumbers[strings.ToLower(text[m[2]:m[3]])]
		return Recurrence{IsRecurring: true, Type: models.RecurrenceWeekly, Pattern: strconv.Itoa(day)},
			stripMatch(text, m[:2])
	}

	if m := multiDayRe.FindStringSubmatchIndex(text); m != nil {
		phrase := text[m[2]:m[3]]
		days := collectWeekdays(phrase)
		if len(days) > 1 {
			return Recurrence{IsRecurring: true, Type: models.RecurrenceSpecificDays, Pattern: joinDays(days)},
				stripMatch(text, m[:2])
		}
	}

	return Recurrence{}, text
}

// collectWeekdays maps every weekday name in the phrase to its number,
// deduplicated and sorted ascending.
func collectWeekdays(phrase string) []int {
	seen := make(map[int]bool)
	var days []int
	for _, w := range weekdayWordRe.FindAllString(phrase, -1) {
		day := weekdayNumbers[strings.ToLower(w)]
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return days
}

func joinDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func stripMatch(text string, loc []int) string {
	cleaned := text[:loc[0]] + " " + text[loc[1]:]
	return strings.TrimSpace(spacesRe.ReplaceAllString(cleaned, " "))
}
