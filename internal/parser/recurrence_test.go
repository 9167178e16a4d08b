package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ruanvictor/lembrazap/internal/models"
)

func TestDetectRecurrenceDaily(t *testing.T) {
	rec, cleaned := DetectRecurrence("08:00 Tomar remédio todo dia")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceDaily, rec.Type)
	assert.Equal(t, "1", rec.Pattern)
	assert.Equal(t, "08:00 Tomar remédio", cleaned)

	rec, cleaned = DetectRecurrence("todos os dias 08:00 Beber água")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceDaily, rec.Type)
	assert.Equal(t, "08:00 Beber água", cleaned)
}

func TestDetectRecurrenceEnglishPhrases(t *testing.T) {
	rec, cleaned := DetectRecurrence("08:00 Take pill every day")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceDaily, rec.Type)
	assert.Equal(t, "08:00 Take pill", cleaned)

	rec, _ = DetectRecurrence("10:00 Standup every monday")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceWeekly, rec.Type)
	assert.Equal(t, "1", rec.Pattern)
}

func TestDetectRecurrenceMonthly(t *testing.T) {
	rec, cleaned := DetectRecurrence("todo mês 10:00 Pagar aluguel")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceMonthly, rec.Type)
	assert.Equal(t, "1", rec.Pattern)
	assert.Equal(t, "10:00 Pagar aluguel", cleaned)
}

func TestDetectRecurrenceWeeklyGeneric(t *testing.T) {
	rec, cleaned := DetectRecurrence("segunda 09:00 Reunião toda semana")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceWeekly, rec.Type)
	assert.Equal(t, "1", rec.Pattern)
	assert.Equal(t, "segunda 09:00 Reunião", cleaned)
}

func TestDetectRecurrenceWeeklySpecificDay(t *testing.T) {
	rec, cleaned := DetectRecurrence("toda segunda 09:00 Reunião de equipe")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceWeekly, rec.Type)
	assert.Equal(t, "1", rec.Pattern)
	assert.Equal(t, "09:00 Reunião de equipe", cleaned)

	rec, _ = DetectRecurrence("toda sexta-feira 18:00 Happy hour")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, "5", rec.Pattern)
}

func TestDetectRecurrenceMultipleDays(t *testing.T) {
	rec, cleaned := DetectRecurrence("segunda, quarta e sexta 07:00 Academia")
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, models.RecurrenceSpecificDays, rec.Type)
	assert.Equal(t, "1,3,5", rec.Pattern)
	assert.Equal(t, "07:00 Academia", cleaned)
}

func TestDetectRecurrenceNone(t *testing.T) {
	rec, cleaned := DetectRecurrence("16:00 Reunião com cliente")
	assert.False(t, rec.IsRecurring)
	assert.Equal(t, "16:00 Reunião com cliente", cleaned)
}
