package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruanvictor/lembrazap/internal/models"
)

func TestParseList(t *testing.T) {
	assert.Equal(t, KindList, Parse("#lembrar", refNow).Kind)
	assert.Equal(t, KindList, Parse("  #LEMBRAR  ", refNow).Kind)
}

func TestParseCancel(t *testing.T) {
	cmd := Parse("#cancelar 2", refNow)
	assert.Equal(t, KindCancel, cmd.Kind)
	assert.Equal(t, 2, cmd.Index)
	assert.False(t, cmd.Confirmed)

	cmd = Parse("#cancelar 2 confirmar", refNow)
	assert.Equal(t, KindCancel, cmd.Kind)
	assert.Equal(t, 2, cmd.Index)
	assert.True(t, cmd.Confirmed)
}

func TestParseCancelZeroIndexKeepsShape(t *testing.T) {
	cmd := Parse("#cancelar 0", refNow)
	assert.Equal(t, KindCancel, cmd.Kind)
	assert.Equal(t, 0, cmd.Index)
}

func TestParseCancelNonNumericIsUnrecognized(t *testing.T) {
	assert.Equal(t, KindUnrecognized, Parse("#cancelar abc", refNow).Kind)
}

func TestParseEdit(t *testing.T) {
	cmd := Parse("#editar 1 Comprar pão integral", refNow)
	assert.Equal(t, KindEdit, cmd.Kind)
	assert.Equal(t, 1, cmd.Index)
	assert.Equal(t, "Comprar pão integral", cmd.NewMessage)
}

func TestParseReschedule(t *testing.T) {
	cmd := Parse("#reagendar 1 amanhã 09:00", refNow)
	assert.Equal(t, KindReschedule, cmd.Kind)
	assert.Equal(t, 1, cmd.Index)
	assert.Equal(t, time.Date(2025, 7, 12, 9, 0, 0, 0, time.UTC), cmd.ScheduledAt)
}

func TestParseRescheduleBadTailKeepsIndex(t *testing.T) {
	cmd := Parse("#reagendar 1 texto sem hora", refNow)
	assert.Equal(t, KindReschedule, cmd.Kind)
	assert.Equal(t, 1, cmd.Index)
	assert.True(t, cmd.ScheduledAt.IsZero())
}

func TestParseBareReminderIsHelp(t *testing.T) {
	assert.Equal(t, KindHelp, Parse("#lembrete", refNow).Kind)
	assert.Equal(t, KindHelp, Parse("  #lembrete  ", refNow).Kind)
}

func TestParseCreate(t *testing.T) {
	cmd := Parse("#lembrete 16:00 Reunião com cliente", refNow)
	require.Equal(t, KindCreate, cmd.Kind)
	assert.Equal(t, "Reunião com cliente", cmd.Message)
	assert.Equal(t, time.Date(2025, 7, 11, 16, 0, 0, 0, time.UTC), cmd.ScheduledAt)
	assert.False(t, cmd.Recurrence.IsRecurring)
}

func TestParseCreateKeywordAnywhere(t *testing.T) {
	cmd := Parse("16:00 Reunião com cliente #lembrete", refNow)
	require.Equal(t, KindCreate, cmd.Kind)
	assert.Equal(t, "Reunião com cliente", cmd.Message)
}

func TestParseCreateWithRecurrence(t *testing.T) {
	cmd := Parse("#lembrete 08:00 Tomar remédio todo dia", refNow)
	require.Equal(t, KindCreate, cmd.Kind)
	assert.True(t, cmd.Recurrence.IsRecurring)
	assert.Equal(t, models.RecurrenceDaily, cmd.Recurrence.Type)
	assert.Equal(t, "Tomar remédio", cmd.Message)
}

func TestParseCreateBadTailIsInvalidFormat(t *testing.T) {
	assert.Equal(t, KindInvalidFormat, Parse("#lembrete sem data nem hora", refNow).Kind)
}

func TestParseUnrecognized(t *testing.T) {
	assert.Equal(t, KindUnrecognized, Parse("oi, tudo bem?", refNow).Kind)
	assert.Equal(t, KindUnrecognized, Parse("", refNow).Kind)
}
