package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, 11 July 2025, 15:30 literal clock.
var refNow = time.Date(2025, 7, 11, 15, 30, 0, 0, time.UTC)

func TestResolveDateTimeImplicitToday(t *testing.T) {
	res, ok := ResolveDateTime("16:00 Reunião com cliente", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 11, 16, 0, 0, 0, time.UTC), res.Time)
	assert.False(t, res.RolledForward)
	assert.Equal(t, "Reunião com cliente", res.Message)
}

func TestResolveDateTimeRollsForwardWhenTimePassed(t *testing.T) {
	res, ok := ResolveDateTime("11:00 Tomar remédio", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 12, 11, 0, 0, 0, time.UTC), res.Time)
	assert.True(t, res.RolledForward)
}

func TestResolveDateTimeRollsForwardOnExactNow(t *testing.T) {
	res, ok := ResolveDateTime("15:30 Pagar conta de luz", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 12, 15, 30, 0, 0, time.UTC), res.Time)
	assert.True(t, res.RolledForward)
}

func TestResolveDateTimeTimeThenDate(t *testing.T) {
	res, ok := ResolveDateTime("20:00 25/12 Ceia de Natal", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 25, 20, 0, 0, 0, time.UTC), res.Time)
	assert.False(t, res.RolledForward)
	assert.Equal(t, "Ceia de Natal", res.Message)
}

func TestResolveDateTimeDateThenTime(t *testing.T) {
	res, ok := ResolveDateTime("15/01/2026 14:30 Consulta médica", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC), res.Time)
	assert.Equal(t, "Consulta médica", res.Message)
}

func TestResolveDateTimeExplicitPastDateNeverRolls(t *testing.T) {
	res, ok := ResolveDateTime("01/01 09:00 Festa de ano novo", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), res.Time)
	assert.False(t, res.RolledForward)
}

func TestResolveDateTimeTomorrow(t *testing.T) {
	res, ok := ResolveDateTime("amanhã 07:00 Academia", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 12, 7, 0, 0, 0, time.UTC), res.Time)
	assert.False(t, res.RolledForward)
}

func TestResolveDateTimeTodayWordRolls(t *testing.T) {
	res, ok := ResolveDateTime("hoje 10:00 Café com Ana", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 12, 10, 0, 0, 0, time.UTC), res.Time)
	assert.True(t, res.RolledForward)
}

func TestResolveDateTimeWeekday(t *testing.T) {
	// reference date is a Friday, monday resolves to the 14th
	res, ok := ResolveDateTime("segunda 09:00 Reunião de equipe", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC), res.Time)
}

func TestResolveDateTimeSameWeekdayIsNextWeek(t *testing.T) {
	res, ok := ResolveDateTime("sexta 18:00 Happy hour", refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 7, 18, 18, 0, 0, 0, time.UTC), res.Time)
}

func TestResolveDateTimeRejectsInvalidExpressions(t *testing.T) {
	cases := []string{
		"31/02 10:00 Dia que não existe",
		"25:00 Hora que não existe",
		"10:60 Minuto que não existe",
		"16:00",
		"16:00 oi",
		"16:00 123 começa com dígito",
		"qualquer coisa sem hora",
		"",
	}
	for _, input := range cases {
		_, ok := ResolveDateTime(input, refNow)
		assert.False(t, ok, "input %q should be rejected", input)
	}
}

func TestResolveDateTimeOnly(t *testing.T) {
	got, rolled, ok := ResolveDateTimeOnly("amanhã 09:00", refNow)
	require.True(t, ok)
	assert.False(t, rolled)
	assert.Equal(t, time.Date(2025, 7, 12, 9, 0, 0, 0, time.UTC), got)

	_, _, ok = ResolveDateTimeOnly("amanhã 09:00 texto sobrando", refNow)
	assert.False(t, ok)

	_, _, ok = ResolveDateTimeOnly("segunda", refNow)
	assert.False(t, ok)
}
