// Package format renders every user-facing reply. The texts here are part of
// the bot's visible contract: the cancel confirmation embeds the exact
// command the user must send back.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ruanvictor/lembrazap/internal/models"
)

const displayLimit = 50

// RollForwardNote is appended whenever an implicit-today time already passed
// and the reminder was pushed to the next day.
const RollForwardNote = "⏰ *Horário já passou hoje, agendado para amanhã.*"

var weekdayNamesPT = []string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

// Literal formats a literal-clock timestamp the way the user typed it.
func Literal(t time.Time) string {
	return t.Format("02/01/2006, 15:04")
}

// DisplayMessage strips the stored reminder prefix and truncates long bodies
// for display.
func DisplayMessage(message string) string {
	return Truncate(strings.TrimPrefix(message, models.MessagePrefix), displayLimit)
}

func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func Help() string {
	return `🤖 *Ajuda - Comando #lembrete*

Para criar um lembrete, use o formato:
*#lembrete [quando] [hora] [mensagem]*

📅 *Exemplos de uso:*

⏰ *Hoje:*
• #lembrete 15:30 Reunião com cliente
• #lembrete 09:00 Tomar remédio

📆 *Data específica:*
• #lembrete 25/12 20:00 Ceia de Natal
• #lembrete 15/01/2026 14:30 Consulta médica

🗓️ *Dias da semana:*
• #lembrete segunda 09:00 Reunião de equipe
• #lembrete sexta 18:00 Happy hour
• #lembrete amanhã 07:00 Academia

🔁 *Recorrência:*
• #lembrete 08:00 Tomar remédio todo dia
• #lembrete segunda 09:00 Reunião toda semana

📋 *Outros comandos:*
• #lembrar — lista seus lembretes pendentes
• #cancelar N — cancela o lembrete número N
• #editar N nova mensagem — edita o lembrete
• #reagendar N nova data/hora — reagenda o lembrete

⚡ *Dicas:*
• Use horário no formato 24h (ex: 14:30)
• Datas no formato DD/MM ou DD/MM/AAAA
• Se o horário já passou hoje, será agendado para amanhã`
}

func InvalidFormat() string {
	return `❌ Formato de lembrete inválido.

Exemplos de uso:
• #lembrete 15:30 Reunião com cliente
• #lembrete 15:30 25/12 Reunião de final de ano
• #lembrete amanhã 09:00 Consulta médica
• #lembrete segunda 14:00 Apresentação projeto
• #lembrete 25/12/2026 20:00 Ceia de Natal

Formato: #lembrete [quando] [hora] [mensagem]`
}

func Created(reminder *models.Reminder, rolledForward bool) string {
	var sb strings.Builder
	sb.WriteString("✅ Lembrete criado com sucesso!\n\n")
	sb.WriteString("📅 Data: " + Literal(reminder.ScheduledAt) + "\n")
	sb.WriteString("💬 Mensagem: " + strings.TrimPrefix(reminder.Message, models.MessagePrefix) + "\n")
	sb.WriteString("📞 Para: " + reminder.Phone + "\n")
	if reminder.IsRecurring {
		sb.WriteString("🔁 Recorrência: " + DescribeRecurrence(reminder.RecurrenceType, reminder.RecurrencePattern) + "\n")
	}
	sb.WriteString("\nVocê receberá uma mensagem no horário agendado.")
	if rolledForward {
		sb.WriteString("\n\n" + RollForwardNote)
	}
	return sb.String()
}

func NoReminders() string {
	return "📭 Você não tem lembretes pendentes.\n\nUse *#lembrete [hora] [mensagem]* para criar um."
}

func ReminderList(reminders []*models.Reminder) string {
	var sb strings.Builder
	sb.WriteString("📋 *Seus Lembretes Pendentes:*\n\n")
	for i, r := range reminders {
		sb.WriteString(fmt.Sprintf("*%d.* 💬 %s\n", i+1, DisplayMessage(r.Message)))
		sb.WriteString("    📅 " + Literal(r.ScheduledAt))
		if r.IsRecurring {
			sb.WriteString(" 🔁 " + DescribeRecurrence(r.RecurrenceType, r.RecurrencePattern))
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString("Use *#cancelar N*, *#editar N texto* ou *#reagendar N data/hora*.")
	return sb.String()
}

func NoPendingFor(action string) string {
	return "❌ Você não tem lembretes pendentes para " + action + "."
}

func InvalidIndex(count int) string {
	return "❌ Número inválido. Você tem " + strconv.Itoa(count) + " lembrete(s) pendente(s)."
}

func ConfirmCancel(index int, reminder *models.Reminder) string {
	var sb strings.Builder
	sb.WriteString("⚠️ *Confirmar Cancelamento*\n\n")
	sb.WriteString(fmt.Sprintf("Lembrete #%d\n", index))
	sb.WriteString("💬 " + DisplayMessage(reminder.Message) + "\n")
	sb.WriteString("📅 " + Literal(reminder.ScheduledAt) + "\n")
	if reminder.IsRecurring {
		sb.WriteString("🔁 Toda a série recorrente será cancelada.\n")
	}
	sb.WriteString(fmt.Sprintf("\nPara confirmar, envie:\n*#cancelar %d confirmar*", index))
	return sb.String()
}

func Canceled(index int) string {
	return fmt.Sprintf("✅ *Lembrete Cancelado*\n\nLembrete #%d cancelado com sucesso.", index)
}

func SeriesCanceled(index int, count int64) string {
	return fmt.Sprintf("✅ *Série Cancelada*\n\nLembrete #%d e toda a série recorrente foram cancelados (%d ocorrência(s)).", index, count)
}

func Edited(index int, oldMessage, newMessage string, scheduledAt time.Time) string {
	var sb strings.Builder
	sb.WriteString("✅ *Lembrete Editado*\n\n")
	sb.WriteString(fmt.Sprintf("Lembrete #%d editado com sucesso!\n\n", index))
	sb.WriteString("📝 *Mensagem anterior:*\n" + DisplayMessage(oldMessage) + "\n\n")
	sb.WriteString("✏️ *Nova mensagem:*\n" + Truncate(newMessage, displayLimit) + "\n\n")
	sb.WriteString("📅 " + Literal(scheduledAt))
	return sb.String()
}

func Rescheduled(index int, message string, oldDate, newDate time.Time, rolledForward bool) string {
	var sb strings.Builder
	sb.WriteString("✅ *Lembrete Reagendado*\n\n")
	sb.WriteString(fmt.Sprintf("Lembrete #%d reagendado com sucesso!\n\n", index))
	sb.WriteString("💬 " + DisplayMessage(message) + "\n\n")
	sb.WriteString("⏰ *Data anterior:* " + Literal(oldDate) + "\n")
	sb.WriteString("🆕 *Nova data:* " + Literal(newDate))
	if rolledForward {
		sb.WriteString("\n\n" + RollForwardNote)
	}
	return sb.String()
}

func CancelUsage() string {
	return "❌ Comando inválido. Use: *#cancelar NÚMERO* (ex: #cancelar 1)"
}

func EditUsage() string {
	return "❌ Comando inválido. Use: *#editar NÚMERO nova mensagem* (ex: #editar 1 Comprar pão)"
}

func RescheduleUsage() string {
	return "❌ Comando inválido. Use: *#reagendar NÚMERO data/hora* (ex: #reagendar 1 amanhã 09:00)"
}

func GenericError(action string) string {
	return "❌ Erro ao " + action + " lembrete. Tente novamente em alguns minutos."
}

func InternalError() string {
	return "❌ Erro interno ao processar lembrete. Tente novamente em alguns minutos."
}

func InvalidPhone() string {
	return "❌ Número de telefone inválido. Use o formato: 5511999999999"
}

// DescribeRecurrence renders a recurrence in words for confirmations and
// listings.
func DescribeRecurrence(recurrenceType models.RecurrenceType, pattern string) string {
	switch recurrenceType {
	case models.RecurrenceDaily:
		return "todos os dias"
	case models.RecurrenceWeekly:
		if pattern == "1" {
			return "toda semana"
		}
		if day, err := strconv.Atoi(pattern); err == nil && day >= 0 && day <= 6 {
			return "toda " + weekdayNamesPT[day]
		}
		return "toda semana"
	case models.RecurrenceSpecificDays:
		var names []string
		for _, part := range strings.Split(pattern, ",") {
			if day, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && day >= 0 && day <= 6 {
				names = append(names, weekdayNamesPT[day])
			}
		}
		switch len(names) {
		case 0:
			return "dias específicos"
		case 1:
			return "toda " + names[0]
		default:
			return strings.Join(names[:len(names)-1], ", ") + " e " + names[len(names)-1]
		}
	case models.RecurrenceMonthly:
		return "todo mês"
	}
	return string(recurrenceType)
}
