package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ruanvictor/lembrazap/internal/models"
	"github.com/ruanvictor/lembrazap/pkg/logger"
)

// ReminderHandler exposes reminder creation over plain REST, bypassing the
// chat grammar.
type ReminderHandler struct {
	executor CommandExecutor
}

func NewReminderHandler(executor CommandExecutor) *ReminderHandler {
	return &ReminderHandler{executor: executor}
}

type createReminderRequest struct {
	Phone       string `json:"phone" binding:"required"`
	Message     string `json:"message" binding:"required"`
	ScheduledAt string `json:"scheduledAt" binding:"required"`
}

// HandleCreate creates a reminder from a JSON body. scheduledAt uses the
// same literal wall-clock convention as chat commands.
func (h *ReminderHandler) HandleCreate(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone, message and scheduledAt are required"})
		return
	}

	scheduledAt, err := parseLiteral(req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduledAt must be formatted as 2006-01-02T15:04 or 2006-01-02 15:04"})
		return
	}

	reminder, err := h.executor.CreateDirect(c.Request.Context(), req.Phone, req.Message, scheduledAt)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPhone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
			return
		}
		logger.Error("failed to create reminder via api", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reminder"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          reminder.ID,
		"phone":       reminder.Phone,
		"message":     reminder.Message,
		"scheduledAt": reminder.ScheduledAt.Format("2006-01-02T15:04"),
		"status":      reminder.Status,
	})
}

func parseLiteral(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Truncate(time.Minute), nil
		}
	}
	return time.Time{}, errors.New("unsupported timestamp layout")
}
