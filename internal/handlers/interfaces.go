package handlers

import (
	"context"
	"time"

	"github.com/ruanvictor/lembrazap/internal/commands"
	"github.com/ruanvictor/lembrazap/internal/models"
)

// CommandExecutor defines the contract the webhook handler needs to run chat
// commands. This interface is used for dependency injection and testing.
type CommandExecutor interface {
	Execute(ctx context.Context, phone string, text string) commands.Result
	CreateDirect(ctx context.Context, phone, message string, scheduledAt time.Time) (*models.Reminder, error)
}

// WhatsAppGateway defines the contract for the outbound WhatsApp operations
// the HTTP handlers expose.
type WhatsAppGateway interface {
	SendText(ctx context.Context, number, text string) error
	ConnectionState(ctx context.Context) (string, error)
	ConfigureWebhook(ctx context.Context, webhookURL string) error
}
