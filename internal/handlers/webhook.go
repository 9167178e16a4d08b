package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ruanvictor/lembrazap/pkg/logger"
)

// processTimeout bounds the async handling of one inbound message after the
// webhook has already been acknowledged.
const processTimeout = 30 * time.Second

// WebhookHandler receives Evolution API events and turns message upserts
// into chat commands.
type WebhookHandler struct {
	executor CommandExecutor
	gateway  WhatsAppGateway

	// publicURL is this service's externally reachable base URL, used when
	// (re)configuring the webhook on the Evolution side.
	publicURL string
}

func NewWebhookHandler(executor CommandExecutor, gateway WhatsAppGateway, publicURL string) *WebhookHandler {
	return &WebhookHandler{executor: executor, gateway: gateway, publicURL: publicURL}
}

// webhookEvent mirrors the Evolution API messages.upsert payload, reduced to
// the fields the bot reads.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Key struct {
			RemoteJID string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
		} `json:"key"`
		Message struct {
			Conversation        string `json:"conversation"`
			ExtendedTextMessage struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
		} `json:"message"`
	} `json:"data"`
}

// HandleEvent acknowledges every webhook delivery with 200 and processes
// message upserts asynchronously, so Evolution never retries on slow
// command handling.
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	var event webhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		logger.Warn("discarding malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if !isMessageEvent(event.Event) || event.Data.Key.FromMe {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	phone := stripJID(event.Data.Key.RemoteJID)
	text := event.Data.Message.Conversation
	if text == "" {
		text = event.Data.Message.ExtendedTextMessage.Text
	}
	if phone == "" || text == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	go h.process(phone, text)
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *WebhookHandler) process(phone, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	result := h.executor.Execute(ctx, phone, text)
	if !result.Reply {
		return
	}

	if err := h.gateway.SendText(ctx, phone, result.Response); err != nil {
		logger.Error("failed to send command reply",
			zap.String("phone", phone), zap.Error(err))
	}
}

// HandleStatus reports the WhatsApp instance connection state.
func (h *WebhookHandler) HandleStatus(c *gin.Context) {
	state, err := h.gateway.ConnectionState(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "connected": state == "open"})
}

// HandleTest sends a test message to a phone number.
func (h *WebhookHandler) HandleTest(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}

	if err := h.gateway.SendText(c.Request.Context(), req.Phone, "✅ Teste de conexão: tudo funcionando!"); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// HandleConfigure points the Evolution webhook at this service.
func (h *WebhookHandler) HandleConfigure(c *gin.Context) {
	url := strings.TrimRight(h.publicURL, "/") + "/api/webhook/evolution"
	if err := h.gateway.ConfigureWebhook(c.Request.Context(), url); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "configured", "url": url})
}

// HandleConfig shows the webhook URL this service expects to be registered.
func (h *WebhookHandler) HandleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"url":    strings.TrimRight(h.publicURL, "/") + "/api/webhook/evolution",
		"events": []string{"MESSAGES_UPSERT"},
	})
}

// isMessageEvent matches the inbound-message event family. Evolution API
// versions differ on singular vs plural and upsert vs received.
func isMessageEvent(name string) bool {
	switch strings.ToLower(name) {
	case "message.upsert", "messages.upsert", "message.received", "messages.received":
		return true
	}
	return false
}

// stripJID extracts the bare phone number from a WhatsApp JID like
// "5511999999999@s.whatsapp.net".
func stripJID(jid string) string {
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		return jid[:i]
	}
	return jid
}
