// Package router wires the HTTP surface: the Evolution webhook, the REST
// reminder endpoint and health.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruanvictor/lembrazap/internal/handlers"
)

type Router struct {
	engine   *gin.Engine
	webhook  *handlers.WebhookHandler
	reminder *handlers.ReminderHandler
}

func New(webhook *handlers.WebhookHandler, reminder *handlers.ReminderHandler) *Router {
	r := &Router{
		engine:   gin.Default(),
		webhook:  webhook,
		reminder: reminder,
	}

	r.engine.GET("/api/health", r.handleHealth)
	r.engine.NoRoute(r.handleNotFound)

	api := r.engine.Group("/api")
	{
		api.POST("/reminder", reminder.HandleCreate)

		api.POST("/webhook/evolution", webhook.HandleEvent)
		api.GET("/webhook/status", webhook.HandleStatus)
		api.POST("/webhook/test", webhook.HandleTest)
		api.POST("/webhook/configure", webhook.HandleConfigure)
		api.GET("/webhook/config", webhook.HandleConfig)
	}

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}
