package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ruanvictor/lembrazap/internal/commands"
	"github.com/ruanvictor/lembrazap/internal/config"
	"github.com/ruanvictor/lembrazap/internal/database"
	"github.com/ruanvictor/lembrazap/internal/gateway"
	"github.com/ruanvictor/lembrazap/internal/handlers"
	"github.com/ruanvictor/lembrazap/internal/recurrence"
	"github.com/ruanvictor/lembrazap/internal/repository"
	"github.com/ruanvictor/lembrazap/internal/router"
	"github.com/ruanvictor/lembrazap/internal/scheduler"
	"github.com/ruanvictor/lembrazap/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate required config
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.EvolutionAPIURL == "" || cfg.EvolutionAPIKey == "" || cfg.WhatsAppInstance == "" {
		log.Fatal("EVOLUTION_API_URL, EVOLUTION_API_KEY and WHATSAPP_INSTANCE are required")
	}

	if err := logger.Init(cfg.LogPath); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	reminderRepo := repository.NewReminderRepository(db)
	wa := gateway.NewClient(cfg.EvolutionAPIURL, cfg.EvolutionAPIKey, cfg.WhatsAppInstance, cfg.SendTimeout)
	engine := recurrence.New(reminderRepo)
	manager := commands.NewManager(reminderRepo, engine)

	// Create and start scheduler
	sched := scheduler.New(reminderRepo, wa, engine, cfg.SchedulerInterval, cfg.SendTimeout)
	go sched.Start(ctx)

	// HTTP surface
	webhookHandler := handlers.NewWebhookHandler(manager, wa, cfg.PublicURL)
	reminderHandler := handlers.NewReminderHandler(manager)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.New(webhookHandler, reminderHandler),
	}

	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
}
