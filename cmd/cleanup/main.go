// Command cleanup prunes finished reminders from the database: sent
// occurrences past the retention window, expired one-shot reminders that
// never fired, and deliveries that exhausted their retries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ruanvictor/lembrazap/internal/config"
	"github.com/ruanvictor/lembrazap/internal/database"
	"github.com/ruanvictor/lembrazap/internal/format"
	"github.com/ruanvictor/lembrazap/internal/models"
	"github.com/ruanvictor/lembrazap/internal/repository"
)

const deleteBatchSize = 100

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be deleted without deleting")
	details := flag.Bool("details", false, "print each reminder selected for deletion")
	maxRetries := flag.Int("max-retries", models.MaxRetries, "retry count at or above which failed reminders are pruned")
	daysOld := flag.Int("days-old", 7, "age in days before sent or expired reminders are pruned")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := repository.NewReminderRepository(db)
	reminders, err := repo.FindAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load reminders: %v", err)
	}

	cutoff := models.NowLiteral().AddDate(0, 0, -*daysOld)
	var sent, expired, exhausted []*models.Reminder
	for _, r := range reminders {
		switch {
		case r.Status == models.StatusSent && r.SentAt != nil && r.SentAt.Before(cutoff):
			sent = append(sent, r)
		case r.Status == models.StatusPending && !r.IsRecurring && r.ScheduledAt.Before(cutoff):
			expired = append(expired, r)
		case r.Status == models.StatusExhausted && r.RetryCount >= *maxRetries:
			exhausted = append(exhausted, r)
		}
	}

	fmt.Printf("Reminders in database: %d\n", len(reminders))
	fmt.Printf("Sent (older than %d days): %d\n", *daysOld, len(sent))
	fmt.Printf("Expired one-shot (older than %d days): %d\n", *daysOld, len(expired))
	fmt.Printf("Exhausted (>= %d retries): %d\n", *maxRetries, len(exhausted))

	var ids []string
	for _, group := range [][]*models.Reminder{sent, expired, exhausted} {
		for _, r := range group {
			ids = append(ids, r.ID)
			if *details {
				fmt.Printf("  %s  %s  %s  %s\n",
					r.ID, r.Status, format.Literal(r.ScheduledAt), format.DisplayMessage(r.Message))
			}
		}
	}

	if len(ids) == 0 {
		fmt.Println("Nothing to delete.")
		return
	}
	if *dryRun {
		fmt.Printf("Dry run: %d reminder(s) would be deleted.\n", len(ids))
		return
	}

	start := time.Now()
	var deleted int64
	for i := 0; i < len(ids); i += deleteBatchSize {
		end := i + deleteBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		n, err := repo.DeleteByIDs(ctx, ids[i:end])
		if err != nil {
			log.Fatalf("Failed to delete batch: %v", err)
		}
		deleted += n
	}
	fmt.Printf("Deleted %d reminder(s) in %s.\n", deleted, time.Since(start).Round(time.Millisecond))
}
