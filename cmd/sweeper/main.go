// Command sweeper runs a single retention sweep and exits. Useful when the
// purge should run from an external scheduler instead of the API process.
package main

import (
	"context"
	"log"

	"github.com/planmark/review-backend/config"
	"github.com/planmark/review-backend/internal/bootstrap"
	"github.com/planmark/review-backend/internal/maintenance"
	"github.com/planmark/review-backend/internal/review/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	sweeper := maintenance.NewSweeper(repository.NewPostgres(db), cfg.Retention.Days)
	n, err := sweeper.RunOnce(ctx)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}
	log.Printf("sweep complete, purged %d documents", n)
}
