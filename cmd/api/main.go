package main

import (
	"context"
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/planmark/review-backend/config"
	"github.com/planmark/review-backend/internal/auth"
	"github.com/planmark/review-backend/internal/bootstrap"
	"github.com/planmark/review-backend/internal/files"
	"github.com/planmark/review-backend/internal/maintenance"
	"github.com/planmark/review-backend/internal/review/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	var fileStore files.Store
	if cfg.Files.Backend == "s3" {
		fileStore, err = files.NewS3Store(ctx, cfg.Files.Region, cfg.Files.Bucket, cfg.Files.Prefix)
	} else {
		fileStore, err = files.NewLocalStore(cfg.Files.LocalDir)
	}
	if err != nil {
		log.Fatalf("file store: %v", err)
	}

	var authClient *firebaseauth.Client
	if cfg.Auth.CredentialsPath != "" {
		authClient, err = auth.InitializeFirebase(cfg.Auth.CredentialsPath)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
	}

	sweeper := maintenance.NewSweeper(repository.NewPostgres(db), cfg.Retention.Days)
	sweeper.Start()
	defer sweeper.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "review-backend",
		Version:     cfg.App.Version,
		DB:          db,
		Redis:       rdb,
		Files:       fileStore,
		AuthClient:  authClient,
		RateLimit:   cfg.Server.RateLimit,
		RateBurst:   cfg.Server.RateBurst,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
