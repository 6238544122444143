package main

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/greenhabit/greenpoints-backend/internal/config"
	"github.com/greenhabit/greenpoints-backend/internal/middleware"
	"github.com/greenhabit/greenpoints-backend/internal/server"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID})
	if err != nil {
		log.Fatalf("firebase init error: %v", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("firestore init error: %v", err)
	}
	defer client.Close()

	authMw, err := middleware.NewAuthMiddleware(ctx, cfg.FirebaseProjectID)
	if err != nil {
		log.Fatalf("firebase auth init error: %v", err)
	}

	srv := server.New(store.NewFirestore(client), authMw, cfg)

	if cfg.SnapshotCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.SnapshotCron, func() {
			run, err := srv.Snapshot.Run(context.Background())
			if err != nil {
				log.Printf("scheduled snapshot error: %v", err)
				return
			}
			log.Printf("scheduled snapshot saved %d/%d users for %s", run.UsersCount, run.TotalUsers, run.Date)
		}); err != nil {
			log.Fatalf("invalid SNAPSHOT_CRON %q: %v", cfg.SnapshotCron, err)
		}
		c.Start()
		defer c.Stop()
	}

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
