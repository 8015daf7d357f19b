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

	"github.com/example/streamflix/internal/api"
	"github.com/example/streamflix/internal/config"
	"github.com/example/streamflix/internal/db"
	"github.com/example/streamflix/internal/events"
	"github.com/example/streamflix/internal/jobs"
	"github.com/example/streamflix/internal/metadata"
	"github.com/example/streamflix/internal/scheduler"
)

const version = "0.3.0"

func main() {
	log.Printf("StreamFlix %s starting...", version)

	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	cfg.MergeFromDB(database.DB)
	log.Printf("config: registration_open=%v omdb_enabled=%v", cfg.RegistrationOpen, cfg.OMDbEnabled())

	queue := jobs.NewQueue(cfg.RedisAddr)
	hub := events.NewHub()

	srv := api.NewServer(cfg, database, queue, hub)

	var omdb *metadata.OMDbClient
	if cfg.OMDbEnabled() {
		omdb = metadata.NewOMDbClient(cfg.OMDbAPIURL, cfg.OMDbAPIKey)
	}
	jobs.RegisterHandlers(queue, srv.CatalogRepo(), srv.WatchService(), srv.ProfilesRepo(), omdb, hub)

	if err := queue.Start(); err != nil {
		log.Fatalf("job queue failed to start: %v", err)
	}
	defer queue.Stop()

	sched := scheduler.New(queue, srv.CatalogRepo())
	if err := sched.Start(); err != nil {
		log.Fatalf("scheduler failed to start: %v", err)
	}
	defer sched.Stop()

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
