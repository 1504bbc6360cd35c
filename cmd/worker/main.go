package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
	"github.com/jwebster45206/hotspot-trainer/internal/config"
	"github.com/jwebster45206/hotspot-trainer/internal/logger"
	"github.com/jwebster45206/hotspot-trainer/internal/queue"
	"github.com/jwebster45206/hotspot-trainer/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Hotspot Trainer archive worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"archive_path", cfg.ArchivePath)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer connectCancel()

	queueClient, err := queue.NewClient(connectCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	archiveStore, err := archive.NewStore(cfg.ArchivePath)
	if err != nil {
		log.Error("Failed to open archive", "error", err, "path", cfg.ArchivePath)
		os.Exit(1)
	}
	defer func() {
		if err := archiveStore.Close(); err != nil {
			log.Error("Error closing archive", "error", err)
		}
	}()

	completions := queue.NewCompletionQueue(queueClient)
	if depth, err := completions.Depth(connectCtx); err == nil {
		log.Info("Queue service initialized successfully", "depth", depth)
	}

	w := worker.New(completions, archiveStore, log, os.Getenv("WORKER_ID"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	log.Info("Worker started, waiting for completions...", "worker_id", w.ID())

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		if err := <-done; err != nil {
			log.Error("Worker error", "error", err)
		}
	case err := <-done:
		if err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Worker exited")
}
