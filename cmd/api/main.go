package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
	"github.com/jwebster45206/hotspot-trainer/internal/config"
	"github.com/jwebster45206/hotspot-trainer/internal/handlers"
	"github.com/jwebster45206/hotspot-trainer/internal/logger"
	"github.com/jwebster45206/hotspot-trainer/internal/metrics"
	"github.com/jwebster45206/hotspot-trainer/internal/middleware"
	"github.com/jwebster45206/hotspot-trainer/internal/queue"
	"github.com/jwebster45206/hotspot-trainer/internal/storage"
	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Hotspot Trainer API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"session_ttl", cfg.SessionTTL)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Invalid Redis configuration", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	archiveStore, err := archive.NewStore(cfg.ArchivePath)
	if err != nil {
		log.Error("Failed to open archive", "error", err, "path", cfg.ArchivePath)
		os.Exit(1)
	}

	pingers := map[string]handlers.Pinger{
		"redis":   store,
		"archive": archiveStore,
	}
	closers := []closer{store, archiveStore}

	// Completions go straight to SQLite unless a worker drains them.
	var recorder handlers.CompletionRecorder = archiveStore
	if cfg.ArchiveQueue {
		queueClient, err := queue.NewClient(storageCtx, cfg.RedisURL, log)
		if err != nil {
			log.Error("Failed to create queue client", "error", err)
			os.Exit(1)
		}
		recorder = queue.NewCompletionQueue(queueClient)
		pingers["queue"] = queueClient
		closers = append(closers, queueClient)
		log.Info("Completions will be archived by the worker")
	}

	reg := metrics.DefaultRegistry()
	scenarios := scenario.NewCatalog()
	badges := grading.NewBadgeCatalog()
	loader := storage.NewCatalogLoader(cfg.DataDir, log)

	reload := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := loader.Reload(ctx, scenarios, badges)
		reg.RecordCatalogReload(scenarios.Len(), err)
		return err
	}
	if err := reload(); err != nil {
		log.Error("Failed to load catalogs", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	log.Info("Catalogs loaded", "scenarios", scenarios.Len(), "badges", len(badges.List()))

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(pingers, scenarios, log)
	mux.Handle("/health", healthHandler)

	scenarioHandler := handlers.NewScenarioHandler(log, scenarios, nil)
	mux.Handle("/v1/scenarios", scenarioHandler)
	mux.Handle("/v1/scenarios/", scenarioHandler)

	mux.Handle("/v1/badges", handlers.NewBadgeHandler(log, badges))

	sessionHandler := handlers.NewSessionHandler(log, handlers.SessionDeps{
		Storage:      store,
		Engine:       engine.New(badges),
		Scenarios:    scenarios,
		Archive:      recorder,
		Metrics:      reg,
		HistoryLimit: cfg.HistoryLimit,
	})
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	mux.Handle("/v1/stats", handlers.NewStatsHandler(log, archiveStore))
	mux.Handle("/metrics", reg.Handler())

	handler := middleware.Logger(log, middleware.Metrics(reg, mux))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// SIGHUP reloads content; SIGINT and SIGTERM shut down.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s != syscall.SIGHUP {
			break
		}
		if err := reload(); err != nil {
			log.Error("Catalog reload failed, keeping previous content", "error", err)
			continue
		}
		log.Info("Catalogs reloaded", "scenarios", scenarios.Len(), "badges", len(badges.List()))
	}

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	closeAll(log, closers...)

	log.Info("Server exited")
}

type closer interface {
	Close() error
}

func closeAll(log *slog.Logger, cs ...closer) {
	for _, c := range cs {
		if err := c.Close(); err != nil {
			log.Error("Error closing connection", "error", err)
		}
	}
}
