package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/anoopengineer/rss-bluesky-bridge/app/api"
	"github.com/anoopengineer/rss-bluesky-bridge/app/bluesky"
	"github.com/anoopengineer/rss-bluesky-bridge/app/cfg"
	"github.com/anoopengineer/rss-bluesky-bridge/app/database"
	"github.com/anoopengineer/rss-bluesky-bridge/app/feed"
	"github.com/anoopengineer/rss-bluesky-bridge/app/pipeline"
	"github.com/anoopengineer/rss-bluesky-bridge/app/secrets"
	"github.com/anoopengineer/rss-bluesky-bridge/app/summary"
	"github.com/anoopengineer/rss-bluesky-bridge/app/tasks"
)

func main() {
	// .env is optional, environment variables win
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting RSS Bluesky Bridge", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	store := database.NewSeenItemRepository(db)

	httpClient := &http.Client{}
	fetchTimeout := time.Duration(appCfg.FetchTimeout) * time.Second

	parser := feed.NewParser()
	ingestor := feed.NewIngestor(httpClient, parser, appCfg.FeedURL, appCfg.UserAgent,
		time.Duration(appCfg.MaxAgeHours)*time.Hour, fetchTimeout)

	var extractor *feed.ContentExtractor
	if appCfg.ExtractContent {
		extractor = feed.NewContentExtractor(httpClient, appCfg.UserAgent, fetchTimeout)
	}

	var summarizer summary.Summarizer
	if appCfg.EnableAISummary {
		summarizer = summary.NewClient(appCfg.AIEndpoint, appCfg.AIModelID, appCfg.AIAPIKey,
			time.Duration(appCfg.AITimeoutSeconds)*time.Second)
	}
	enricher := summary.NewEnricher(summarizer, extractor, appCfg.EnableAISummary, appCfg.AIMaxGraphemes)

	creds := secrets.NewProvider(appCfg.CredentialsFile, appCfg.BlueskyUsername, appCfg.BlueskyPassword)
	client := bluesky.NewClient(appCfg.BlueskyPDS)
	publisher := bluesky.NewPublisher(client, creds, store, appCfg.MaxPostGraphemes)

	pipe := pipeline.New(ingestor, enricher, publisher, store,
		time.Duration(appCfg.ClaimTTLHours)*time.Hour,
		time.Duration(appCfg.RecordTTLHours)*time.Hour)

	slog.Info("Starting background scheduler",
		"workers", appCfg.WorkerCount,
		"interval", (time.Duration(appCfg.SchedulerInterval) * time.Second).String())
	scheduler := tasks.NewScheduler(pipe, store)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(store, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("RSS Bluesky Bridge started", "feed", appCfg.FeedURL)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
