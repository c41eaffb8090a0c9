package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhi-jithb/storyshelf/app/api"
	"github.com/abhi-jithb/storyshelf/app/cfg"
	"github.com/abhi-jithb/storyshelf/app/database"
	"github.com/abhi-jithb/storyshelf/app/pipeline"
	"github.com/abhi-jithb/storyshelf/app/query"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Storyshelf server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	schemaVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", schemaVersion, "dirty", dirty)

	bookRepo := database.NewBookRepository(db)

	taxonomy := query.DefaultTaxonomy()
	if appCfg.TaxonomiesFile != "" {
		loaded, err := query.LoadTaxonomy(appCfg.TaxonomiesFile)
		if err != nil {
			slog.Warn("Failed to load taxonomy file, using built-in tables",
				"path", appCfg.TaxonomiesFile, "error", err)
		} else {
			taxonomy = loaded
			slog.Info("Loaded taxonomy overrides", "path", appCfg.TaxonomiesFile)
		}
	}
	engine := query.NewEngine(taxonomy)
	searcher := query.NewSearcher()

	pl := pipeline.New(pipeline.Config{
		RootURL:         appCfg.OpdsURL,
		PrimaryLanguage: appCfg.PrimaryLanguage,
		WorkerCount:     appCfg.WorkerCount,
		MaxRetries:      appCfg.MaxRetries,
		RetryDelay:      time.Duration(appCfg.RetryDelayMs) * time.Millisecond,
		FetchTimeout:    time.Duration(appCfg.FetchTimeoutSec) * time.Second,
		PageTimeout:     time.Duration(appCfg.PageTimeoutSec) * time.Second,
		MaxPages:        appCfg.MaxPages,
		BatchInterval:   time.Duration(appCfg.BatchIntervalMs) * time.Millisecond,
		UserAgent:       appCfg.UserAgent,
	}, bookRepo)

	crawlCtx, cancelCrawl := context.WithCancel(context.Background())
	defer cancelCrawl()

	slog.Info("Starting catalog ingestion", "url", appCfg.OpdsURL,
		"workers", appCfg.WorkerCount)
	pl.Init(crawlCtx)

	apiHandler := api.NewHandler(pl, engine, searcher, bookRepo, appCfg.Version)
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

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")
	cancelCrawl()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
