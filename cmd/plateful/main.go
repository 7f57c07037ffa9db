package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/plateful/internal/backup"
	"github.com/dukerupert/plateful/internal/config"
	"github.com/dukerupert/plateful/internal/database"
	"github.com/dukerupert/plateful/internal/llm"
	"github.com/dukerupert/plateful/internal/logging"
	"github.com/dukerupert/plateful/internal/planner"
	"github.com/dukerupert/plateful/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	plannerCfg := planner.Config{
		Provider:       cfg.LLMProvider,
		ClaudeProxyURL: cfg.ClaudeProxyURL,
		ClaudeAPIKey:   cfg.ClaudeAPIKey,
	}
	if cfg.LLMProvider == planner.ProviderGemini {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		plannerCfg.Gemini = gemini
	}

	srv := server.New(db, server.Options{
		BaseURL:        cfg.BaseURL,
		WebDir:         cfg.WebDir,
		AllowedOrigins: cfg.AllowedOrigins,
		Planner:        plannerCfg,
		SeedSamples:    cfg.SeedSamples,
		Backup: backup.Config{
			Dir:        cfg.BackupDir,
			Passphrase: cfg.BackupPassphrase,
			Interval:   cfg.BackupInterval,
			Keep:       cfg.BackupKeep,
			S3: backup.S3Config{
				Endpoint:  cfg.S3Endpoint,
				Bucket:    cfg.S3Bucket,
				Region:    cfg.S3Region,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			},
		},
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Plan generation waits on the model.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go srv.RateLimiter().RunCleanup(ctx, 10*time.Minute)
	srv.BackupManager().Start(ctx)

	go func() {
		slog.Info("plateful starting", "addr", httpServer.Addr, "provider", cfg.LLMProvider, "base_url", cfg.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cancel()
	srv.BackupManager().Stop()
	srv.Hub().Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
