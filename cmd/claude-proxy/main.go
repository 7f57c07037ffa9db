package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/plateful/internal/config"
	"github.com/dukerupert/plateful/internal/logging"
	"github.com/dukerupert/plateful/internal/middleware"
	"github.com/dukerupert/plateful/internal/proxy"
)

func main() {
	cfg := config.LoadProxy()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	mux := http.NewServeMux()
	mux.Handle("POST /api/claude", proxy.NewHandler(proxy.Config{
		UpstreamURL: cfg.UpstreamURL,
		Model:       cfg.Model,
	}, logger.With("component", "proxy")))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	var h http.Handler = middleware.CORS(cfg.AllowedOrigins)(mux)
	h = middleware.RequestLogger(logger.With("component", "http"))(h)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("claude proxy starting", "addr", httpServer.Addr, "upstream", cfg.UpstreamURL, "model", cfg.Model)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
