// Overlay backend - captures the screen, OCRs the reward row, and streams
// item boxes and prices to overlay clients over WebSocket.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lootlens/platform/internal/capture"
	"github.com/lootlens/platform/internal/config"
	"github.com/lootlens/platform/internal/frame"
	"github.com/lootlens/platform/internal/market"
	"github.com/lootlens/platform/internal/ocr"
	"github.com/lootlens/platform/internal/orchestrator"
	"github.com/lootlens/platform/internal/server"
	"github.com/lootlens/platform/internal/syncx"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./lootlens.toml)")
	flag.Parse()

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	engine, err := ocr.NewTesseract(cfg.OCR.Languages...)
	if err != nil {
		slog.Error("ocr engine init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	extractor := ocr.NewExtractor(syncx.NewGuard[ocr.Engine](engine), nil)
	sched := ocr.NewScheduler(extractor)

	ch := frame.NewChannel()
	capturer := capture.New()
	defer capturer.Close()
	producer := capture.NewProducer(capturer, ch, cfg.Capture.RateHz)

	client := market.NewClient(cfg.Market.BaseURL, cfg.Market.RequestsPerSec)
	store := market.NewStore(cfg.Market.CachePath)
	prices := market.NewService(client, store, cfg.Market.RefreshInterval, cfg.Market.MaxAge)

	manager := orchestrator.New(cfg, ch, sched, prices)
	srv := server.New(manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.Run(ctx)
	go manager.Run(ctx)
	go func() {
		if err := prices.LoadCatalog(ctx); err != nil {
			slog.Error("market catalog load failed", "error", err)
			return
		}
		prices.Run(ctx)
	}()

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("overlay backend starting", "http", cfg.HTTP.Addr, "market", cfg.Market.BaseURL)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	if err := store.Save(); err != nil {
		slog.Error("price cache save failed", "error", err)
	}
	slog.Info("shutdown complete")
}

func logLevel() slog.Level {
	switch os.Getenv("LOOTLENS_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
