package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hostmond/hostmond/internal/alerting"
	"github.com/hostmond/hostmond/internal/config"
	"github.com/hostmond/hostmond/internal/detector"
	"github.com/hostmond/hostmond/internal/hotplug"
	"github.com/hostmond/hostmond/internal/hub"
	"github.com/hostmond/hostmond/internal/probe"
	"github.com/hostmond/hostmond/internal/scheduler"
	"github.com/hostmond/hostmond/internal/server"
	"github.com/hostmond/hostmond/internal/session"
	"github.com/hostmond/hostmond/internal/state"
)

func main() {
	configPath := flag.String("config", "/etc/hostmond/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := initLogger(cfg.Logging)
	logger.Info("Starting hostmond",
		"version", "1.0.0",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"auth_mode", cfg.Auth.Mode,
	)

	validator := buildValidator(cfg)

	store := state.NewStore()
	store.Set(state.NewSnapshot())

	monitorHub := hub.New(validator, store, cfg.Monitor.GetHandshakeTimeout(), logger)
	collector := probe.NewCollector(logger)
	changeDetector := detector.New(detector.Thresholds{
		DiskTempWarnC:  cfg.Monitor.DiskTempWarnC,
		DiskTempDeltaC: cfg.Monitor.DiskTempDeltaC,
	})
	dispatcher := alerting.NewDispatcherFromConfig(cfg.Alerts, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(
		collector,
		changeDetector,
		monitorHub,
		dispatcher,
		store,
		cfg.Monitor.GetTickInterval(),
		logger,
	)

	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Monitoring loop error", "error", err)
		}
	}()

	watcher := hotplug.NewWatcher(logger)
	go func() {
		if err := sched.RunHotplug(ctx, watcher); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Hotplug monitoring unavailable", "error", err)
		}
	}()

	router := server.NewRouter(monitorHub, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	monitorHub.Shutdown()

	logger.Info("Stopped gracefully")
}

// buildValidator selects the credential check for the websocket
// handshake: session file freshness by default, JWT verification when
// configured.
func buildValidator(cfg *config.Config) session.Validator {
	if cfg.Auth.Mode == "jwt" {
		return session.NewJWTValidator(cfg.Auth.JWTSecret)
	}
	return session.NewFileStore(cfg.Auth.SessionDirs, cfg.Auth.GetSessionMaxAge())
}

func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
