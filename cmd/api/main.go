package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"yatube/internal/app"
	"yatube/internal/router"
	"yatube/internal/service"
	"yatube/pkg/config"
	"yatube/pkg/logging"
	"yatube/pkg/telemetry"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a config file")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Yatube", zap.String("driver", cfg.Database.Driver), zap.Bool("redis", cfg.Redis.Enabled))
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	stores, err := app.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("Failed to close stores", zap.Error(err))
		}
	}()
	services := app.NewServices(cfg, stores)

	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.New(app.RouterDeps(cfg, stores, services))
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.Outbox.Enabled {
		sender, closeSender := app.OutboxSender(cfg, stores)
		defer func() {
			if err := closeSender(); err != nil {
				logger.Warn("Failed to close outbox sender", zap.Error(err))
			}
		}()
		relayer := service.NewOutboxRelayer(stores.Outbox, sender, cfg.Outbox.BatchSize, cfg.Outbox.Interval)
		go relayer.Run(ctx)
		logger.Info("Outbox relayer started", zap.Duration("interval", cfg.Outbox.Interval))
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go app.ClearCacheOn(ctx, stores.PageCache, hup)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
