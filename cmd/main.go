package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/data"
	"github.com/mkuznec/portfolio_dashboard/data/cache"
	"github.com/mkuznec/portfolio_dashboard/data/session"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi/alphaVantageApi"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi/geminiApi"
	"github.com/mkuznec/portfolio_dashboard/internal/externalApi/newsApi"
	"github.com/mkuznec/portfolio_dashboard/internal/reportGenerator/csvGenerator"
	"github.com/mkuznec/portfolio_dashboard/internal/reportGenerator/xlsxGenerator"
	"github.com/mkuznec/portfolio_dashboard/internal/scheduler"
	"github.com/mkuznec/portfolio_dashboard/internal/service/dashboardService"
	"github.com/mkuznec/portfolio_dashboard/internal/transport/httpserver"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	alphaVantageClient := alphaVantageApi.New(cfg)
	newsApiClient := newsApi.New(cfg)
	geminiClient := geminiApi.New(ctx, cfg)

	csvGen := csvGenerator.New()
	xlsxGen := xlsxGenerator.New()

	// cloud storage is optional, the drive export endpoint degrades to 503
	// when no credentials are configured
	var cloudStorage dashboardService.CloudStorage
	var driveApi *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.CredentialsFile != "" {
		driveApi = googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
	}

	dashboardSrv := dashboardService.New(
		cfg,
		alphaVantageClient,
		newsApiClient,
		geminiClient,
		redisCache,
		redisSession,
		csvGen,
		xlsxGen,
		cloudStorage,
	)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh quotes cache", dashboardSrv.RefreshQuotesCache, cfg.Jobs.RefreshQuotesInterval, false)
	if driveApi != nil {
		sched.NewIntervalJob("cleanup drive files", driveApi.DeleteOldFiles, cfg.Jobs.DriveCleanupInterval, true)
	}
	sched.Start()
	defer sched.Stop()

	server := httpserver.New(cfg, dashboardSrv)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.String("err", err.Error()))
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
