package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/portfolio_builder/config"
	"github.com/KotFed0t/portfolio_builder/data"
	"github.com/KotFed0t/portfolio_builder/data/cache"
	"github.com/KotFed0t/portfolio_builder/data/localStorage"
	"github.com/KotFed0t/portfolio_builder/data/repository/postgres"
	"github.com/KotFed0t/portfolio_builder/internal/colorGenerator"
	"github.com/KotFed0t/portfolio_builder/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_builder/internal/externalApi/yahooApi"
	"github.com/KotFed0t/portfolio_builder/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/portfolio_builder/internal/scheduler"
	"github.com/KotFed0t/portfolio_builder/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_builder/internal/service/quoteService"
	"github.com/KotFed0t/portfolio_builder/internal/tgbot"
	"github.com/KotFed0t/portfolio_builder/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(ctx, cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(pgClient)

	redisClient := data.NewRedisClient(ctx, cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	holdingsStorage := localStorage.NewRedisStorage(redisClient, cfg)

	quoteSrv := quoteService.New(yahooApi.New(cfg), redisCache)

	googleCloudStorage, err := googleDriveApi.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to init google drive", slog.String("err", err.Error()))
		os.Exit(1)
	}

	portfolioSrv := portfolioService.New(
		cfg,
		quoteSrv,
		pgRepo,
		holdingsStorage,
		colorGenerator.New(),
		xslsxGenerator.New(),
		googleCloudStorage,
	)
	defer portfolioSrv.Close()

	sched, err := scheduler.New()
	if err != nil {
		slog.Error("failed to init scheduler", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if err = sched.NewIntervalJob("refresh quotes", portfolioSrv.RefreshAllQuotes, cfg.Jobs.RefreshQuotesInterval, false); err != nil {
		slog.Error("failed to create job", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if err = sched.NewIntervalJob("delete old reports", portfolioSrv.DeleteOldReports, cfg.Jobs.DeleteOldReportsInterval, true); err != nil {
		slog.Error("failed to create job", slog.String("err", err.Error()))
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(portfolioSrv)

	tgBot, err := tgbot.New(cfg, tgController)
	if err != nil {
		slog.Error("failed to init tgbot", slog.String("err", err.Error()))
		os.Exit(1)
	}
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
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
