package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockroom/console/cmd/stockroom/cli"
	"github.com/stockroom/console/internal/app"
	"github.com/stockroom/console/internal/platform/cache"
	"github.com/stockroom/console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	if len(os.Args) > 2 && os.Args[1] == "jobs" {
		os.Exit(runJobs(ctx, redisOpts, os.Args[2:], logger))
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	console, err := app.NewConsole(ctx, app.ConsoleParams{
		Config:    cfg,
		Logger:    logger,
		Redis:     redisClient,
		Inspector: inspector,
	})
	if err != nil {
		logger.Error("build console", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.MasterDataWarmup {
		warmup(ctx, redisOpts, logger)
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      console.Handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// warmup asks the worker to populate reference data before the first user
// needs it. Failure only costs a slower first page.
func warmup(ctx context.Context, redisOpts asynq.RedisClientOpt, logger *slog.Logger) {
	client := jobs.NewClient(redisOpts)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	if _, err := client.EnqueueMasterDataRefresh(ctx, jobs.MasterDataRefreshPayload{Reason: "startup"}); err != nil {
		logger.Warn("enqueue master data warmup", slog.Any("error", err))
	}
}

func runJobs(ctx context.Context, redisOpts asynq.RedisClientOpt, args []string, logger *slog.Logger) int {
	client := jobs.NewClient(redisOpts)
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		_ = inspector.Close()
		_ = client.Close()
	}()
	if err := cli.NewJobsCLI(client, inspector, os.Stdout).Run(ctx, args); err != nil {
		logger.Error("jobs command", slog.Any("error", err))
		return 1
	}
	return 0
}
