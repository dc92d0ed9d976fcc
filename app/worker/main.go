package main

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"equiptrak/internal/queue"
	"equiptrak/pkg/config"
	applogger "equiptrak/pkg/logger"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = logger.Sync() }()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Logger:      logger.Sugar(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
		},
	)

	processor := queue.NewProcessor(queue.NewLogRelay(logger), logger)

	logger.Info("worker started", zap.Int("concurrency", cfg.Worker.Concurrency))
	// Run blocks until SIGTERM or SIGINT.
	if err := srv.Run(processor.Handler()); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
