package main

import (
	"context"

	"holyfit-backend/internal/shared"
	"holyfit-backend/pkg/container"
	"holyfit-backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// asynqServer wraps asynq.Server with logging on shutdown
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		redisOpt(c),
		asynq.Config{
			Queues: map[string]int{
				shared.QueueCritical: 6,
				shared.QueueDefault:  3,
				shared.QueueLow:      1,
			},
			Concurrency: c.Config.Queue.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.ErrorWithFields("Task failed", err, map[string]interface{}{
					"type": task.Type(),
				})
			}),
		},
	)

	go func() {
		logger.Info("Worker starting", map[string]interface{}{
			"concurrency": c.Config.Queue.Concurrency,
		})
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("Worker failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks up to asynq's ShutdownTimeout.
func (s *asynqServer) Shutdown() {
	logger.Info("Worker shutting down", nil)
	s.Server.Shutdown()
}

func redisOpt(c *container.Container) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Queue.RedisAddr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}
