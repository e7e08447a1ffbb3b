package main

import (
	"holyfit-backend/internal/infrastructure/queue"
	"holyfit-backend/pkg/container"
	"holyfit-backend/pkg/logger"

	"github.com/rs/zerolog/log"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(redisOpt(c), c.Config.Catalog.WarmCron)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scheduled jobs")
	}

	go func() {
		logger.Info("Scheduler starting", nil)
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("Scheduler failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	logger.Info("Scheduler shutting down", nil)
	s.Scheduler.Shutdown()
}
