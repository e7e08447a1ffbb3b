package queue

import (
	"time"

	"holyfit-backend/internal/shared"
	"holyfit-backend/internal/shared/utils"
	"holyfit-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// CatalogWarmPayload carries nothing; the worker reloads from the configured source.
type CatalogWarmPayload struct{}

type Scheduler struct {
	scheduler *asynq.Scheduler
	warmCron  string
}

// NewScheduler creates the periodic task scheduler. An empty warmCron
// disables the catalog warm job.
func NewScheduler(redisOpt asynq.RedisClientOpt, warmCron string) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		warmCron:  warmCron,
	}
}

func (s *Scheduler) RegisterJobs() error {
	if s.warmCron == "" {
		logger.Info("Catalog warm job disabled", nil)
		return nil
	}
	return s.registerCatalogWarmJob()
}

// ================================================
// Catalog snapshot warm-up
// ================================================
// Keeps catalog:snapshot fresh in Redis so API instances that start while the
// catalog source is down still have something to serve.
func (s *Scheduler) registerCatalogWarmJob() error {
	task, err := utils.MarshalTask(shared.TypeCatalogWarmSnapshot, CatalogWarmPayload{})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		s.warmCron,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register catalog warm job", err)
		return err
	}

	logger.Info("Registered catalog warm job", map[string]interface{}{"cron": s.warmCron})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
