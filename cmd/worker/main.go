package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"holyfit-backend/pkg/container"
	"holyfit-backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup(context.Background())

	handlers := initializeHandlers(c)

	srv := setupAsynqServer(c, handlers)
	scheduler := setupScheduler(c)

	if err := startServices(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("Startup health check failed")
	}

	<-ctx.Done()

	logger.Info("Gracefully stopping worker", nil)
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info("Worker stopped", nil)
}
