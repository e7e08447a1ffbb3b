package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"holyfit-backend/pkg/container"
	"holyfit-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const healthAddr = ":9999"

// startServices checks Redis, since the worker is useless without it, and
// starts the health endpoint.
func startServices(ctx context.Context, c *container.Container) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Cache.Ping(pingCtx); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	logger.Info("Redis connection OK", nil)

	go startHealthCheckServer(ctx)
	return nil
}

func startHealthCheckServer(ctx context.Context) {
	router := gin.New()
	router.GET("/health", func(g *gin.Context) {
		g.JSON(http.StatusOK, gin.H{"status": "UP", "service": "holyfit-worker"})
	})
	router.GET("/ready", func(g *gin.Context) {
		g.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	srv := &http.Server{Addr: healthAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Health check server starting", map[string]interface{}{"addr": healthAddr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Health check server failed", err)
	}
}
