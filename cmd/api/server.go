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

	"holyfit-backend/pkg/container"
	"holyfit-backend/pkg/logger"

	"github.com/rs/zerolog/log"
)

func Serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ========================================
	// 1. BUILD DI CONTAINER
	// ========================================
	appContainer, err := container.NewContainer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}

	// ========================================
	// 2. LOAD CATALOG + BACKGROUND WORK
	// ========================================
	// Load never fails: it falls back to the cached snapshot, then to empty.
	loadCtx, cancelLoad := context.WithTimeout(ctx, appContainer.Config.Catalog.Timeout*2)
	appContainer.CatalogService.Load(loadCtx)
	cancelLoad()

	go appContainer.CatalogService.RunCacheSync(ctx, appContainer.Config.Catalog.SyncInterval)
	go appContainer.StoreService.RunJanitor(ctx, appContainer.Config.Store.JanitorInterval)
	go appContainer.CheckoutLimiter.Cleanup(ctx)
	go appContainer.AdminLimiter.Cleanup(ctx)
	if appContainer.DB != nil {
		go appContainer.DB.MonitorPoolHealth(ctx, time.Minute)
	}

	// ========================================
	// 3. CONFIGURE HTTP SERVER
	// ========================================
	router := SetupRouter(appContainer)

	port := appContainer.Config.App.Port
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", port),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// ========================================
	// 4. START SERVER (NON-BLOCKING)
	// ========================================
	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":        port,
			"environment": appContainer.Config.App.Environment,
			"health":      fmt.Sprintf("http://localhost:%s/api/v1/health", port),
		})

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", err)
			os.Exit(1)
		}
	}()

	// ========================================
	// 5. GRACEFUL SHUTDOWN
	// ========================================
	<-ctx.Done()
	logger.Info("Shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	appContainer.Cleanup(shutdownCtx)
	logger.Info("Server exited gracefully", nil)
}
