package main

import (
	catalogJob "holyfit-backend/internal/domains/catalog/job"
	checkoutJob "holyfit-backend/internal/domains/checkout/job"
	"holyfit-backend/internal/shared"
	"holyfit-backend/pkg/container"

	"github.com/hibiken/asynq"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	orderNotification *checkoutJob.OrderNotificationHandler
	catalogWarm       *catalogJob.WarmSnapshotHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		orderNotification: c.OrderNotificationHandler,
		catalogWarm:       catalogJob.NewWarmSnapshotHandler(c.CatalogService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeOrderNotification, h.orderNotification.ProcessTask)
	mux.HandleFunc(shared.TypeCatalogWarmSnapshot, h.catalogWarm.ProcessTask)
}
