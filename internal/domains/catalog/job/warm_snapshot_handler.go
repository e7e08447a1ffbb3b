package job

import (
	"context"
	"fmt"

	"holyfit-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// Warmer fetches the catalog and writes the snapshot to the shared cache.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

type WarmSnapshotHandler struct {
	catalog Warmer
}

func NewWarmSnapshotHandler(catalog Warmer) *WarmSnapshotHandler {
	return &WarmSnapshotHandler{catalog: catalog}
}

func (h *WarmSnapshotHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	count, err := h.catalog.Warm(ctx)
	if err != nil {
		return fmt.Errorf("catalog warm: %w", err)
	}

	logger.Info("Catalog snapshot warmed", map[string]interface{}{
		"products": count,
	})
	return nil
}
