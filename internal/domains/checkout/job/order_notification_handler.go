package job

import (
	"context"
	"fmt"

	"holyfit-backend/internal/domains/checkout/model"
	"holyfit-backend/internal/shared/utils"
	"holyfit-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// Notifier delivers an order message to the shop.
type Notifier interface {
	Notify(ctx context.Context, summary model.OrderSummary, message string) error
}

// LogNotifier only writes the order to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, summary model.OrderSummary, message string) error {
	logger.Info("Order notification", map[string]interface{}{
		"reference": summary.Reference,
		"customer":  summary.Customer.Name,
		"phone":     summary.Customer.Phone,
		"total":     summary.Totals.Total.StringFixed(2),
		"lines":     len(summary.Lines),
		"message":   message,
	})
	return nil
}

type OrderNotificationHandler struct {
	notifier Notifier
}

func NewOrderNotificationHandler(notifier Notifier) *OrderNotificationHandler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &OrderNotificationHandler{notifier: notifier}
}

func (h *OrderNotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.OrderNotificationPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		// A malformed payload will never succeed.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	logger.Info("Processing order notification task", map[string]interface{}{
		"reference":  payload.Summary.Reference,
		"session_id": payload.Summary.SessionID,
	})

	if err := h.notifier.Notify(ctx, payload.Summary, payload.Message); err != nil {
		return fmt.Errorf("notify order %s: %w", payload.Summary.Reference, err)
	}
	return nil
}
