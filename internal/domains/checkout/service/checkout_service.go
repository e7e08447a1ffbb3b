package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	cartModel "holyfit-backend/internal/domains/cart/model"
	"holyfit-backend/internal/domains/checkout/model"
	storeService "holyfit-backend/internal/domains/store/service"
	"holyfit-backend/internal/infrastructure/queue"
	"holyfit-backend/internal/shared"
	"holyfit-backend/internal/shared/utils"
	"holyfit-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// CartCheckout is the slice of the store the checkout needs.
type CartCheckout interface {
	CompleteCheckout(ctx context.Context, sessionID string, fn func(cart cartModel.Cart) error) error
}

var _ CartCheckout = (storeService.ServiceInterface)(nil)

type CheckoutService struct {
	store          CartCheckout
	enqueuer       queue.TaskEnqueuer
	whatsAppNumber string
	now            func() time.Time
}

var _ ServiceInterface = (*CheckoutService)(nil)

func NewCheckoutService(store CartCheckout, enqueuer queue.TaskEnqueuer, whatsAppNumber string) *CheckoutService {
	return &CheckoutService{
		store:          store,
		enqueuer:       enqueuer,
		whatsAppNumber: whatsAppNumber,
		now:            time.Now,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, customer model.CustomerInfo) (*model.CheckoutResult, error) {
	customer = trimCustomer(customer)
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	var result *model.CheckoutResult
	err := s.store.CompleteCheckout(ctx, sessionID, func(cart cartModel.Cart) error {
		if cart.IsEmpty() {
			return model.ErrEmptyCart
		}

		summary := model.NewOrderSummary(NewReference(), sessionID, customer, cart, s.now())
		message := summary.Text()

		result = &model.CheckoutResult{
			Summary:      summary,
			Message:      message,
			WhatsAppLink: WhatsAppLink(s.whatsAppNumber, message),
			Notified:     s.enqueueNotification(ctx, summary, message),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"session_id": sessionID,
		"reference":  result.Summary.Reference,
		"total":      result.Summary.Totals.Total.StringFixed(2),
		"items":      result.Summary.Totals.TotalItems,
		"notified":   result.Notified,
	})
	return result, nil
}

// enqueueNotification reports whether the task was queued. A failure does not
// fail the checkout; the shopper still has the chat link.
func (s *CheckoutService) enqueueNotification(ctx context.Context, summary model.OrderSummary, message string) bool {
	if s.enqueuer == nil {
		return false
	}

	task, err := utils.MarshalTask(shared.TypeOrderNotification, model.OrderNotificationPayload{
		Summary: summary,
		Message: message,
	})
	if err != nil {
		logger.Error("Failed to marshal order notification task", err)
		return false
	}

	_, err = s.enqueuer.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		logger.ErrorWithFields("Failed to enqueue order notification", err, map[string]interface{}{
			"reference": summary.Reference,
		})
		return false
	}
	return true
}

// NewReference returns a short human-friendly order reference.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "HF-" + strings.ToUpper(id[:10])
}

// WhatsAppLink builds a wa.me deep link carrying message. Non-digits in
// number are dropped; an empty number lets the user pick the contact.
func WhatsAppLink(number, message string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits.String() + "?text=" + text
}

func trimCustomer(c model.CustomerInfo) model.CustomerInfo {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}
