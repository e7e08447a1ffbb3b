package service

import (
	"context"

	"holyfit-backend/internal/domains/checkout/model"
)

type ServiceInterface interface {
	// Checkout turns the session cart into an order summary and a chat link,
	// queues the shop notification, then empties the cart.
	Checkout(ctx context.Context, sessionID string, customer model.CustomerInfo) (*model.CheckoutResult, error)
}
