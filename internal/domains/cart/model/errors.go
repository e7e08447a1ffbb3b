package model

import "errors"

// Custom errors for cart operations
var (
	ErrInvalidQuantity          = errors.New("quantity must be > 0")
	ErrQuantityTooHigh          = errors.New("quantity cannot exceed 100")
	ErrOutOfStock               = errors.New("product is out of stock")
	ErrVariantSelectionRequired = errors.New("variant selection required")
	ErrUnknownVariant           = errors.New("unknown variant selection")
	ErrCouponNotFound           = errors.New("coupon code not found")
	ErrCouponMinimumNotMet      = errors.New("cart subtotal is below the coupon minimum")
	ErrCouponInFlight           = errors.New("another coupon application is in progress")
)
