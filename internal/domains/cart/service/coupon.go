package service

import (
	"context"
	"fmt"
	"strings"

	"holyfit-backend/internal/domains/cart/model"

	"github.com/shopspring/decimal"
)

// CouponValidator resolves a coupon code. Implementations may call out to a
// remote service, so the context is honored.
type CouponValidator interface {
	Lookup(ctx context.Context, code string) (*model.Coupon, error)
}

// StaticCouponTable is the built-in {code -> rule} table.
type StaticCouponTable map[string]model.Coupon

// DefaultCoupons returns the coupon table shipped with the store.
func DefaultCoupons() StaticCouponTable {
	return StaticCouponTable{
		"SAVE10": {
			Code:            "SAVE10",
			DiscountPercent: decimal.NewFromInt(10),
			MinimumSubtotal: decimal.NewFromInt(50),
			Description:     "10% off orders over $50",
		},
		"SAVE20": {
			Code:            "SAVE20",
			DiscountPercent: decimal.NewFromInt(20),
			MinimumSubtotal: decimal.NewFromInt(100),
			Description:     "20% off orders over $100",
		},
		"HOLYFIT15": {
			Code:            "HOLYFIT15",
			DiscountPercent: decimal.NewFromInt(15),
			MinimumSubtotal: decimal.NewFromInt(75),
			Description:     "15% off orders over $75",
		},
		"WELCOME5": {
			Code:            "WELCOME5",
			DiscountPercent: decimal.NewFromInt(5),
			MinimumSubtotal: decimal.Zero,
			Description:     "5% off your first order",
		},
	}
}

func (t StaticCouponTable) Lookup(ctx context.Context, code string) (*model.Coupon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	coupon, ok := t[NormalizeCouponCode(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrCouponNotFound, code)
	}
	return &coupon, nil
}

// NormalizeCouponCode trims and upper-cases user input.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
