package service

import (
	"holyfit-backend/internal/domains/cart/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateTotals is the pricing function: (lines, coupon) -> totals.
//
// Business Logic:
//   - subtotal = sum of line totals
//   - discount = subtotal x percent / 100 when a coupon is applied
//   - tax      = (subtotal - discount) x 8%
//   - shipping = 0 above 75, 4.99 above 50, 9.99 otherwise
//   - total    = subtotal - discount + tax + shipping
//
// Each output is rounded to cents before it is stored, so recomputing with the
// same inputs is idempotent. A cart without lines prices to zero everywhere.
func CalculateTotals(items []model.CartItem, coupon *model.Coupon) model.Totals {
	totals := model.Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
	}
	if len(items) == 0 {
		return totals
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
		totals.TotalItems += item.Quantity
	}
	totals.Subtotal = subtotal.Round(2)
	totals.Discount = CalculateDiscount(coupon, totals.Subtotal)
	totals.Tax = totals.Subtotal.Sub(totals.Discount).Mul(model.TaxRate).Round(2)
	totals.Shipping = CalculateShipping(totals.Subtotal)
	totals.Total = totals.Subtotal.
		Sub(totals.Discount).
		Add(totals.Tax).
		Add(totals.Shipping).
		Round(2)

	return totals
}

// CalculateDiscount applies the coupon percentage to subtotal.
func CalculateDiscount(coupon *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	return subtotal.Mul(coupon.DiscountPercent).Div(hundred).Round(2)
}

// CalculateShipping is a step function with no smoothing between tiers.
func CalculateShipping(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThan(model.FreeShippingThreshold):
		return decimal.Zero
	case subtotal.GreaterThan(model.ReducedShippingThreshold):
		return model.ReducedShippingFee
	default:
		return model.StandardShippingFee
	}
}
