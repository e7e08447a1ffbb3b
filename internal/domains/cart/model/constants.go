package model

import "github.com/shopspring/decimal"

// Cart business constraints
const (
	// MaxItemsPerLine is the maximum quantity allowed on a single cart line
	MaxItemsPerLine = 100
)

// Pricing constants. Tax is a flat rate; shipping is a three-tier step on the subtotal.
var (
	TaxRate = decimal.RequireFromString("0.08")

	FreeShippingThreshold    = decimal.NewFromInt(75)
	ReducedShippingThreshold = decimal.NewFromInt(50)
	ReducedShippingFee       = decimal.RequireFromString("4.99")
	StandardShippingFee      = decimal.RequireFromString("9.99")
)
