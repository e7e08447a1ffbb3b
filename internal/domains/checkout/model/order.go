package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	cartModel "holyfit-backend/internal/domains/cart/model"

	"github.com/shopspring/decimal"
)

// OrderLine is one cart line frozen at checkout time.
type OrderLine struct {
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	LineTotal decimal.Decimal   `json:"line_total"`
	Variants  map[string]string `json:"variants,omitempty"`
}

// OrderSummary is the hand-off document sent to the shop over chat.
type OrderSummary struct {
	Reference  string           `json:"reference"`
	SessionID  string           `json:"session_id"`
	Customer   CustomerInfo     `json:"customer"`
	Lines      []OrderLine      `json:"lines"`
	Totals     cartModel.Totals `json:"totals"`
	CouponCode string           `json:"coupon_code,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// CheckoutResult is returned to the shopper.
type CheckoutResult struct {
	Summary      OrderSummary `json:"summary"`
	Message      string       `json:"message"`
	WhatsAppLink string       `json:"whatsapp_link"`
	Notified     bool         `json:"notified"`
}

// NewOrderSummary freezes cart into an order summary.
func NewOrderSummary(reference, sessionID string, customer CustomerInfo, cart cartModel.Cart, now time.Time) OrderSummary {
	summary := OrderSummary{
		Reference: reference,
		SessionID: sessionID,
		Customer:  customer,
		Lines:     make([]OrderLine, 0, len(cart.Items)),
		Totals:    cart.Totals,
		CreatedAt: now,
	}
	for _, item := range cart.Items {
		summary.Lines = append(summary.Lines, OrderLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.Total,
			Variants:  item.Variants,
		})
	}
	if cart.Coupon != nil {
		summary.CouponCode = cart.Coupon.Code
	}
	return summary
}

// Text renders the summary as the chat message body.
func (o OrderSummary) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order %s\n\n", o.Reference)

	b.WriteString("Customer\n")
	fmt.Fprintf(&b, "Name: %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "Phone: %s\n", o.Customer.Phone)
	if o.Customer.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", o.Customer.Email)
	}
	fmt.Fprintf(&b, "Address: %s, %s\n", o.Customer.Address, o.Customer.City)

	b.WriteString("\nItems\n")
	for _, line := range o.Lines {
		fmt.Fprintf(&b, "- %s x%d @ $%s = $%s\n", line.Name, line.Quantity,
			line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2))
		if v := formatVariants(line.Variants); v != "" {
			fmt.Fprintf(&b, "  (%s)\n", v)
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: $%s\n", o.Totals.Subtotal.StringFixed(2))
	if o.Totals.Discount.IsPositive() {
		fmt.Fprintf(&b, "Discount (%s): -$%s\n", o.CouponCode, o.Totals.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Tax: $%s\n", o.Totals.Tax.StringFixed(2))
	if o.Totals.Shipping.IsZero() {
		b.WriteString("Shipping: FREE\n")
	} else {
		fmt.Fprintf(&b, "Shipping: $%s\n", o.Totals.Shipping.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: $%s\n", o.Totals.Total.StringFixed(2))

	if o.Customer.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", o.Customer.Notes)
	}
	return b.String()
}

func formatVariants(variants map[string]string) string {
	if len(variants) == 0 {
		return ""
	}
	keys := make([]string, 0, len(variants))
	for k := range variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + variants[k]
	}
	return strings.Join(parts, ", ")
}
