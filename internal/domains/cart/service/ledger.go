package service

import (
	"context"
	"fmt"

	"holyfit-backend/internal/domains/cart/model"
	catalogModel "holyfit-backend/internal/domains/catalog/model"

	"github.com/shopspring/decimal"
)

// Ledger owns the cart lines and recomputes every derived total from scratch
// after each mutation. It is not safe for concurrent use; the owning session
// serializes access.
type Ledger struct {
	items    []model.CartItem
	coupon   *model.Coupon
	totals   model.Totals
	applying bool
}

func NewLedger() *Ledger {
	l := &Ledger{items: []model.CartItem{}}
	l.recalculate()
	return l
}

// RestoreLedger rebuilds a ledger from a persisted cart. Stored totals are
// ignored and recomputed; lines with a non-positive quantity are dropped.
func RestoreLedger(cart model.Cart) *Ledger {
	l := &Ledger{items: make([]model.CartItem, 0, len(cart.Items))}
	for _, item := range cart.Items {
		if item.Quantity <= 0 {
			continue
		}
		item.Variants = copySelections(item.Variants)
		item.Total = item.CalculateTotal()
		l.items = append(l.items, item)
	}
	if cart.Coupon != nil {
		c := *cart.Coupon
		l.coupon = &c
	}
	l.recalculate()
	return l
}

// UnitPrice is the base price plus the modifiers of every selected variant.
func UnitPrice(product *catalogModel.Product, selections map[string]string) decimal.Decimal {
	price := product.Price
	for t, v := range selections {
		if variant, ok := product.FindVariant(t, v); ok {
			price = price.Add(variant.PriceModifier)
		}
	}
	return price
}

// Add merges quantity into the line identified by product + selections, or
// appends a new line.
func (l *Ledger) Add(product *catalogModel.Product, quantity int, selections map[string]string) (model.CartItem, error) {
	if quantity <= 0 {
		return model.CartItem{}, model.ErrInvalidQuantity
	}

	lineID := model.LineID(product.ID, selections)
	for i := range l.items {
		if l.items[i].ID != lineID {
			continue
		}
		merged := l.items[i].Quantity + quantity
		if merged > model.MaxItemsPerLine {
			return model.CartItem{}, fmt.Errorf("%w (current: %d, adding: %d)",
				model.ErrQuantityTooHigh, l.items[i].Quantity, quantity)
		}
		l.items[i].Quantity = merged
		l.items[i].Total = l.items[i].CalculateTotal()
		l.recalculate()
		return copyItem(l.items[i]), nil
	}

	if quantity > model.MaxItemsPerLine {
		return model.CartItem{}, model.ErrQuantityTooHigh
	}

	item := model.CartItem{
		ID:        lineID,
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.Image,
		UnitPrice: UnitPrice(product, selections),
		Quantity:  quantity,
		Variants:  copySelections(selections),
	}
	item.Total = item.CalculateTotal()

	l.items = append(l.items, item)
	l.recalculate()
	return copyItem(item), nil
}

// UpdateQuantity rewrites a line's quantity from its retained unit price.
// quantity <= 0 removes the line; an unknown line is a no-op.
func (l *Ledger) UpdateQuantity(lineID string, quantity int) error {
	if quantity <= 0 {
		l.Remove(lineID)
		return nil
	}
	for i := range l.items {
		if l.items[i].ID == lineID {
			if quantity > model.MaxItemsPerLine {
				return model.ErrQuantityTooHigh
			}
			l.items[i].Quantity = quantity
			l.items[i].Total = l.items[i].CalculateTotal()
			l.recalculate()
			return nil
		}
	}
	return nil
}

// Remove deletes a line; unknown ids are ignored.
func (l *Ledger) Remove(lineID string) {
	for i := range l.items {
		if l.items[i].ID == lineID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.recalculate()
			return
		}
	}
}

// Clear empties the cart and drops the coupon.
func (l *Ledger) Clear() {
	l.items = []model.CartItem{}
	l.coupon = nil
	l.recalculate()
}

// BeginCouponApplication marks a coupon application in flight. A second
// attempt before CompleteCouponApplication is rejected.
func (l *Ledger) BeginCouponApplication() error {
	if l.applying {
		return model.ErrCouponInFlight
	}
	l.applying = true
	return nil
}

// CouponInFlight reports whether BeginCouponApplication is awaiting completion.
func (l *Ledger) CouponInFlight() bool {
	return l.applying
}

// CompleteCouponApplication finishes an application started with
// BeginCouponApplication. The minimum is checked against the subtotal at this
// point; nothing changes when it is not met or the lookup failed.
func (l *Ledger) CompleteCouponApplication(coupon *model.Coupon, lookupErr error) (bool, error) {
	l.applying = false

	if lookupErr != nil {
		return false, lookupErr
	}
	if coupon == nil {
		return false, model.ErrCouponNotFound
	}
	if l.totals.Subtotal.LessThan(coupon.MinimumSubtotal) {
		return false, fmt.Errorf("%w: minimum %s, current %s", model.ErrCouponMinimumNotMet,
			coupon.MinimumSubtotal.StringFixed(2), l.totals.Subtotal.StringFixed(2))
	}

	c := *coupon
	l.coupon = &c
	l.recalculate()
	return true, nil
}

// ApplyCoupon looks the code up and applies it in one step.
func (l *Ledger) ApplyCoupon(ctx context.Context, validator CouponValidator, code string) (bool, error) {
	if err := l.BeginCouponApplication(); err != nil {
		return false, err
	}
	coupon, err := validator.Lookup(ctx, code)
	return l.CompleteCouponApplication(coupon, err)
}

func (l *Ledger) RemoveCoupon() {
	if l.coupon == nil {
		return
	}
	l.coupon = nil
	l.recalculate()
}

func (l *Ledger) Subtotal() decimal.Decimal {
	return l.totals.Subtotal
}

func (l *Ledger) Len() int {
	return len(l.items)
}

// Snapshot returns a deep copy safe to hand to other goroutines.
func (l *Ledger) Snapshot() model.Cart {
	cart := model.Cart{
		Items:  make([]model.CartItem, len(l.items)),
		Totals: l.totals,
	}
	for i, item := range l.items {
		cart.Items[i] = copyItem(item)
	}
	if l.coupon != nil {
		c := *l.coupon
		cart.Coupon = &c
	}
	return cart
}

func (l *Ledger) recalculate() {
	l.totals = CalculateTotals(l.items, l.coupon)
}

func copyItem(item model.CartItem) model.CartItem {
	item.Variants = copySelections(item.Variants)
	return item
}

func copySelections(selections map[string]string) map[string]string {
	if len(selections) == 0 {
		return nil
	}
	out := make(map[string]string, len(selections))
	for k, v := range selections {
		out[k] = v
	}
	return out
}
