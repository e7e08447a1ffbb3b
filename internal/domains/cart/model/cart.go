package model

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the cart: a product plus one variant selection.
type CartItem struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	Image     string            `json:"image,omitempty"`
	UnitPrice decimal.Decimal   `json:"unit_price"` // base price + variant modifiers
	Quantity  int               `json:"quantity"`
	Total     decimal.Decimal   `json:"total_price"`
	Variants  map[string]string `json:"variants,omitempty"` // type -> value
}

// CalculateTotal returns unit price x quantity rounded to cents.
func (ci *CartItem) CalculateTotal() decimal.Decimal {
	return ci.UnitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity))).Round(2)
}

// Coupon is a percentage discount gated by a minimum subtotal.
type Coupon struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MinimumSubtotal decimal.Decimal `json:"minimum_subtotal"`
	Description     string          `json:"description,omitempty"`
}

// Totals are the derived monetary fields of a cart, each rounded to cents.
type Totals struct {
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
}

// Cart is a read-only snapshot of the ledger.
type Cart struct {
	Items  []CartItem `json:"items"`
	Coupon *Coupon    `json:"coupon,omitempty"`
	Totals
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the line with the given id.
func (c *Cart) FindItem(lineID string) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// LineID builds the canonical line identity: the product id alone, or the
// product id followed by the sorted "type:value" selections joined with "-".
// Identical selections always produce the same id regardless of map order.
func LineID(productID string, selections map[string]string) string {
	if len(selections) == 0 {
		return productEscaper.Replace(productID)
	}

	pairs := make([]string, 0, len(selections))
	for t, v := range selections {
		pairs = append(pairs, segmentEscaper.Replace(t)+":"+segmentEscaper.Replace(v))
	}
	sort.Strings(pairs)

	return productEscaper.Replace(productID) + "-" + strings.Join(pairs, "-")
}

// Separators inside ids, variant types and values are percent-encoded so
// that distinct selections never share a line id. Every variant segment
// holds exactly one ':' and a product id never does.
var (
	segmentEscaper = strings.NewReplacer("%", "%25", "-", "%2D", ":", "%3A")
	productEscaper = strings.NewReplacer("%", "%25", ":", "%3A")
)
