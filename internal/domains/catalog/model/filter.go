package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// SortKey selects the ordering of a filtered product view.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortReviews   SortKey = "reviews"
	SortNewest    SortKey = "newest"
)

// PriceRange bounds are inclusive. A nil bound is open.
type PriceRange struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// Contains reports whether price lies within the range.
func (r *PriceRange) Contains(price decimal.Decimal) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && price.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && price.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// FilterState is replaced as a whole on every change. The zero value is the
// empty filter: full catalog in relevance order.
type FilterState struct {
	Search      string      `json:"search"`
	CategoryID  string      `json:"category_id,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
	InStockOnly bool        `json:"in_stock_only"`
	MinRating   float64     `json:"min_rating"`
	Brands      []string    `json:"brands,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	SortBy      SortKey     `json:"sort_by"`
}

// Sort returns the effective sort key.
func (f FilterState) Sort() SortKey {
	if f.SortBy == "" {
		return SortRelevance
	}
	return f.SortBy
}

func (f FilterState) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Search, validation.Length(0, 200)),
		validation.Field(&f.MinRating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&f.SortBy, validation.In(
			SortRelevance, SortPriceAsc, SortPriceDesc, SortRating, SortReviews, SortNewest,
		).Error("unknown sort key")),
		validation.Field(&f.PriceRange, validation.By(validatePriceRange)),
	)
}

func validatePriceRange(value interface{}) error {
	pr, _ := value.(*PriceRange)
	if pr == nil {
		return nil
	}
	if (pr.Min != nil && pr.Min.IsNegative()) || (pr.Max != nil && pr.Max.IsNegative()) {
		return errors.New("price bounds must be >= 0")
	}
	if pr.Min != nil && pr.Max != nil && pr.Min.GreaterThan(*pr.Max) {
		return errors.New("min price must not exceed max price")
	}
	return nil
}
