package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the id+name pair a product belongs to.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductVariant is a selectable option (size, color...) of one product.
// Variants sharing a Type are mutually exclusive in a single cart line.
type ProductVariant struct {
	Type          string          `json:"type"`
	Value         string          `json:"value"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

// Product is immutable once loaded into the catalog snapshot.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Category      Category         `json:"category"`
	Brand         string           `json:"brand,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	InStock       bool             `json:"in_stock"`
	Rating        *float64         `json:"rating,omitempty"`
	ReviewCount   int              `json:"review_count"`
	Variants      []ProductVariant `json:"variants,omitempty"`
	Image         string           `json:"image,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RatingValue returns the rating, 0 when the product has none.
func (p *Product) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// HasDiscount reports whether an original price above the current one is shown.
func (p *Product) HasDiscount() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// VariantTypes returns the distinct variant types in definition order.
func (p *Product) VariantTypes() []string {
	seen := make(map[string]struct{}, len(p.Variants))
	types := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		if _, ok := seen[v.Type]; ok {
			continue
		}
		seen[v.Type] = struct{}{}
		types = append(types, v.Type)
	}
	return types
}

// FindVariant looks up the variant with the given type and value.
func (p *Product) FindVariant(variantType, value string) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.Type == variantType && v.Value == value {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// SearchText is the lowercased haystack used by free-text search:
// name, description, category name and tags.
func (p *Product) SearchText() string {
	parts := make([]string, 0, 4+len(p.Tags))
	parts = append(parts, p.Name, p.Description, p.Category.Name)
	parts = append(parts, p.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Facets summarizes the catalog for filter UIs.
type Facets struct {
	Brands     []string        `json:"brands"`
	Tags       []string        `json:"tags"`
	InStock    int             `json:"in_stock"`
	OutOfStock int             `json:"out_of_stock"`
	MinPrice   decimal.Decimal `json:"min_price"`
	MaxPrice   decimal.Decimal `json:"max_price"`
}

// Snapshot is one immutable load of the catalog.
type Snapshot struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	LoadedAt   time.Time  `json:"loaded_at"`
}
