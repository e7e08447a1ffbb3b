package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxComparisonItems bounds the comparison list; extra adds are dropped.
const MaxComparisonItems = 4

// Item is a saved product reference. Identity is ProductID.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}
