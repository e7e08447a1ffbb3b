package model

import (
	"time"

	cartModel "holyfit-backend/internal/domains/cart/model"
	wishlistModel "holyfit-backend/internal/domains/wishlist/model"

	"github.com/shopspring/decimal"
)

const (
	MaxRecentlyViewed = 10
	MaxSearchHistory  = 10
)

// Preferences are the visitor's UI settings.
type Preferences struct {
	Theme             string `json:"theme"`     // light | dark | system
	ViewMode          string `json:"view_mode"` // grid | list
	Newsletter        bool   `json:"newsletter"`
	PreferredCategory string `json:"preferred_category,omitempty"`
}

// DefaultPreferences is what a new session starts with.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "system", ViewMode: "grid"}
}

// Analytics are plain counters, never reset except with the session itself.
type Analytics struct {
	PageViews    int `json:"page_views"`
	ProductViews int `json:"product_views"`
	Searches     int `json:"searches"`
	AddToCarts   int `json:"add_to_carts"`
	Checkouts    int `json:"checkouts"`
}

// ViewedProduct is one entry of the recently viewed list.
type ViewedProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	ViewedAt  time.Time       `json:"viewed_at"`
}

// Snapshot is the persisted and externally visible state of one session.
// It is stored as-is; there is no schema version.
type Snapshot struct {
	SessionID      string               `json:"session_id"`
	Cart           cartModel.Cart       `json:"cart"`
	Wishlist       []wishlistModel.Item `json:"wishlist"`
	Comparison     []wishlistModel.Item `json:"comparison"`
	RecentlyViewed []ViewedProduct      `json:"recently_viewed"`
	SearchHistory  []string             `json:"search_history"`
	Preferences    Preferences          `json:"user_preferences"`
	Analytics      Analytics            `json:"analytics"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
