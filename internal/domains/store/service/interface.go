package service

import (
	"context"
	"time"

	cartModel "holyfit-backend/internal/domains/cart/model"
	catalogModel "holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/internal/domains/store/model"
	wishlistModel "holyfit-backend/internal/domains/wishlist/model"
)

type ServiceInterface interface {
	// Snapshot returns a copy of the whole session state.
	Snapshot(ctx context.Context, sessionID string) (model.Snapshot, error)

	// Cart returns a copy of the session cart.
	Cart(ctx context.Context, sessionID string) (cartModel.Cart, error)

	// AddToCart validates the request against the catalog before touching the cart.
	// Quantity 0 means 1.
	AddToCart(ctx context.Context, sessionID string, req model.AddToCartRequest) (cartModel.CartItem, cartModel.Cart, error)

	// UpdateCartItem sets a line's quantity; 0 removes it, unknown lines are ignored.
	UpdateCartItem(ctx context.Context, sessionID, lineID string, quantity int) (cartModel.Cart, error)
	RemoveCartItem(ctx context.Context, sessionID, lineID string) (cartModel.Cart, error)
	ClearCart(ctx context.Context, sessionID string) (cartModel.Cart, error)

	// ApplyCoupon rejects a second application while one is in flight.
	ApplyCoupon(ctx context.Context, sessionID, code string) (cartModel.Cart, error)
	RemoveCoupon(ctx context.Context, sessionID string) (cartModel.Cart, error)

	AddToWishlist(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error)
	RemoveFromWishlist(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error)

	// AddToComparison silently ignores adds once the comparison is full.
	AddToComparison(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error)
	RemoveFromComparison(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error)

	// ViewProduct returns the product and records the view.
	ViewProduct(ctx context.Context, sessionID, productID string) (*catalogModel.Product, error)

	RecordSearch(ctx context.Context, sessionID, query string) error
	ClearSearchHistory(ctx context.Context, sessionID string) error

	UpdatePreferences(ctx context.Context, sessionID string, prefs model.Preferences) (model.Preferences, error)
	TrackPageView(ctx context.Context, sessionID, page string) (model.Analytics, error)

	// CompleteCheckout hands the cart to fn under the session lock. When fn
	// succeeds the cart is cleared and the checkout counted.
	CompleteCheckout(ctx context.Context, sessionID string, fn func(cart cartModel.Cart) error) error

	// Flush writes every session with unsaved changes.
	Flush(ctx context.Context)

	// RunJanitor evicts idle sessions from memory until ctx is done.
	RunJanitor(ctx context.Context, interval time.Duration)
}
