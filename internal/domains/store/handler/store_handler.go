package handler

import (
	"net/http"

	"holyfit-backend/internal/domains/store/model"
	"holyfit-backend/internal/domains/store/service"
	"holyfit-backend/internal/shared/middleware"
	"holyfit-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Handler serves the session-scoped store: cart, wishlist, comparison,
// browsing history, preferences and analytics.
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// GetStore - GET /v1/store
func (h *Handler) GetStore(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Store retrieved successfully", snap)
}

// ===================================
// CART
// ===================================

// GetCart - GET /v1/cart
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.service.Cart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// AddItem - POST /v1/cart/items
func (h *Handler) AddItem(c *gin.Context) {
	var req model.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, cart, err := h.service.AddToCart(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Item added to cart", gin.H{
		"item": item,
		"cart": cart,
	})
}

// UpdateItem - PUT /v1/cart/items/:line_id
// Quantity 0 removes the line.
func (h *Handler) UpdateItem(c *gin.Context) {
	var req model.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		handleError(c, err)
		return
	}

	cart, err := h.service.UpdateCartItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("line_id"), req.Quantity)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Cart updated", cart)
}

// RemoveItem - DELETE /v1/cart/items/:line_id
func (h *Handler) RemoveItem(c *gin.Context) {
	cart, err := h.service.RemoveCartItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("line_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Item removed", cart)
}

// ClearCart - DELETE /v1/cart
func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.service.ClearCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Cart cleared", cart)
}

// ApplyCoupon - POST /v1/cart/coupon
func (h *Handler) ApplyCoupon(c *gin.Context) {
	var req model.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		handleError(c, err)
		return
	}

	cart, err := h.service.ApplyCoupon(c.Request.Context(), middleware.GetSessionID(c), req.Code)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Coupon applied", cart)
}

// RemoveCoupon - DELETE /v1/cart/coupon
func (h *Handler) RemoveCoupon(c *gin.Context) {
	cart, err := h.service.RemoveCoupon(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Coupon removed", cart)
}

// ===================================
// WISHLIST / COMPARISON
// ===================================

// GetWishlist - GET /v1/wishlist
func (h *Handler) GetWishlist(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Wishlist retrieved successfully", snap.Wishlist)
}

// AddToWishlist - POST /v1/wishlist
func (h *Handler) AddToWishlist(c *gin.Context) {
	var req model.ProductRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		handleError(c, err)
		return
	}

	items, err := h.service.AddToWishlist(c.Request.Context(), middleware.GetSessionID(c), req.ProductID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Wishlist updated", items)
}

// RemoveFromWishlist - DELETE /v1/wishlist/:product_id
func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	items, err := h.service.RemoveFromWishlist(c.Request.Context(), middleware.GetSessionID(c), c.Param("product_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Wishlist updated", items)
}

// GetComparison - GET /v1/comparison
func (h *Handler) GetComparison(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comparison retrieved successfully", snap.Comparison)
}

// AddToComparison - POST /v1/comparison
// Adds beyond the comparison limit are ignored.
func (h *Handler) AddToComparison(c *gin.Context) {
	var req model.ProductRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		handleError(c, err)
		return
	}

	items, err := h.service.AddToComparison(c.Request.Context(), middleware.GetSessionID(c), req.ProductID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comparison updated", items)
}

// RemoveFromComparison - DELETE /v1/comparison/:product_id
func (h *Handler) RemoveFromComparison(c *gin.Context) {
	items, err := h.service.RemoveFromComparison(c.Request.Context(), middleware.GetSessionID(c), c.Param("product_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comparison updated", items)
}

// ===================================
// BROWSING / PREFERENCES / ANALYTICS
// ===================================

// GetRecentlyViewed - GET /v1/recently-viewed
func (h *Handler) GetRecentlyViewed(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Recently viewed retrieved successfully", snap.RecentlyViewed)
}

// GetSearchHistory - GET /v1/search-history
func (h *Handler) GetSearchHistory(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Search history retrieved successfully", snap.SearchHistory)
}

// ClearSearchHistory - DELETE /v1/search-history
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	if err := h.service.ClearSearchHistory(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Search history cleared", []string{})
}

// GetPreferences - GET /v1/preferences
func (h *Handler) GetPreferences(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Preferences retrieved successfully", snap.Preferences)
}

// UpdatePreferences - PUT /v1/preferences
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req model.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	prefs, err := h.service.UpdatePreferences(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Preferences updated", prefs)
}

type pageViewRequest struct {
	Page string `json:"page"`
}

// TrackPageView - POST /v1/analytics/page-view
func (h *Handler) TrackPageView(c *gin.Context) {
	var req pageViewRequest
	// The body is optional.
	_ = c.ShouldBindJSON(&req)

	analytics, err := h.service.TrackPageView(c.Request.Context(), middleware.GetSessionID(c), req.Page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Page view recorded", analytics)
}
