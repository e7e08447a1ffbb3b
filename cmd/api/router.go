package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"holyfit-backend/internal/shared/middleware"
	"holyfit-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	sessionConfig := middleware.DefaultSessionConfig(c.Config.Store.TTL, c.Config.Store.CookieSecure)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCatalogRoutes(v1, c, sessionConfig)
		setupAdminRoutes(v1, c)
		setupStoreRoutes(v1, c, sessionConfig)
		setupCheckoutRoutes(v1, c, sessionConfig)
	}

	return router
}

// ========================================
// CATALOG ROUTES
// ========================================
func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container, sessionConfig middleware.SessionConfig) {
	products := v1.Group("/products")
	products.Use(middleware.Session(sessionConfig))
	{
		products.GET("", c.CatalogHandler.ListProducts)
		products.GET("/export", c.CatalogHandler.ExportProducts)
		products.GET("/facets", c.CatalogHandler.Facets)
		products.GET("/:id", c.CatalogHandler.GetProduct)
	}

	v1.GET("/categories", c.CatalogHandler.ListCategories)
}

// ========================================
// ADMIN ROUTES
// ========================================
// The admin routes carry no authentication. They are rate limited and
// CATALOG_ADMIN_REFRESH=false leaves them unregistered.
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	if !c.Config.Catalog.AdminRefresh {
		return
	}

	admin := v1.Group("/admin", c.AdminLimiter.Middleware())
	{
		admin.POST("/catalog/refresh", c.CatalogHandler.RefreshCatalog)
	}
}

// ========================================
// STORE ROUTES (session scoped)
// ========================================
func setupStoreRoutes(v1 *gin.RouterGroup, c *container.Container, sessionConfig middleware.SessionConfig) {
	store := v1.Group("")
	store.Use(middleware.Session(sessionConfig))
	{
		store.GET("/store", c.StoreHandler.GetStore)

		cart := store.Group("/cart")
		{
			cart.GET("", c.StoreHandler.GetCart)
			cart.DELETE("", c.StoreHandler.ClearCart)
			cart.POST("/items", c.StoreHandler.AddItem)
			cart.PUT("/items/:line_id", c.StoreHandler.UpdateItem)
			cart.DELETE("/items/:line_id", c.StoreHandler.RemoveItem)
			cart.POST("/coupon", c.StoreHandler.ApplyCoupon)
			cart.DELETE("/coupon", c.StoreHandler.RemoveCoupon)
		}

		wishlist := store.Group("/wishlist")
		{
			wishlist.GET("", c.StoreHandler.GetWishlist)
			wishlist.POST("", c.StoreHandler.AddToWishlist)
			wishlist.DELETE("/:product_id", c.StoreHandler.RemoveFromWishlist)
		}

		comparison := store.Group("/comparison")
		{
			comparison.GET("", c.StoreHandler.GetComparison)
			comparison.POST("", c.StoreHandler.AddToComparison)
			comparison.DELETE("/:product_id", c.StoreHandler.RemoveFromComparison)
		}

		store.GET("/recently-viewed", c.StoreHandler.GetRecentlyViewed)
		store.GET("/search-history", c.StoreHandler.GetSearchHistory)
		store.DELETE("/search-history", c.StoreHandler.ClearSearchHistory)
		store.GET("/preferences", c.StoreHandler.GetPreferences)
		store.PUT("/preferences", c.StoreHandler.UpdatePreferences)
		store.POST("/analytics/page-view", c.StoreHandler.TrackPageView)
	}
}

// ========================================
// CHECKOUT ROUTES
// ========================================
func setupCheckoutRoutes(v1 *gin.RouterGroup, c *container.Container, sessionConfig middleware.SessionConfig) {
	v1.POST("/checkout",
		middleware.Session(sessionConfig),
		c.CheckoutLimiter.Middleware(),
		c.CheckoutHandler.Checkout,
	)
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Redis down only degrades the store; sessions stay in memory.
		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		services := gin.H{
			"redis":            redisStatus,
			"catalog_products": len(appCtx.CatalogService.Products()),
		}

		statusCode := http.StatusOK
		if appCtx.DB != nil {
			dbStatus := "ok"
			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
			services["database"] = dbStatus
			if stats, err := appCtx.DB.Stats(); err == nil {
				services["database_pool"] = stats
			}
		}

		health["services"] = services
		c.JSON(statusCode, health)
	}
}
