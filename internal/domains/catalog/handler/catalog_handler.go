package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/internal/domains/catalog/service"
	"holyfit-backend/internal/shared/middleware"
	"holyfit-backend/internal/shared/response"
	"holyfit-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// BrowsingRecorder records what the visitor looks at.
type BrowsingRecorder interface {
	ViewProduct(ctx context.Context, sessionID, productID string) (*model.Product, error)
	RecordSearch(ctx context.Context, sessionID, query string) error
}

type Handler struct {
	service  service.ServiceInterface
	browsing BrowsingRecorder
}

func NewHandler(service service.ServiceInterface, browsing BrowsingRecorder) *Handler {
	return &Handler{
		service:  service,
		browsing: browsing,
	}
}

// ListProducts - GET /v1/products
// Query params: q, category, min_price, max_price, in_stock, min_rating, brand, tag, sort, page, limit
func (h *Handler) ListProducts(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, limit := parsePagination(c)

	products, err := h.service.Search(filter)
	if err != nil {
		if !response.ValidationError(c, err) {
			response.BadRequest(c, err.Error())
		}
		return
	}

	if filter.Search != "" && h.browsing != nil {
		if err := h.browsing.RecordSearch(c.Request.Context(), middleware.GetSessionID(c), filter.Search); err != nil {
			logger.Error("Failed to record search", err)
		}
	}

	response.SuccessWithMeta(c, http.StatusOK, "Products retrieved successfully",
		paginate(products, page, limit),
		response.NewMeta(page, limit, len(products)),
	)
}

// GetProduct - GET /v1/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	var (
		product *model.Product
		err     error
	)
	if sessionID := middleware.GetSessionID(c); sessionID != "" && h.browsing != nil {
		product, err = h.browsing.ViewProduct(c.Request.Context(), sessionID, id)
	} else {
		product, err = h.service.GetProduct(id)
	}

	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalServerError(c, "Failed to get product")
		return
	}

	response.Success(c, http.StatusOK, "Product retrieved successfully", product)
}

// Facets - GET /v1/products/facets
func (h *Handler) Facets(c *gin.Context) {
	response.Success(c, http.StatusOK, "Facets retrieved successfully", h.service.Facets())
}

// ListCategories - GET /v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	response.Success(c, http.StatusOK, "Categories retrieved successfully", h.service.Categories())
}

// ExportProducts - GET /v1/products/export
// Same filters as ListProducts, without pagination.
func (h *Handler) ExportProducts(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	f, err := h.service.ExportExcel(filter)
	if err != nil {
		if !response.ValidationError(c, err) {
			logger.Error("Failed to export products", err)
			response.InternalServerError(c, "Failed to export products")
		}
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write export workbook", err)
		response.InternalServerError(c, "Failed to export products")
		return
	}

	filename := fmt.Sprintf("holyfit-products-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// RefreshCatalog - POST /v1/admin/catalog/refresh
func (h *Handler) RefreshCatalog(c *gin.Context) {
	count := h.service.Refresh(c.Request.Context())
	response.Success(c, http.StatusOK, "Catalog refreshed", gin.H{"products": count})
}

func (h *Handler) parseFilter(c *gin.Context) (model.FilterState, error) {
	filter := model.FilterState{
		Search:     strings.TrimSpace(c.Query("q")),
		CategoryID: c.Query("category"),
		Brands:     splitList(c.QueryArray("brand")),
		Tags:       splitList(c.QueryArray("tag")),
		SortBy:     model.SortKey(c.DefaultQuery("sort", string(model.SortRelevance))),
	}

	if v := c.Query("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid in_stock: %q", v)
		}
		filter.InStockOnly = inStock
	}

	if v := c.Query("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid min_rating: %q", v)
		}
		filter.MinRating = rating
	}

	minStr, maxStr := c.Query("min_price"), c.Query("max_price")
	if minStr != "" || maxStr != "" {
		pr := &model.PriceRange{}
		if minStr != "" {
			v, err := decimal.NewFromString(minStr)
			if err != nil {
				return filter, fmt.Errorf("invalid min_price: %q", minStr)
			}
			pr.Min = &v
		}
		if maxStr != "" {
			v, err := decimal.NewFromString(maxStr)
			if err != nil {
				return filter, fmt.Errorf("invalid max_price: %q", maxStr)
			}
			pr.Max = &v
		}
		filter.PriceRange = pr
	}

	return filter, nil
}

func parsePagination(c *gin.Context) (int, int) {
	page, limit := defaultPage, defaultLimit
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= maxLimit {
		limit = l
	}
	return page, limit
}

func paginate(products []model.Product, page, limit int) []model.Product {
	start := (page - 1) * limit
	if start >= len(products) {
		return []model.Product{}
	}
	end := min(start+limit, len(products))
	return products[start:end]
}

// splitList accepts both ?brand=a&brand=b and ?brand=a,b.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
