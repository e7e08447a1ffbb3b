package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cartService "holyfit-backend/internal/domains/cart/service"
	catalogModel "holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/internal/domains/store/model"
	"holyfit-backend/internal/domains/store/service"
	"holyfit-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog map[string]catalogModel.Product

func (s stubCatalog) GetProduct(id string) (*catalogModel.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, catalogModel.ErrProductNotFound
	}
	return &p, nil
}

type nopPersister struct{}

func (nopPersister) Load(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	return nil, nil
}
func (nopPersister) Save(ctx context.Context, snapshot model.Snapshot) error { return nil }
func (nopPersister) Delete(ctx context.Context, sessionID string) error    { return nil }

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func setupRouter(sessionID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	catalog := stubCatalog{
		"band": {ID: "band", Name: "Resistance Band", Price: decimal.NewFromInt(20), InStock: true},
		"mat":  {ID: "mat", Name: "Yoga Mat", Price: decimal.NewFromInt(30), InStock: false},
		"tee": {
			ID: "tee", Name: "Training Tee", Price: decimal.NewFromInt(25), InStock: true,
			Variants: []catalogModel.ProductVariant{{Type: "size", Value: "M"}},
		},
	}
	svc := service.NewStoreService(catalog, cartService.DefaultCoupons(), nopPersister{}, time.Hour)
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeySessionID, sessionID)
		c.Next()
	})
	r.GET("/v1/store", h.GetStore)
	r.GET("/v1/cart", h.GetCart)
	r.POST("/v1/cart/items", h.AddItem)
	r.PUT("/v1/cart/items/:line_id", h.UpdateItem)
	r.DELETE("/v1/cart/items/:line_id", h.RemoveItem)
	r.POST("/v1/cart/coupon", h.ApplyCoupon)
	r.POST("/v1/wishlist", h.AddToWishlist)
	r.POST("/v1/comparison", h.AddToComparison)
	r.PUT("/v1/preferences", h.UpdatePreferences)
	r.POST("/v1/analytics/page-view", h.TrackPageView)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestStoreHandler_AddItem(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"adds item", `{"product_id":"band","quantity":3}`, http.StatusCreated, ""},
		{"malformed body", `{"product_id":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing product id", `{"quantity":1}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown product", `{"product_id":"ghost"}`, http.StatusNotFound, "NOT_FOUND"},
		{"out of stock", `{"product_id":"mat"}`, http.StatusConflict, "OUT_OF_STOCK"},
		{"missing variant", `{"product_id":"tee"}`, http.StatusBadRequest, "INVALID_VARIANT"},
		{"over cap", `{"product_id":"band","quantity":101}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter("s1")

			status, resp := do(t, r, http.MethodPost, "/v1/cart/items", tt.body)

			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCode == "" {
				assert.True(t, resp.Success)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestStoreHandler_CartFlow(t *testing.T) {
	r := setupRouter("s1")

	status, _ := do(t, r, http.MethodPost, "/v1/cart/items", `{"product_id":"band","quantity":3}`)
	require.Equal(t, http.StatusCreated, status)

	status, resp := do(t, r, http.MethodPost, "/v1/cart/coupon", `{"code":"save10"}`)
	require.Equal(t, http.StatusOK, status)
	var cart struct {
		Total    string `json:"total"`
		Discount string `json:"discount"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	assert.Equal(t, "6", cart.Discount)
	assert.Equal(t, "63.31", cart.Total)

	status, resp = do(t, r, http.MethodPut, "/v1/cart/items/band", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, status)
	var emptied struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &emptied))
	assert.Empty(t, emptied.Items)
}

func TestStoreHandler_CouponErrors(t *testing.T) {
	r := setupRouter("s1")
	_, _ = do(t, r, http.MethodPost, "/v1/cart/items", `{"product_id":"band","quantity":1}`)

	status, resp := do(t, r, http.MethodPost, "/v1/cart/coupon", `{"code":"SAVE10"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "COUPON_MINIMUM_NOT_MET", resp.Error.Code)

	status, resp = do(t, r, http.MethodPost, "/v1/cart/coupon", `{"code":"BOGUS"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "INVALID_COUPON", resp.Error.Code)
}

func TestStoreHandler_MissingSession(t *testing.T) {
	r := setupRouter("")

	status, resp := do(t, r, http.MethodGet, "/v1/cart", "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SESSION_REQUIRED", resp.Error.Code)
}

func TestStoreHandler_PreferencesValidation(t *testing.T) {
	r := setupRouter("s1")

	status, resp := do(t, r, http.MethodPut, "/v1/preferences", `{"theme":"neon"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "theme")
}

func TestStoreHandler_StoreSnapshot(t *testing.T) {
	r := setupRouter("s1")
	_, _ = do(t, r, http.MethodPost, "/v1/wishlist", `{"product_id":"band"}`)
	_, _ = do(t, r, http.MethodPost, "/v1/analytics/page-view", "")

	status, resp := do(t, r, http.MethodGet, "/v1/store", "")
	require.Equal(t, http.StatusOK, status)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	assert.Equal(t, "s1", snap.SessionID)
	assert.Len(t, snap.Wishlist, 1)
	assert.Equal(t, 1, snap.Analytics.PageViews)
	assert.Equal(t, "system", snap.Preferences.Theme)
}
