package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"holyfit-backend/internal/domains/catalog/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/products":
			_, _ = w.Write([]byte(`[{"id":"p1","name":"Foam Roller","price":"24.50","in_stock":true,
				"category":{"id":"recovery","name":"Recovery"},
				"variants":[{"type":"size","value":"L","price_modifier":"2"}]}]`))
		case "/api/categories":
			_, _ = w.Write([]byte(`[{"id":"recovery","name":"Recovery"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/api/", time.Second)

	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "24.50", products[0].Price.StringFixed(2))
	assert.Equal(t, "Recovery", products[0].Category.Name)
	require.Len(t, products[0].Variants, 1)

	categories, err := src.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Category{{ID: "recovery", Name: "Recovery"}}, categories)
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second).FetchProducts(context.Background())

	assert.ErrorIs(t, err, model.ErrSourceStatus)
	assert.ErrorContains(t, err, "503")
}

func TestHTTPSource_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second).FetchCategories(context.Background())

	assert.ErrorContains(t, err, "decode response")
}
