package service

import (
	"context"

	"holyfit-backend/internal/domains/catalog/model"

	"github.com/xuri/excelize/v2"
)

type ServiceInterface interface {
	// Load populates the snapshot from the source. Failures fall back to the
	// cached snapshot and finally to an empty catalog; they are logged, never returned.
	Load(ctx context.Context)

	// Warm fetches from the source, swaps it in and caches it, returning the
	// fetch error instead of falling back.
	Warm(ctx context.Context) (int, error)

	// SyncFromCache adopts a newer snapshot written to the cache by another process.
	SyncFromCache(ctx context.Context) (bool, error)

	// Refresh reloads the snapshot and reports how many products it holds.
	Refresh(ctx context.Context) int

	Products() []model.Product
	Categories() []model.Category
	GetProduct(id string) (*model.Product, error)

	// Search validates the filter and returns the derived view.
	Search(filter model.FilterState) ([]model.Product, error)

	Facets() model.Facets

	// ExportExcel builds a workbook of the filtered view.
	ExportExcel(filter model.FilterState) (*excelize.File, error)
}

// ProductLookup is the read side other domains depend on.
type ProductLookup interface {
	GetProduct(id string) (*model.Product, error)
}
