package repository

import (
	"context"

	"holyfit-backend/internal/domains/catalog/model"
)

// Source is the read-only catalog collaborator (content API or database).
type Source interface {
	FetchProducts(ctx context.Context) ([]model.Product, error)
	FetchCategories(ctx context.Context) ([]model.Category, error)
}
