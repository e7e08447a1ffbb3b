package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/internal/domains/catalog/repository"
	"holyfit-backend/pkg/cache"
	"holyfit-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

// CacheKeySnapshot stores the last good catalog load.
const CacheKeySnapshot = "catalog:snapshot"

var _ ServiceInterface = (*CatalogService)(nil)

type catalogState struct {
	snapshot model.Snapshot
	byID     map[string]int
}

// CatalogService holds the read-only catalog snapshot. Readers never see a
// partially loaded catalog: the whole state is swapped at once.
type CatalogService struct {
	source   repository.Source
	cache    cache.Cache
	cacheTTL time.Duration
	state    atomic.Pointer[catalogState]
}

func NewCatalogService(source repository.Source, c cache.Cache, cacheTTL time.Duration) *CatalogService {
	s := &CatalogService{
		source:   source,
		cache:    c,
		cacheTTL: cacheTTL,
	}
	s.state.Store(newCatalogState(model.Snapshot{}))
	return s
}

func newCatalogState(snapshot model.Snapshot) *catalogState {
	if snapshot.Products == nil {
		snapshot.Products = []model.Product{}
	}
	if snapshot.Categories == nil {
		snapshot.Categories = []model.Category{}
	}
	byID := make(map[string]int, len(snapshot.Products))
	for i, p := range snapshot.Products {
		byID[p.ID] = i
	}
	return &catalogState{snapshot: snapshot, byID: byID}
}

func (s *CatalogService) Load(ctx context.Context) {
	_, err := s.Warm(ctx)
	if err == nil {
		return
	}

	logger.Error("Catalog fetch failed, falling back to cached snapshot", err)

	// Keep whatever is already loaded when a refresh fails.
	if len(s.state.Load().snapshot.Products) > 0 {
		return
	}

	if s.cache != nil {
		var cached model.Snapshot
		found, cacheErr := s.cache.Get(ctx, CacheKeySnapshot, &cached)
		if cacheErr != nil {
			logger.Error("Failed to read cached catalog snapshot", cacheErr)
		}
		if found {
			s.state.Store(newCatalogState(cached))
			logger.Warn("Serving cached catalog snapshot", map[string]interface{}{
				"products":  len(cached.Products),
				"loaded_at": cached.LoadedAt,
			})
			return
		}
	}

	logger.Warn("Serving empty catalog", nil)
	s.state.Store(newCatalogState(model.Snapshot{LoadedAt: time.Now()}))
}

// Warm fetches from the source, swaps the snapshot in and writes it to the
// cache. Unlike Load it reports a failed fetch and changes nothing.
func (s *CatalogService) Warm(ctx context.Context) (int, error) {
	snapshot, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}

	s.state.Store(newCatalogState(snapshot))
	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKeySnapshot, snapshot, s.cacheTTL); err != nil {
			logger.Error("Failed to cache catalog snapshot", err)
		}
	}
	logger.Info("Catalog loaded", map[string]interface{}{
		"products":   len(snapshot.Products),
		"categories": len(snapshot.Categories),
	})
	return len(snapshot.Products), nil
}

// SyncFromCache adopts the shared snapshot when it was loaded after the one
// held in memory. It reports whether the snapshot changed.
func (s *CatalogService) SyncFromCache(ctx context.Context) (bool, error) {
	if s.cache == nil {
		return false, nil
	}

	var cached model.Snapshot
	found, err := s.cache.Get(ctx, CacheKeySnapshot, &cached)
	if err != nil {
		return false, err
	}
	if !found || !cached.LoadedAt.After(s.state.Load().snapshot.LoadedAt) {
		return false, nil
	}

	s.state.Store(newCatalogState(cached))
	return true, nil
}

// RunCacheSync picks up snapshots warmed by the worker until ctx is done.
func (s *CatalogService) RunCacheSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := s.SyncFromCache(ctx)
			if err != nil {
				logger.Error("Catalog cache sync failed", err)
				continue
			}
			if changed {
				logger.Info("Catalog snapshot updated from cache", map[string]interface{}{
					"products": len(s.state.Load().snapshot.Products),
				})
			}
		}
	}
}

func (s *CatalogService) fetch(ctx context.Context) (model.Snapshot, error) {
	products, err := s.source.FetchProducts(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	categories, err := s.source.FetchCategories(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	if categories == nil {
		categories = categoriesFromProducts(products)
	}
	return model.Snapshot{
		Products:   products,
		Categories: categories,
		LoadedAt:   time.Now(),
	}, nil
}

func (s *CatalogService) Refresh(ctx context.Context) int {
	s.Load(ctx)
	return len(s.state.Load().snapshot.Products)
}

// Products returns a copy of the catalog in source order.
func (s *CatalogService) Products() []model.Product {
	products := s.state.Load().snapshot.Products
	out := make([]model.Product, len(products))
	copy(out, products)
	return out
}

func (s *CatalogService) Categories() []model.Category {
	categories := s.state.Load().snapshot.Categories
	out := make([]model.Category, len(categories))
	copy(out, categories)
	return out
}

func (s *CatalogService) GetProduct(id string) (*model.Product, error) {
	st := s.state.Load()
	i, ok := st.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrProductNotFound, id)
	}
	p := st.snapshot.Products[i]
	return &p, nil
}

func (s *CatalogService) Search(filter model.FilterState) ([]model.Product, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return Apply(s.state.Load().snapshot.Products, filter), nil
}

func (s *CatalogService) Facets() model.Facets {
	products := s.state.Load().snapshot.Products

	facets := model.Facets{
		Brands:   []string{},
		Tags:     []string{},
		MinPrice: decimal.Zero,
		MaxPrice: decimal.Zero,
	}
	brands := make(map[string]struct{})
	tags := make(map[string]struct{})

	for i, p := range products {
		if p.InStock {
			facets.InStock++
		} else {
			facets.OutOfStock++
		}
		if i == 0 || p.Price.LessThan(facets.MinPrice) {
			facets.MinPrice = p.Price
		}
		if i == 0 || p.Price.GreaterThan(facets.MaxPrice) {
			facets.MaxPrice = p.Price
		}
		if p.Brand != "" {
			if _, ok := brands[p.Brand]; !ok {
				brands[p.Brand] = struct{}{}
				facets.Brands = append(facets.Brands, p.Brand)
			}
		}
		for _, t := range p.Tags {
			key := strings.ToLower(t)
			if _, ok := tags[key]; !ok {
				tags[key] = struct{}{}
				facets.Tags = append(facets.Tags, key)
			}
		}
	}

	sort.Strings(facets.Brands)
	sort.Strings(facets.Tags)
	return facets
}

func categoriesFromProducts(products []model.Product) []model.Category {
	seen := make(map[string]struct{})
	categories := make([]model.Category, 0)
	for _, p := range products {
		if p.Category.ID == "" {
			continue
		}
		if _, ok := seen[p.Category.ID]; ok {
			continue
		}
		seen[p.Category.ID] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}
