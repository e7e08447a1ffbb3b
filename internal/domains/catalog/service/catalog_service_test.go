package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"holyfit-backend/internal/domains/catalog/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// FAKES
// ========================================

type fakeSource struct {
	products   []model.Product
	categories []model.Category
	err        error
	calls      int
}

func (f *fakeSource) FetchProducts(ctx context.Context) ([]model.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeSource) FetchCategories(ctx context.Context) ([]model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

// ========================================
// TESTS
// ========================================

func TestCatalogService_LoadFromSource(t *testing.T) {
	source := &fakeSource{products: testCatalog()}
	cache := newMemoryCache()
	svc := NewCatalogService(source, cache, time.Hour)

	svc.Load(context.Background())

	assert.Len(t, svc.Products(), 4)
	// Categories are derived from products when the source has none.
	assert.Equal(t, []model.Category{{ID: "shoes", Name: "Shoes"}, {ID: "gear", Name: "Gear"}}, svc.Categories())

	var cached model.Snapshot
	found, err := cache.Get(context.Background(), CacheKeySnapshot, &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, cached.Products, 4)
}

func TestCatalogService_LoadFallsBackToCachedSnapshot(t *testing.T) {
	cache := newMemoryCache()
	warm := NewCatalogService(&fakeSource{products: testCatalog()}, cache, time.Hour)
	warm.Load(context.Background())

	cold := NewCatalogService(&fakeSource{err: errors.New("connection refused")}, cache, time.Hour)
	cold.Load(context.Background())

	assert.Len(t, cold.Products(), 4)
	p, err := cold.GetProduct("p3")
	require.NoError(t, err)
	assert.Equal(t, "Red Yoga Mat", p.Name)
}

func TestCatalogService_LoadFallsBackToEmpty(t *testing.T) {
	svc := NewCatalogService(&fakeSource{err: errors.New("boom")}, newMemoryCache(), time.Hour)

	svc.Load(context.Background())

	require.NotNil(t, svc.Products())
	assert.Empty(t, svc.Products())
	assert.Empty(t, svc.Categories())
}

func TestCatalogService_RefreshKeepsSnapshotOnFailure(t *testing.T) {
	source := &fakeSource{products: testCatalog()}
	svc := NewCatalogService(source, nil, time.Hour)
	svc.Load(context.Background())

	source.err = errors.New("timeout")
	count := svc.Refresh(context.Background())

	assert.Equal(t, 4, count)
	assert.Equal(t, 2, source.calls)
}

func TestCatalogService_WarmReportsFailure(t *testing.T) {
	svc := NewCatalogService(&fakeSource{err: errors.New("timeout")}, newMemoryCache(), time.Hour)

	count, err := svc.Warm(context.Background())

	assert.Error(t, err)
	assert.Zero(t, count)
}

func TestCatalogService_SyncFromCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	svc := NewCatalogService(&fakeSource{products: testCatalog()[:1]}, cache, time.Hour)
	svc.Load(ctx)
	require.Len(t, svc.Products(), 1)

	// Nothing newer than what this instance wrote itself.
	changed, err := svc.SyncFromCache(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	// Another process warms the cache with a fuller catalog.
	warmed := model.Snapshot{Products: testCatalog(), LoadedAt: time.Now().Add(time.Minute)}
	require.NoError(t, cache.Set(ctx, CacheKeySnapshot, warmed, time.Hour))

	changed, err = svc.SyncFromCache(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, svc.Products(), 4)

	changed, err = svc.SyncFromCache(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCatalogService_SyncFromCacheWithoutCache(t *testing.T) {
	svc := NewCatalogService(&fakeSource{}, nil, time.Hour)

	changed, err := svc.SyncFromCache(context.Background())

	assert.NoError(t, err)
	assert.False(t, changed)
}

func TestCatalogService_GetProduct(t *testing.T) {
	svc := NewCatalogService(&fakeSource{products: testCatalog()}, nil, time.Hour)
	svc.Load(context.Background())

	p, err := svc.GetProduct("p2")
	require.NoError(t, err)
	assert.Equal(t, "Blue Running Shoe", p.Name)

	// Mutating the returned copy must not leak into the snapshot.
	p.Name = "changed"
	again, _ := svc.GetProduct("p2")
	assert.Equal(t, "Blue Running Shoe", again.Name)

	_, err = svc.GetProduct("missing")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestCatalogService_SearchValidates(t *testing.T) {
	svc := NewCatalogService(&fakeSource{products: testCatalog()}, nil, time.Hour)
	svc.Load(context.Background())

	_, err := svc.Search(model.FilterState{SortBy: "bogus"})
	assert.Error(t, err)

	result, err := svc.Search(model.FilterState{CategoryID: "gear"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p4", "p3"}, ids(result))
}

func TestCatalogService_Facets(t *testing.T) {
	svc := NewCatalogService(&fakeSource{products: testCatalog()}, nil, time.Hour)
	svc.Load(context.Background())

	facets := svc.Facets()

	assert.Equal(t, []string{"Fuel", "Stride", "Zen"}, facets.Brands)
	assert.Equal(t, []string{"blue", "red", "running", "yoga"}, facets.Tags)
	assert.Equal(t, 3, facets.InStock)
	assert.Equal(t, 1, facets.OutOfStock)
	assert.Equal(t, "12", facets.MinPrice.String())
	assert.Equal(t, "95", facets.MaxPrice.String())
}

func TestCatalogService_ExportExcel(t *testing.T) {
	svc := NewCatalogService(&fakeSource{products: testCatalog()}, nil, time.Hour)
	svc.Load(context.Background())

	f, err := svc.ExportExcel(model.FilterState{CategoryID: "shoes", SortBy: model.SortPriceAsc})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header + 2 products")
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "p1", rows[1][0])
	assert.Equal(t, "p2", rows[2][0])
}
