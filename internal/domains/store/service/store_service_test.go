package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	cartModel "holyfit-backend/internal/domains/cart/model"
	cartService "holyfit-backend/internal/domains/cart/service"
	catalogModel "holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/internal/domains/store/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// FAKES
// ========================================

type fakeCatalog map[string]catalogModel.Product

func (f fakeCatalog) GetProduct(id string) (*catalogModel.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalogModel.ErrProductNotFound, id)
	}
	return &p, nil
}

type memPersister struct {
	mu      sync.Mutex
	data    map[string]model.Snapshot
	saves   int
	loadErr error
	saveErr error
}

func newMemPersister() *memPersister {
	return &memPersister{data: make(map[string]model.Snapshot)}
}

func (m *memPersister) Load(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	snap, ok := m.data[sessionID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *memPersister) Save(ctx context.Context, snapshot model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[snapshot.SessionID] = snapshot
	return nil
}

func (m *memPersister) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

func (m *memPersister) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// slowCoupons blocks every lookup until release is closed.
type slowCoupons struct {
	started chan struct{}
	release chan struct{}
}

func (s *slowCoupons) Lookup(ctx context.Context, code string) (*cartModel.Coupon, error) {
	close(s.started)
	<-s.release
	return cartService.DefaultCoupons().Lookup(ctx, code)
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"band": {ID: "band", Name: "Resistance Band", Price: decimal.NewFromInt(20), InStock: true},
		"tee": {
			ID: "tee", Name: "Training Tee", Price: decimal.NewFromInt(25), InStock: true,
			Variants: []catalogModel.ProductVariant{
				{Type: "size", Value: "M"},
				{Type: "size", Value: "L", PriceModifier: decimal.NewFromInt(2)},
			},
		},
		"mat":  {ID: "mat", Name: "Yoga Mat", Price: decimal.NewFromInt(30), InStock: false},
		"p1":   {ID: "p1", Name: "P1", Price: decimal.NewFromInt(1), InStock: true},
		"p2":   {ID: "p2", Name: "P2", Price: decimal.NewFromInt(2), InStock: true},
		"p3":   {ID: "p3", Name: "P3", Price: decimal.NewFromInt(3), InStock: true},
		"p4":   {ID: "p4", Name: "P4", Price: decimal.NewFromInt(4), InStock: true},
		"p5":   {ID: "p5", Name: "P5", Price: decimal.NewFromInt(5), InStock: true},
		"p6":   {ID: "p6", Name: "P6", Price: decimal.NewFromInt(6), InStock: true},
		"p7":   {ID: "p7", Name: "P7", Price: decimal.NewFromInt(7), InStock: true},
		"p8":   {ID: "p8", Name: "P8", Price: decimal.NewFromInt(8), InStock: true},
		"p9":   {ID: "p9", Name: "P9", Price: decimal.NewFromInt(9), InStock: true},
		"p10":  {ID: "p10", Name: "P10", Price: decimal.NewFromInt(10), InStock: true},
		"p11":  {ID: "p11", Name: "P11", Price: decimal.NewFromInt(11), InStock: true},
		"p12":  {ID: "p12", Name: "P12", Price: decimal.NewFromInt(12), InStock: true},
	}
}

func newTestService(p *memPersister) *StoreService {
	return NewStoreService(testCatalog(), cartService.DefaultCoupons(), p, 30*time.Minute)
}

// ========================================
// CART
// ========================================

func TestStoreService_AddToCart(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	svc := newTestService(p)

	_, _, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 2})
	require.NoError(t, err)
	item, cart, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band"})
	require.NoError(t, err)

	assert.Equal(t, 3, item.Quantity, "quantity 0 defaults to 1")
	assert.Equal(t, "69.79", cart.Total.StringFixed(2))

	snap, err := svc.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Analytics.AddToCarts)
	assert.Equal(t, 2, p.saveCount())
}

func TestStoreService_AddToCartRejections(t *testing.T) {
	tests := []struct {
		name    string
		req     model.AddToCartRequest
		wantErr error
	}{
		{"unknown product", model.AddToCartRequest{ProductID: "nope", Quantity: 1}, catalogModel.ErrProductNotFound},
		{"out of stock", model.AddToCartRequest{ProductID: "mat", Quantity: 1}, cartModel.ErrOutOfStock},
		{"missing variant", model.AddToCartRequest{ProductID: "tee", Quantity: 1}, cartModel.ErrVariantSelectionRequired},
		{
			"unknown variant",
			model.AddToCartRequest{ProductID: "tee", Quantity: 1, Variants: map[string]string{"size": "XS"}},
			cartModel.ErrUnknownVariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newMemPersister()
			svc := newTestService(p)

			_, _, err := svc.AddToCart(context.Background(), "s1", tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, p.saveCount())
		})
	}
}

func TestStoreService_AddToCartValidatesRequest(t *testing.T) {
	svc := newTestService(newMemPersister())

	_, _, err := svc.AddToCart(context.Background(), "s1", model.AddToCartRequest{ProductID: "band", Quantity: -1})
	assert.Error(t, err)

	_, _, err = svc.AddToCart(context.Background(), "s1", model.AddToCartRequest{Quantity: 1})
	assert.Error(t, err)
}

func TestStoreService_SessionRequired(t *testing.T) {
	svc := newTestService(newMemPersister())

	_, err := svc.Cart(context.Background(), "  ")
	assert.ErrorIs(t, err, model.ErrSessionRequired)

	_, _, err = svc.AddToCart(context.Background(), "", model.AddToCartRequest{ProductID: "band"})
	assert.ErrorIs(t, err, model.ErrSessionRequired)
}

func TestStoreService_UnchangedCartIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	svc := newTestService(p)

	_, err := svc.RemoveCartItem(ctx, "s1", "missing")
	require.NoError(t, err)
	_, err = svc.UpdateCartItem(ctx, "s1", "missing", 3)
	require.NoError(t, err)

	assert.Zero(t, p.saveCount())
}

func TestStoreService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())
	item, _, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{
		ProductID: "tee", Quantity: 1, Variants: map[string]string{"size": "L"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tee-size:L", item.ID)

	cart, err := svc.UpdateCartItem(ctx, "s1", item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "108.00", cart.Subtotal.StringFixed(2))

	cart, err = svc.UpdateCartItem(ctx, "s1", item.ID, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestStoreService_Coupons(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())
	_, _, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 2})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, "s1", "SAVE10")
	assert.ErrorIs(t, err, cartModel.ErrCouponMinimumNotMet)

	_, _, err = svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.ApplyCoupon(ctx, "s1", "save10")
	require.NoError(t, err)
	assert.Equal(t, "6.00", cart.Discount.StringFixed(2))

	cart, err = svc.RemoveCoupon(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, cart.Coupon)
}

func TestStoreService_CouponInFlight(t *testing.T) {
	ctx := context.Background()
	coupons := &slowCoupons{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewStoreService(testCatalog(), coupons, newMemPersister(), time.Hour)
	_, _, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 5})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ApplyCoupon(ctx, "s1", "SAVE10")
		done <- err
	}()
	<-coupons.started

	_, err = svc.ApplyCoupon(ctx, "s1", "SAVE20")
	assert.ErrorIs(t, err, cartModel.ErrCouponInFlight)

	// Other operations are not blocked while the lookup is pending.
	_, err = svc.Cart(ctx, "s1")
	assert.NoError(t, err)

	close(coupons.release)
	require.NoError(t, <-done)

	cart, err := svc.Cart(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, cart.Coupon)
	assert.Equal(t, "SAVE10", cart.Coupon.Code)
}

func TestStoreService_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 1})
		}()
	}
	wg.Wait()

	cart, err := svc.Cart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 50, cart.Items[0].Quantity)
}

// ========================================
// WISHLIST / COMPARISON
// ========================================

func TestStoreService_Wishlist(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())

	items, err := svc.AddToWishlist(ctx, "s1", "band")
	require.NoError(t, err)
	items, err = svc.AddToWishlist(ctx, "s1", "band")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.AddToWishlist(ctx, "s1", "ghost")
	assert.ErrorIs(t, err, catalogModel.ErrProductNotFound)

	items, err = svc.RemoveFromWishlist(ctx, "s1", "band")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStoreService_ComparisonBounded(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())

	var items []string
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		list, err := svc.AddToComparison(ctx, "s1", id)
		require.NoError(t, err)
		items = items[:0]
		for _, it := range list {
			items = append(items, it.ProductID)
		}
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, items)

	list, err := svc.RemoveFromComparison(ctx, "s1", "p1")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

// ========================================
// BROWSING
// ========================================

func TestStoreService_RecentlyViewed(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())

	for i := 1; i <= 12; i++ {
		_, err := svc.ViewProduct(ctx, "s1", fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}
	_, err := svc.ViewProduct(ctx, "s1", "p5")
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, "s1")
	require.NoError(t, err)

	var got []string
	for _, v := range snap.RecentlyViewed {
		got = append(got, v.ProductID)
	}
	assert.Equal(t, []string{"p5", "p12", "p11", "p10", "p9", "p8", "p7", "p6", "p4", "p3"}, got)
	assert.Equal(t, 13, snap.Analytics.ProductViews)

	_, err = svc.ViewProduct(ctx, "s1", "ghost")
	assert.ErrorIs(t, err, catalogModel.ErrProductNotFound)
}

func TestStoreService_SearchHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())

	for i := 0; i < 11; i++ {
		require.NoError(t, svc.RecordSearch(ctx, "s1", fmt.Sprintf("query %d", i)))
	}
	require.NoError(t, svc.RecordSearch(ctx, "s1", "  "))
	require.NoError(t, svc.RecordSearch(ctx, "s1", "QUERY 5"))

	snap, err := svc.Snapshot(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.SearchHistory, 10)
	assert.Equal(t, "QUERY 5", snap.SearchHistory[0])
	assert.Equal(t, "query 10", snap.SearchHistory[1])
	assert.NotContains(t, snap.SearchHistory, "query 5")
	assert.Equal(t, 12, snap.Analytics.Searches)

	require.NoError(t, svc.ClearSearchHistory(ctx, "s1"))
	snap, _ = svc.Snapshot(ctx, "s1")
	assert.Empty(t, snap.SearchHistory)
}

func TestStoreService_UpdatePreferences(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())

	prefs, err := svc.UpdatePreferences(ctx, "s1", model.Preferences{Theme: " DARK ", Newsletter: true})
	require.NoError(t, err)
	assert.Equal(t, model.Preferences{Theme: "dark", ViewMode: "grid", Newsletter: true}, prefs)

	_, err = svc.UpdatePreferences(ctx, "s1", model.Preferences{Theme: "neon"})
	assert.Error(t, err)
}

func TestStoreService_TrackPageView(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())

	_, err := svc.TrackPageView(ctx, "s1", "/")
	require.NoError(t, err)
	analytics, err := svc.TrackPageView(ctx, "s1", "/products")
	require.NoError(t, err)

	assert.Equal(t, 2, analytics.PageViews)
}

// ========================================
// CHECKOUT
// ========================================

func TestStoreService_CompleteCheckout(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemPersister())
	_, _, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 3})
	require.NoError(t, err)

	failure := errors.New("rejected")
	err = svc.CompleteCheckout(ctx, "s1", func(cart cartModel.Cart) error { return failure })
	assert.ErrorIs(t, err, failure)
	cart, _ := svc.Cart(ctx, "s1")
	assert.Len(t, cart.Items, 1, "failed checkout keeps the cart")

	var seen cartModel.Cart
	err = svc.CompleteCheckout(ctx, "s1", func(cart cartModel.Cart) error {
		seen = cart
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "69.79", seen.Total.StringFixed(2))

	snap, _ := svc.Snapshot(ctx, "s1")
	assert.True(t, snap.Cart.IsEmpty())
	assert.Equal(t, 1, snap.Analytics.Checkouts)
}

// ========================================
// PERSISTENCE
// ========================================

func TestStoreService_RehydratesFromPersister(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()

	first := newTestService(p)
	_, _, err := first.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 3})
	require.NoError(t, err)
	_, err = first.AddToWishlist(ctx, "s1", "tee")
	require.NoError(t, err)
	_, err = first.UpdatePreferences(ctx, "s1", model.Preferences{Theme: "light", ViewMode: "list"})
	require.NoError(t, err)

	second := newTestService(p)
	snap, err := second.Snapshot(ctx, "s1")
	require.NoError(t, err)

	require.Len(t, snap.Cart.Items, 1)
	assert.Equal(t, 3, snap.Cart.Items[0].Quantity)
	assert.Equal(t, "69.79", snap.Cart.Total.StringFixed(2))
	assert.Len(t, snap.Wishlist, 1)
	assert.Equal(t, "list", snap.Preferences.ViewMode)
}

func TestStoreService_LoadFailureStartsEmpty(t *testing.T) {
	p := newMemPersister()
	p.loadErr = errors.New("redis down")
	svc := newTestService(p)

	snap, err := svc.Snapshot(context.Background(), "s1")

	require.NoError(t, err)
	assert.True(t, snap.Cart.IsEmpty())
	assert.Equal(t, model.DefaultPreferences(), snap.Preferences)
}

func TestStoreService_SaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	p.saveErr = errors.New("redis down")
	svc := newTestService(p)

	_, _, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	// Once the backend recovers, Flush writes the pending state.
	p.mu.Lock()
	p.saveErr = nil
	p.mu.Unlock()
	svc.Flush(ctx)
	assert.Equal(t, 1, p.saveCount())

	svc.Flush(ctx)
	assert.Equal(t, 1, p.saveCount(), "clean sessions are not rewritten")
}

func TestStoreService_EvictIdle(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	svc := newTestService(p)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, _, err := svc.AddToCart(ctx, "idle", model.AddToCartRequest{ProductID: "band", Quantity: 2})
	require.NoError(t, err)

	now = now.Add(40 * time.Minute)
	_, err = svc.Cart(ctx, "active")
	require.NoError(t, err)

	assert.Equal(t, 1, svc.evictIdle(ctx))
	assert.Len(t, svc.liveSessions(), 1)

	// The evicted session comes back from the persister.
	cart, err := svc.Cart(ctx, "idle")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func quantityOf(cart cartModel.Cart, lineID string) int {
	for _, item := range cart.Items {
		if item.ID == lineID {
			return item.Quantity
		}
	}
	return 0
}

func TestStoreService_MutationAfterEvictionReachesLiveSession(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	svc := newTestService(p)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, _, err := svc.AddToCart(ctx, "idle", model.AddToCartRequest{ProductID: "band", Quantity: 2})
	require.NoError(t, err)
	now = now.Add(40 * time.Minute)

	// A request resolves the session just before the janitor drops it.
	stale, err := svc.session(ctx, "idle")
	require.NoError(t, err)
	require.Equal(t, 1, svc.evictIdle(ctx))

	// A second request rehydrates the session and changes it.
	_, _, err = svc.AddToCart(ctx, "idle", model.AddToCartRequest{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	// The first request now takes the lock and must land on the live session.
	sess, err := svc.relock(ctx, stale)
	require.NoError(t, err)
	assert.NotSame(t, stale, sess)
	band, err := svc.catalog.GetProduct("band")
	require.NoError(t, err)
	_, err = sess.cart.Add(band, 5, nil)
	require.NoError(t, err)
	sess.version++
	sess.mu.Unlock()
	svc.persist(ctx, sess)

	cart, err := svc.Cart(ctx, "idle")
	require.NoError(t, err)
	assert.Equal(t, 7, quantityOf(cart, "band"))
	assert.Equal(t, 1, quantityOf(cart, "p1"))

	snap, err := p.Load(ctx, "idle")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 7, quantityOf(snap.Cart, "band"))
	assert.Equal(t, 1, quantityOf(snap.Cart, "p1"))
}

func TestStoreService_EvictIdleKeepsPendingCoupon(t *testing.T) {
	ctx := context.Background()
	coupons := &slowCoupons{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewStoreService(testCatalog(), coupons, newMemPersister(), 30*time.Minute)

	var clockMu sync.Mutex
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}

	_, _, err := svc.AddToCart(ctx, "s1", model.AddToCartRequest{ProductID: "band", Quantity: 5})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ApplyCoupon(ctx, "s1", "SAVE10")
		done <- err
	}()
	<-coupons.started

	clockMu.Lock()
	now = now.Add(time.Hour)
	clockMu.Unlock()

	assert.Equal(t, 0, svc.evictIdle(ctx))

	close(coupons.release)
	require.NoError(t, <-done)

	cart, err := svc.Cart(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, cart.Coupon)
	assert.Equal(t, "SAVE10", cart.Coupon.Code)
}
