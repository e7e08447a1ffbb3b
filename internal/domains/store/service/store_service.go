package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cartModel "holyfit-backend/internal/domains/cart/model"
	cartService "holyfit-backend/internal/domains/cart/service"
	catalogModel "holyfit-backend/internal/domains/catalog/model"
	catalogService "holyfit-backend/internal/domains/catalog/service"
	"holyfit-backend/internal/domains/store/model"
	"holyfit-backend/internal/domains/store/repository"
	wishlistModel "holyfit-backend/internal/domains/wishlist/model"
	"holyfit-backend/pkg/logger"
)

const persistTimeout = 5 * time.Second

// StoreService keeps one Session per visitor and mirrors every mutation to
// the persister.
type StoreService struct {
	catalog   catalogService.ProductLookup
	coupons   cartService.CouponValidator
	persister repository.Persister
	idleTTL   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

var _ ServiceInterface = (*StoreService)(nil)

func NewStoreService(
	catalog catalogService.ProductLookup,
	coupons cartService.CouponValidator,
	persister repository.Persister,
	idleTTL time.Duration,
) *StoreService {
	return &StoreService{
		catalog:   catalog,
		coupons:   coupons,
		persister: persister,
		idleTTL:   idleTTL,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// ========================================
// READS
// ========================================

func (s *StoreService) Snapshot(ctx context.Context, sessionID string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := s.view(ctx, sessionID, func(sess *Session) {
		snap = sess.snapshotLocked()
	})
	return snap, err
}

func (s *StoreService) Cart(ctx context.Context, sessionID string) (cartModel.Cart, error) {
	var cart cartModel.Cart
	err := s.view(ctx, sessionID, func(sess *Session) {
		cart = sess.cart.Snapshot()
	})
	return cart, err
}

// ========================================
// CART
// ========================================

func (s *StoreService) AddToCart(ctx context.Context, sessionID string, req model.AddToCartRequest) (cartModel.CartItem, cartModel.Cart, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := req.Validate(); err != nil {
		return cartModel.CartItem{}, cartModel.Cart{}, err
	}

	product, err := s.catalog.GetProduct(req.ProductID)
	if err != nil {
		return cartModel.CartItem{}, cartModel.Cart{}, err
	}
	if err := cartService.ValidateAddition(product, req.Quantity, req.Variants); err != nil {
		return cartModel.CartItem{}, cartModel.Cart{}, err
	}

	var (
		item cartModel.CartItem
		cart cartModel.Cart
	)
	err = s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		added, err := sess.cart.Add(product, req.Quantity, req.Variants)
		if err != nil {
			return false, err
		}
		sess.analytics.AddToCarts++
		item = added
		cart = sess.cart.Snapshot()
		return true, nil
	})
	if err != nil {
		return cartModel.CartItem{}, cartModel.Cart{}, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"session_id": sessionID,
		"line_id":    item.ID,
		"quantity":   req.Quantity,
	})
	return item, cart, nil
}

func (s *StoreService) UpdateCartItem(ctx context.Context, sessionID, lineID string, quantity int) (cartModel.Cart, error) {
	return s.updateCart(ctx, sessionID, func(sess *Session) error {
		return sess.cart.UpdateQuantity(lineID, quantity)
	})
}

func (s *StoreService) RemoveCartItem(ctx context.Context, sessionID, lineID string) (cartModel.Cart, error) {
	return s.updateCart(ctx, sessionID, func(sess *Session) error {
		sess.cart.Remove(lineID)
		return nil
	})
}

func (s *StoreService) ClearCart(ctx context.Context, sessionID string) (cartModel.Cart, error) {
	return s.updateCart(ctx, sessionID, func(sess *Session) error {
		sess.cart.Clear()
		return nil
	})
}

// ApplyCoupon releases the session lock while the code is looked up; the
// in-flight flag on the ledger keeps a second application out meanwhile.
func (s *StoreService) ApplyCoupon(ctx context.Context, sessionID, code string) (cartModel.Cart, error) {
	sess, err := s.lock(ctx, sessionID)
	if err != nil {
		return cartModel.Cart{}, err
	}
	err = sess.cart.BeginCouponApplication()
	sess.lastAccess = s.now()
	sess.mu.Unlock()
	if err != nil {
		return cartModel.Cart{}, err
	}

	coupon, lookupErr := s.coupons.Lookup(ctx, code)

	sess.mu.Lock()
	applied, err := sess.cart.CompleteCouponApplication(coupon, lookupErr)
	if applied {
		sess.version++
	}
	sess.lastAccess = s.now()
	cart := sess.cart.Snapshot()
	sess.mu.Unlock()

	if applied {
		s.persist(ctx, sess)
		logger.Info("Coupon applied", map[string]interface{}{
			"session_id": sessionID,
			"code":       cart.Coupon.Code,
			"discount":   cart.Discount.StringFixed(2),
		})
	}
	return cart, err
}

func (s *StoreService) RemoveCoupon(ctx context.Context, sessionID string) (cartModel.Cart, error) {
	return s.updateCart(ctx, sessionID, func(sess *Session) error {
		sess.cart.RemoveCoupon()
		return nil
	})
}

// ========================================
// WISHLIST / COMPARISON
// ========================================

func (s *StoreService) AddToWishlist(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error) {
	product, err := s.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	var items []wishlistModel.Item
	err = s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		changed := sess.wishlist.Add(s.itemFor(product))
		items = sess.wishlist.Items()
		return changed, nil
	})
	return items, err
}

func (s *StoreService) RemoveFromWishlist(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error) {
	var items []wishlistModel.Item
	err := s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		changed := sess.wishlist.Remove(productID)
		items = sess.wishlist.Items()
		return changed, nil
	})
	return items, err
}

func (s *StoreService) AddToComparison(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error) {
	product, err := s.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	var items []wishlistModel.Item
	err = s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		changed := sess.comparison.Add(s.itemFor(product))
		if !changed && sess.comparison.Full() && !sess.comparison.Contains(productID) {
			logger.Debug(fmt.Sprintf("comparison full for session %s, dropped %s", sessionID, productID))
		}
		items = sess.comparison.Items()
		return changed, nil
	})
	return items, err
}

func (s *StoreService) RemoveFromComparison(ctx context.Context, sessionID, productID string) ([]wishlistModel.Item, error) {
	var items []wishlistModel.Item
	err := s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		changed := sess.comparison.Remove(productID)
		items = sess.comparison.Items()
		return changed, nil
	})
	return items, err
}

func (s *StoreService) itemFor(product *catalogModel.Product) wishlistModel.Item {
	return wishlistModel.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		AddedAt:   s.now(),
	}
}

// ========================================
// BROWSING
// ========================================

func (s *StoreService) ViewProduct(ctx context.Context, sessionID, productID string) (*catalogModel.Product, error) {
	product, err := s.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	err = s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		sess.recordViewLocked(product, s.now())
		sess.analytics.ProductViews++
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *StoreService) RecordSearch(ctx context.Context, sessionID, query string) error {
	return s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		if !sess.recordSearchLocked(query) {
			return false, nil
		}
		sess.analytics.Searches++
		return true, nil
	})
}

func (s *StoreService) ClearSearchHistory(ctx context.Context, sessionID string) error {
	return s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		if len(sess.searchHistory) == 0 {
			return false, nil
		}
		sess.searchHistory = []string{}
		return true, nil
	})
}

// UpdatePreferences replaces the preferences. Blank theme or view mode keep
// their current values.
func (s *StoreService) UpdatePreferences(ctx context.Context, sessionID string, prefs model.Preferences) (model.Preferences, error) {
	prefs.Theme = strings.ToLower(strings.TrimSpace(prefs.Theme))
	prefs.ViewMode = strings.ToLower(strings.TrimSpace(prefs.ViewMode))
	if err := prefs.Validate(); err != nil {
		return model.Preferences{}, err
	}

	var out model.Preferences
	err := s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		if prefs.Theme == "" {
			prefs.Theme = sess.preferences.Theme
		}
		if prefs.ViewMode == "" {
			prefs.ViewMode = sess.preferences.ViewMode
		}
		changed := prefs != sess.preferences
		sess.preferences = prefs
		out = prefs
		return changed, nil
	})
	return out, err
}

func (s *StoreService) TrackPageView(ctx context.Context, sessionID, page string) (model.Analytics, error) {
	var out model.Analytics
	err := s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		sess.analytics.PageViews++
		out = sess.analytics
		return true, nil
	})
	if err == nil {
		logger.Debug(fmt.Sprintf("page view %q session=%s", page, sessionID))
	}
	return out, err
}

// ========================================
// CHECKOUT
// ========================================

func (s *StoreService) CompleteCheckout(ctx context.Context, sessionID string, fn func(cart cartModel.Cart) error) error {
	return s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		if err := fn(sess.cart.Snapshot()); err != nil {
			return false, err
		}
		sess.cart.Clear()
		sess.analytics.Checkouts++
		return true, nil
	})
}

// ========================================
// SESSION LIFECYCLE
// ========================================

// session returns the live session, rehydrating it from the persister on
// first access. A failed read starts an empty session.
func (s *StoreService) session(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, model.ErrSessionRequired
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	loaded := s.load(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sessionID]; ok {
		return existing, nil
	}
	s.sessions[sessionID] = loaded
	return loaded, nil
}

func (s *StoreService) load(ctx context.Context, sessionID string) *Session {
	snap, err := s.persister.Load(ctx, sessionID)
	if err != nil {
		logger.ErrorWithFields("Failed to load session, starting empty", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return newSession(sessionID)
	}
	if snap == nil {
		return newSession(sessionID)
	}

	logger.Debug(fmt.Sprintf("session %s rehydrated", sessionID))
	return restoreSession(sessionID, snap)
}

// lock returns the live session with its mutex held.
func (s *StoreService) lock(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.relock(ctx, sess)
}

// relock locks sess, resolving the session again if the janitor evicted it
// after it was looked up.
func (s *StoreService) relock(ctx context.Context, sess *Session) (*Session, error) {
	for {
		sess.mu.Lock()
		if !sess.evicted {
			return sess, nil
		}
		sess.mu.Unlock()

		next, err := s.session(ctx, sess.id)
		if err != nil {
			return nil, err
		}
		sess = next
	}
}

func (s *StoreService) view(ctx context.Context, sessionID string, fn func(sess *Session)) error {
	sess, err := s.lock(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(sess)
	sess.lastAccess = s.now()
	sess.mu.Unlock()
	return nil
}

// update runs fn under the session lock and persists when fn reports a change.
func (s *StoreService) update(ctx context.Context, sessionID string, fn func(sess *Session) (bool, error)) error {
	sess, err := s.lock(ctx, sessionID)
	if err != nil {
		return err
	}

	changed, err := fn(sess)
	if changed {
		sess.version++
	}
	sess.lastAccess = s.now()
	sess.mu.Unlock()

	if changed {
		s.persist(ctx, sess)
	}
	return err
}

func (s *StoreService) updateCart(ctx context.Context, sessionID string, fn func(sess *Session) error) (cartModel.Cart, error) {
	var cart cartModel.Cart
	err := s.update(ctx, sessionID, func(sess *Session) (bool, error) {
		before := sess.cart.Snapshot()
		if err := fn(sess); err != nil {
			cart = before
			return false, err
		}
		cart = sess.cart.Snapshot()
		return !sameCart(before, cart), nil
	})
	return cart, err
}

// persist writes the newest snapshot of sess. Writes for one session are
// serialized and a snapshot older than the last saved one is never written.
// Failures are logged only.
func (s *StoreService) persist(ctx context.Context, sess *Session) {
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()

	sess.mu.Lock()
	if sess.version == sess.saved {
		sess.mu.Unlock()
		return
	}
	version := sess.version
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.persister.Save(saveCtx, snap); err != nil {
		logger.ErrorWithFields("Failed to persist session", err, map[string]interface{}{
			"session_id": sess.id,
			"version":    version,
		})
		return
	}

	sess.mu.Lock()
	if version > sess.saved {
		sess.saved = version
	}
	sess.mu.Unlock()
}

func (s *StoreService) Flush(ctx context.Context) {
	for _, sess := range s.liveSessions() {
		s.persist(ctx, sess)
	}
}

func (s *StoreService) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.idleTTL <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(ctx); n > 0 {
				logger.Info("Evicted idle sessions", map[string]interface{}{"count": n})
			}
		}
	}
}

// evictIdle drops sessions untouched for idleTTL after a last save. They
// rehydrate from the persister on the next request. A session with a coupon
// lookup in flight stays.
func (s *StoreService) evictIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.idleTTL)
	evicted := 0

	for _, sess := range s.liveSessions() {
		sess.mu.Lock()
		idle := sess.lastAccess.Before(cutoff)
		sess.mu.Unlock()
		if !idle {
			continue
		}

		s.persist(ctx, sess)

		sess.mu.Lock()
		clean := sess.version == sess.saved &&
			sess.lastAccess.Before(cutoff) &&
			!sess.cart.CouponInFlight()
		if clean {
			s.mu.Lock()
			if s.sessions[sess.id] == sess {
				delete(s.sessions, sess.id)
				sess.evicted = true
				evicted++
			}
			s.mu.Unlock()
		}
		sess.mu.Unlock()
	}
	return evicted
}

func (s *StoreService) liveSessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func sameCart(a, b cartModel.Cart) bool {
	if len(a.Items) != len(b.Items) || !a.Total.Equal(b.Total) || !a.Subtotal.Equal(b.Subtotal) {
		return false
	}
	if (a.Coupon == nil) != (b.Coupon == nil) {
		return false
	}
	if a.Coupon != nil && a.Coupon.Code != b.Coupon.Code {
		return false
	}
	for i := range a.Items {
		if a.Items[i].ID != b.Items[i].ID || a.Items[i].Quantity != b.Items[i].Quantity {
			return false
		}
	}
	return true
}
