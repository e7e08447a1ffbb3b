package service

import (
	"strings"
	"sync"
	"time"

	cartService "holyfit-backend/internal/domains/cart/service"
	catalogModel "holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/internal/domains/store/model"
	wishlistModel "holyfit-backend/internal/domains/wishlist/model"
	wishlistService "holyfit-backend/internal/domains/wishlist/service"
)

// Session is the state of one visitor. All fields are guarded by mu; the
// ledgers underneath are not safe for concurrent use on their own.
type Session struct {
	mu sync.Mutex

	id             string
	cart           *cartService.Ledger
	wishlist       *wishlistService.ProductSet
	comparison     *wishlistService.ProductSet
	recentlyViewed []model.ViewedProduct
	searchHistory  []string
	preferences    model.Preferences
	analytics      model.Analytics

	// version is bumped on every mutation; saved is the last version persisted.
	version    uint64
	saved      uint64
	saveMu     sync.Mutex
	lastAccess time.Time

	// evicted is set when the janitor drops the session from the map. A
	// caller that locks an evicted session must look it up again.
	evicted bool
}

func newSession(id string) *Session {
	return &Session{
		id:             id,
		cart:           cartService.NewLedger(),
		wishlist:       wishlistService.NewWishlist(),
		comparison:     wishlistService.NewComparison(),
		recentlyViewed: []model.ViewedProduct{},
		searchHistory:  []string{},
		preferences:    model.DefaultPreferences(),
		lastAccess:     time.Now(),
	}
}

// restoreSession rehydrates a session from its persisted snapshot.
func restoreSession(id string, snap *model.Snapshot) *Session {
	s := newSession(id)
	s.cart = cartService.RestoreLedger(snap.Cart)
	s.wishlist = wishlistService.RestoreProductSet(snap.Wishlist, 0)
	s.comparison = wishlistService.RestoreProductSet(snap.Comparison, wishlistModel.MaxComparisonItems)

	if len(snap.RecentlyViewed) > 0 {
		n := min(len(snap.RecentlyViewed), model.MaxRecentlyViewed)
		s.recentlyViewed = append([]model.ViewedProduct{}, snap.RecentlyViewed[:n]...)
	}
	if len(snap.SearchHistory) > 0 {
		n := min(len(snap.SearchHistory), model.MaxSearchHistory)
		s.searchHistory = append([]string{}, snap.SearchHistory[:n]...)
	}
	if snap.Preferences.Theme != "" {
		s.preferences = snap.Preferences
	}
	s.analytics = snap.Analytics
	return s
}

// snapshotLocked must be called with mu held.
func (s *Session) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		SessionID:      s.id,
		Cart:           s.cart.Snapshot(),
		Wishlist:       s.wishlist.Items(),
		Comparison:     s.comparison.Items(),
		RecentlyViewed: append([]model.ViewedProduct{}, s.recentlyViewed...),
		SearchHistory:  append([]string{}, s.searchHistory...),
		Preferences:    s.preferences,
		Analytics:      s.analytics,
		UpdatedAt:      time.Now(),
	}
}

// recordViewLocked puts product at the front of the recently viewed list.
func (s *Session) recordViewLocked(product *catalogModel.Product, now time.Time) {
	entry := model.ViewedProduct{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		ViewedAt:  now,
	}

	list := make([]model.ViewedProduct, 0, model.MaxRecentlyViewed)
	list = append(list, entry)
	for _, v := range s.recentlyViewed {
		if v.ProductID == product.ID {
			continue
		}
		if len(list) == model.MaxRecentlyViewed {
			break
		}
		list = append(list, v)
	}
	s.recentlyViewed = list
}

// recordSearchLocked puts query at the front of the search history.
// Blank queries are ignored; duplicates are matched case-insensitively.
func (s *Session) recordSearchLocked(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	list := make([]string, 0, model.MaxSearchHistory)
	list = append(list, query)
	for _, q := range s.searchHistory {
		if strings.EqualFold(q, query) {
			continue
		}
		if len(list) == model.MaxSearchHistory {
			break
		}
		list = append(list, q)
	}
	s.searchHistory = list
	return true
}
