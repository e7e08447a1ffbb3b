package service

import "holyfit-backend/internal/domains/wishlist/model"

// ProductSet is an insertion-ordered set of items keyed by product id.
// A limit of 0 means unbounded. Not safe for concurrent use.
type ProductSet struct {
	items []model.Item
	limit int
}

func NewProductSet(limit int) *ProductSet {
	return &ProductSet{items: []model.Item{}, limit: limit}
}

// NewWishlist is unbounded.
func NewWishlist() *ProductSet {
	return NewProductSet(0)
}

// NewComparison holds at most model.MaxComparisonItems products.
func NewComparison() *ProductSet {
	return NewProductSet(model.MaxComparisonItems)
}

// RestoreProductSet rebuilds a set from persisted items, dropping duplicates
// and anything beyond the limit.
func RestoreProductSet(items []model.Item, limit int) *ProductSet {
	s := NewProductSet(limit)
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add inserts item unless its product is already present or the set is full.
// It reports whether the set changed.
func (s *ProductSet) Add(item model.Item) bool {
	if item.ProductID == "" || s.Contains(item.ProductID) {
		return false
	}
	if s.limit > 0 && len(s.items) >= s.limit {
		return false
	}
	s.items = append(s.items, item)
	return true
}

// Remove deletes productID if present and reports whether it was.
func (s *ProductSet) Remove(productID string) bool {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *ProductSet) Contains(productID string) bool {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return true
		}
	}
	return false
}

func (s *ProductSet) Len() int {
	return len(s.items)
}

func (s *ProductSet) Full() bool {
	return s.limit > 0 && len(s.items) >= s.limit
}

func (s *ProductSet) Clear() {
	s.items = []model.Item{}
}

// Items returns a copy in insertion order.
func (s *ProductSet) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}
