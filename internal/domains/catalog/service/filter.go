package service

import (
	"sort"
	"strings"

	"holyfit-backend/internal/domains/catalog/model"
)

// Relevance weights for the default sort.
const (
	relevanceRatingWeight  = 0.3
	relevanceReviewsWeight = 0.2
	relevanceStockWeight   = 0.5
)

// Apply derives the filtered and sorted view of products.
// It never mutates products; the result is a fresh slice, empty (not nil) when
// nothing matches. Filters run in order: search, category, price range,
// stock, rating, brand/tag. The sort is stable with respect to catalog order.
func Apply(products []model.Product, filter model.FilterState) []model.Product {
	terms := strings.Fields(strings.ToLower(filter.Search))
	brands := lowerSet(filter.Brands)
	tags := lowerSet(filter.Tags)

	result := make([]model.Product, 0, len(products))
	for i := range products {
		p := &products[i]

		if !matchesTerms(p, terms) {
			continue
		}
		if filter.CategoryID != "" && p.Category.ID != filter.CategoryID {
			continue
		}
		if !filter.PriceRange.Contains(p.Price) {
			continue
		}
		if filter.InStockOnly && !p.InStock {
			continue
		}
		if filter.MinRating > 0 && p.RatingValue() < filter.MinRating {
			continue
		}
		if len(brands) > 0 {
			if _, ok := brands[strings.ToLower(p.Brand)]; !ok {
				continue
			}
		}
		if len(tags) > 0 && !intersects(p.Tags, tags) {
			continue
		}

		result = append(result, *p)
	}

	sortProducts(result, filter.Sort())
	return result
}

// RelevanceScore = 0.3*rating + 0.2*review_count + 0.5*(in stock).
func RelevanceScore(p *model.Product) float64 {
	stock := 0.0
	if p.InStock {
		stock = 1
	}
	return relevanceRatingWeight*p.RatingValue() +
		relevanceReviewsWeight*float64(p.ReviewCount) +
		relevanceStockWeight*stock
}

func matchesTerms(p *model.Product, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := p.SearchText()
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func sortProducts(products []model.Product, key model.SortKey) {
	var less func(a, b *model.Product) bool

	switch key {
	case model.SortPriceAsc:
		less = func(a, b *model.Product) bool { return a.Price.LessThan(b.Price) }
	case model.SortPriceDesc:
		less = func(a, b *model.Product) bool { return a.Price.GreaterThan(b.Price) }
	case model.SortRating:
		less = func(a, b *model.Product) bool { return a.RatingValue() > b.RatingValue() }
	case model.SortReviews:
		less = func(a, b *model.Product) bool { return a.ReviewCount > b.ReviewCount }
	case model.SortNewest:
		less = func(a, b *model.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b *model.Product) bool { return RelevanceScore(a) > RelevanceScore(b) }
	}

	sort.SliceStable(products, func(i, j int) bool {
		return less(&products[i], &products[j])
	})
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func intersects(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[strings.ToLower(v)]; ok {
			return true
		}
	}
	return false
}
