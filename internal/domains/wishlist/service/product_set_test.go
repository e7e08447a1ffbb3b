package service

import (
	"fmt"
	"testing"

	"holyfit-backend/internal/domains/wishlist/model"

	"github.com/stretchr/testify/assert"
)

func item(id string) model.Item {
	return model.Item{ProductID: id, Name: "Product " + id}
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	s := NewWishlist()

	assert.True(t, s.Add(item("a")))
	assert.True(t, s.Add(item("b")))
	assert.False(t, s.Add(item("a")))
	assert.False(t, s.Add(model.Item{}))

	assert.Equal(t, []string{"a", "b"}, productIDs(s.Items()))
}

func TestWishlist_Unbounded(t *testing.T) {
	s := NewWishlist()
	for i := 0; i < 50; i++ {
		s.Add(item(fmt.Sprintf("p%d", i)))
	}

	assert.Equal(t, 50, s.Len())
	assert.False(t, s.Full())
}

func TestComparison_DropsAddsBeyondLimit(t *testing.T) {
	s := NewComparison()
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.True(t, s.Add(item(id)))
	}

	assert.True(t, s.Full())
	assert.False(t, s.Add(item("e")))
	assert.Equal(t, []string{"a", "b", "c", "d"}, productIDs(s.Items()))

	assert.True(t, s.Remove("b"))
	assert.True(t, s.Add(item("e")))
	assert.Equal(t, []string{"a", "c", "d", "e"}, productIDs(s.Items()))
}

func TestProductSet_Remove(t *testing.T) {
	s := NewWishlist()
	s.Add(item("a"))

	assert.False(t, s.Remove("missing"))
	assert.True(t, s.Remove("a"))
	assert.False(t, s.Contains("a"))
	assert.NotNil(t, s.Items())
}

func TestRestoreProductSet(t *testing.T) {
	stored := []model.Item{item("a"), item("a"), item("b"), item("c"), item("d"), item("e")}

	s := RestoreProductSet(stored, model.MaxComparisonItems)

	assert.Equal(t, []string{"a", "b", "c", "d"}, productIDs(s.Items()))
}

func TestProductSet_ItemsIsCopy(t *testing.T) {
	s := NewWishlist()
	s.Add(item("a"))

	items := s.Items()
	items[0].Name = "changed"

	assert.Equal(t, "Product a", s.Items()[0].Name)
}

func productIDs(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ProductID
	}
	return out
}
