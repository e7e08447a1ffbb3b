package service

import (
	"fmt"

	"holyfit-backend/internal/domains/cart/model"
	catalogModel "holyfit-backend/internal/domains/catalog/model"
)

// ValidateAddition rejects an add-to-cart before any state changes: the
// product must be in stock and every variant type it defines needs exactly one
// known value.
func ValidateAddition(product *catalogModel.Product, quantity int, selections map[string]string) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	if quantity > model.MaxItemsPerLine {
		return model.ErrQuantityTooHigh
	}
	if !product.InStock {
		return fmt.Errorf("%w: %s", model.ErrOutOfStock, product.Name)
	}

	for _, variantType := range product.VariantTypes() {
		value, ok := selections[variantType]
		if !ok || value == "" {
			return fmt.Errorf("%w: please select a %s", model.ErrVariantSelectionRequired, variantType)
		}
	}

	for variantType, value := range selections {
		if _, ok := product.FindVariant(variantType, value); !ok {
			return fmt.Errorf("%w: %s=%s", model.ErrUnknownVariant, variantType, value)
		}
	}
	return nil
}
