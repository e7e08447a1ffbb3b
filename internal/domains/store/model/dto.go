package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AddToCartRequest adds quantity of a product with the given variant selections.
type AddToCartRequest struct {
	ProductID string            `json:"product_id"`
	Quantity  int               `json:"quantity"`
	Variants  map[string]string `json:"variants,omitempty"`
}

func (r AddToCartRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required.Error("product_id is required")),
		validation.Field(&r.Quantity, validation.Min(1), validation.Max(100)),
	)
}

// UpdateCartItemRequest sets a line's quantity; 0 removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (r UpdateCartItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Max(100)),
	)
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

func (r ApplyCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("coupon code is required"),
			validation.Length(3, 50),
		),
	)
}

// ProductRefRequest names a product for wishlist/comparison adds.
type ProductRefRequest struct {
	ProductID string `json:"product_id"`
}

func (r ProductRefRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required.Error("product_id is required")),
	)
}

func (p Preferences) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Theme, validation.In("light", "dark", "system")),
		validation.Field(&p.ViewMode, validation.In("grid", "list")),
		validation.Field(&p.PreferredCategory, validation.Length(0, 100)),
	)
}
