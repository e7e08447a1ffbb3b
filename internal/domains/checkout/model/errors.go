package model

import "errors"

var (
	ErrEmptyCart = errors.New("cart is empty")
)
