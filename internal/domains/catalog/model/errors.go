package model

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCatalogEmpty    = errors.New("catalog is empty")
	ErrSourceStatus    = errors.New("catalog source returned non-2xx status")
)
