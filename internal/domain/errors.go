package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrStockLimit indicates a cart increment beyond available inventory.
	ErrStockLimit = errors.New("stock limit reached")
)
