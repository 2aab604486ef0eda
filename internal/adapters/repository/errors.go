package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidLimit = errors.New("invalid catalog limit")
)
