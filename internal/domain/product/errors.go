package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugExists      = errors.New("product slug already exists")
)
