package order

import "errors"

var (
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrEmptyReceipt    = errors.New("receipt has no items")
)
