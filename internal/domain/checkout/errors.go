package checkout

import "errors"

var (
	ErrInvalidItems      = errors.New("invalid checkout items")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrNothingToPurchase = errors.New("no purchasable items")
	ErrMissingSession    = errors.New("missing checkout session id")
	ErrPaymentProvider   = errors.New("payment provider failure")
)
