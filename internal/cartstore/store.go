// Package cartstore persists per-browser cart snapshots under an opaque
// cart token. Writes always replace the whole snapshot; concurrent writers
// are last-writer-wins.
package cartstore

import (
	"context"
	"errors"

	domcart "example.com/glowshop/internal/domain/cart"
)

type Store interface {
	// Load returns the snapshot for token, or an empty cart when none exists.
	Load(ctx context.Context, token string) (*domcart.Cart, error)
	// Save replaces the stored snapshot for token.
	Save(ctx context.Context, token string, cart *domcart.Cart) error
	// Delete removes the snapshot entirely. No-op when absent.
	Delete(ctx context.Context, token string) error
}

// ClaimStore marks provider checkout sessions as consumed. Claim is atomic:
// exactly one caller per session ID ever sees true. Release hands a claim
// back when the side effects it guarded could not complete, so a later
// attempt can claim again.
type ClaimStore interface {
	Claim(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

var ErrBadSnapshot = errors.New("cart snapshot is not valid JSON")
