package cart

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"example.com/glowshop/internal/cartstore"
	domcart "example.com/glowshop/internal/domain/cart"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Service holds cart snapshots behind their tokens: every mutation is
// load-mutate-save, with the full snapshot written back to the store before
// the call returns. Concurrent mutations on one token are last-writer-wins.
type Service struct {
	store cartstore.Store
	sfg   singleflight.Group
}

func NewService(store cartstore.Store) *Service {
	return &Service{store: store}
}

// Get returns the current snapshot. Concurrent reads of the same token are
// collapsed into one store round-trip.
func (s *Service) Get(ctx context.Context, token string) (*domcart.Cart, error) {
	v, err, _ := s.sfg.Do(token, func() (interface{}, error) {
		return s.store.Load(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domcart.Cart), nil
}

// AddProduct increments the product's quantity, appending a new line on
// first add. There is no upper bound here; caps are a UI concern.
func (s *Service) AddProduct(ctx context.Context, token, productID string, quantity int64) (*domcart.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(ctx, token, func(c *domcart.Cart) {
		c.Add(productID, quantity)
	})
}

// RemoveProduct deletes the line. No-op if the product is not in the cart.
func (s *Service) RemoveProduct(ctx context.Context, token, productID string) (*domcart.Cart, error) {
	return s.mutate(ctx, token, func(c *domcart.Cart) {
		c.Remove(productID)
	})
}

// UpdateQuantity sets the line's quantity exactly; zero or negative removes
// the line.
func (s *Service) UpdateQuantity(ctx context.Context, token, productID string, quantity int64) (*domcart.Cart, error) {
	return s.mutate(ctx, token, func(c *domcart.Cart) {
		c.SetQuantity(productID, quantity)
	})
}

// ToggleProduct removes the product when present at any quantity, otherwise
// adds it with quantity 1.
func (s *Service) ToggleProduct(ctx context.Context, token, productID string) (*domcart.Cart, error) {
	return s.mutate(ctx, token, func(c *domcart.Cart) {
		c.Toggle(productID)
	})
}

// Retain prunes every line not present in keep. Used after a checkout quote
// reports that some products no longer resolve.
func (s *Service) Retain(ctx context.Context, token string, keep map[string]bool) (*domcart.Cart, error) {
	return s.mutate(ctx, token, func(c *domcart.Cart) {
		c.Retain(keep)
	})
}

func (s *Service) Clear(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// ProductQuantity is a pure read: 0 when absent.
func (s *Service) ProductQuantity(ctx context.Context, token, productID string) (int64, error) {
	cart, err := s.Get(ctx, token)
	if err != nil {
		return 0, err
	}
	return cart.Quantity(productID), nil
}

func (s *Service) IsProductInCart(ctx context.Context, token, productID string) (bool, error) {
	cart, err := s.Get(ctx, token)
	if err != nil {
		return false, err
	}
	return cart.Contains(productID), nil
}

func (s *Service) TotalItems(ctx context.Context, token string) (int64, error) {
	cart, err := s.Get(ctx, token)
	if err != nil {
		return 0, err
	}
	return cart.TotalItems(), nil
}

func (s *Service) mutate(ctx context.Context, token string, fn func(*domcart.Cart)) (*domcart.Cart, error) {
	cart, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	fn(cart)
	if err := s.store.Save(ctx, token, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
