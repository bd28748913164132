package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domcart "example.com/glowshop/internal/domain/cart"
)

// Carts are abandoned far more often than they are bought; the TTL keeps the
// keyspace from accumulating dead snapshots while comfortably outliving any
// real shopping session.
const cartTTL = 30 * 24 * time.Hour

// Consumed-session markers only need to outlive return-URL replays.
const claimTTL = 7 * 24 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, token string) (*domcart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domcart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	cart := domcart.New()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	return cart, nil
}

func (s *RedisStore) Save(ctx context.Context, token string, cart *domcart.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(token), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, cartKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Claim implements ClaimStore with SET NX: the first caller for a session ID
// wins, every replay loses.
func (s *RedisStore) Claim(ctx context.Context, sessionID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, claimKey(sessionID), "1", claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, claimKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(token string) string {
	return fmt.Sprintf("cart:%s", token)
}

func claimKey(sessionID string) string {
	return fmt.Sprintf("checkout:consumed:%s", sessionID)
}
