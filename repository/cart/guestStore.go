package cartrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muhammedb99/eBookLibraryService/model"
	"github.com/muhammedb99/eBookLibraryService/util/redisx"
)

// GuestStore holds anonymous carts keyed by the cart_session cookie token.
// Entries expire on their own; a login merges them into the DB cart.
type GuestStore interface {
	Get(ctx context.Context, token string) ([]model.CartItem, error)
	Save(ctx context.Context, token string, items []model.CartItem) error
	Delete(ctx context.Context, token string) error
}

type guestStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuestStore(rdb *redis.Client, ttl time.Duration) GuestStore {
	return &guestStore{rdb: rdb, ttl: ttl}
}

func (s *guestStore) key(token string) string {
	return fmt.Sprintf(redisx.KeyGuestCart, token)
}

func (s *guestStore) Get(ctx context.Context, token string) ([]model.CartItem, error) {
	raw, err := s.rdb.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []model.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *guestStore) Save(ctx context.Context, token string, items []model.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(token), raw, s.ttl).Err()
}

func (s *guestStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.key(token)).Err()
}
