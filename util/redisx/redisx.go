package redisx

import (
	"github.com/redis/go-redis/v9"
)

const (
	// Guest cart blob: cart:guest:{session_token} -> JSON []CartItem
	KeyGuestCart = "cart:guest:%s"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
