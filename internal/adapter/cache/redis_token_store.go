package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore holds download authorization scopes keyed by token. The
// storage/CDN collaborator redeems them with GETDEL, which also enforces
// single use; this service only writes.
type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func (s *RedisTokenStore) Put(ctx context.Context, token string, scope usecase.DownloadScope, ttl time.Duration) error {
	payload, err := json.Marshal(scope)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, "dl:"+token, payload, ttl).Err()
}

var _ usecase.TokenStore = (*RedisTokenStore)(nil)
