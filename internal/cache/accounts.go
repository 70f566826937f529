package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"corebanking/internal/domain"
)

const accountKeyPrefix = "account:"

// AccountCache is a JSON-backed Redis cache for account reads. The store
// stays authoritative: every miss, marshal error or backend error degrades
// to a store read, and every committed mutation deletes the key.
type AccountCache struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewAccountCache creates an AccountCache backed by the provided client.
// Pass ttl 0 for keys that should not expire.
func NewAccountCache(client *goredis.Client, ttl time.Duration, logger *zap.Logger) *AccountCache {
	return &AccountCache{client: client, ttl: ttl, logger: logger}
}

func (c *AccountCache) Get(ctx context.Context, id string) (*domain.Account, bool) {
	data, err := c.client.Get(ctx, accountKeyPrefix+id).Result()
	if err != nil {
		return nil, false
	}
	var account domain.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, false
	}
	return &account, true
}

func (c *AccountCache) Set(ctx context.Context, account *domain.Account) {
	data, err := json.Marshal(account)
	if err != nil {
		c.logger.Warn("failed to marshal account for cache", zap.String("account_id", account.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, accountKeyPrefix+account.ID, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to write account to cache", zap.String("account_id", account.ID), zap.Error(err))
	}
}

func (c *AccountCache) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, accountKeyPrefix+id).Err(); err != nil {
		c.logger.Warn("failed to delete account from cache", zap.String("account_id", id), zap.Error(err))
	}
}
