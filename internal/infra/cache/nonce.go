// Package cache holds short-lived lookaside caches backed by Redis.
package cache

import (
	"context"
	"errors"
	"math/big"
	"time"

	"devhours-api/internal/domain/ledger"
	"devhours-api/internal/infra"

	"github.com/redis/go-redis/v9"
)

// nonceTTL is short on purpose: a voucher signed against a stale nonce is
// rejected by the contract, so the cache only smooths bursts.
const nonceTTL = 30 * time.Second

type NonceCache struct {
	rdb *redis.Client
}

func NewNonceCache(rdb *redis.Client) *NonceCache {
	return &NonceCache{rdb: rdb}
}

func nonceKey(buyer string) string {
	return "nonce:" + ledger.NormalizeAddress(buyer)
}

// Get returns the cached nonce for a buyer, or ok=false on a miss. Redis
// outages count as misses so callers always fall through to the chain.
func (c *NonceCache) Get(ctx context.Context, buyer string) (*big.Int, bool) {
	val, err := c.rdb.Get(ctx, nonceKey(buyer)).Result()
	if err != nil {
		return nil, false
	}

	nonce, ok := new(big.Int).SetString(val, 10)
	if !ok {
		return nil, false
	}
	return nonce, true
}

func (c *NonceCache) Set(ctx context.Context, buyer string, nonce *big.Int) error {
	err := c.rdb.Set(ctx, nonceKey(buyer), nonce.String(), nonceTTL).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return infra.WrapRepoErr("failed to cache buyer nonce", err)
	}
	return nil
}

// Invalidate drops a buyer's cached nonce, used after a verified purchase.
func (c *NonceCache) Invalidate(ctx context.Context, buyer string) {
	c.rdb.Del(ctx, nonceKey(buyer))
}
