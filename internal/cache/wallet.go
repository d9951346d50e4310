// Package cache keeps short-lived wallet snapshots in Redis for read endpoints.
// Mutations never read from it and invalidate it after commit.
package cache

import (
	"context"
	"time"

	"demo_wallet/internal/domain"
	"demo_wallet/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const walletKeyPrefix = "wallet:id:"

// WalletCache stores wallet snapshots keyed by wallet id.
type WalletCache interface {
	Get(ctx context.Context, walletID string) (*domain.Wallet, bool)
	Set(ctx context.Context, wallet *domain.Wallet)
	Invalidate(ctx context.Context, walletIDs ...string)
}

// Redis is a WalletCache backed by Redis. Cache failures are logged and treated as
// misses; they never fail a request.
type Redis struct {
	rdb redis.Cmdable
	ttl time.Duration
	log logrus.FieldLogger
}

// NewRedis returns a Redis cache with the given TTL.
func NewRedis(rdb redis.Cmdable, ttl time.Duration, log logrus.FieldLogger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

func walletKey(id string) string { return walletKeyPrefix + id }

func (c *Redis) Get(ctx context.Context, walletID string) (*domain.Wallet, bool) {
	var wallet domain.Wallet
	found, err := utils.GetCache(ctx, c.rdb, walletKey(walletID), &wallet)
	if err != nil {
		c.log.WithError(err).WithField("wallet_id", walletID).Warn("Wallet cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &wallet, true
}

func (c *Redis) Set(ctx context.Context, wallet *domain.Wallet) {
	if err := utils.SetCache(ctx, c.rdb, walletKey(wallet.ID), wallet, c.ttl); err != nil {
		c.log.WithError(err).WithField("wallet_id", wallet.ID).Warn("Wallet cache write failed")
	}
}

func (c *Redis) Invalidate(ctx context.Context, walletIDs ...string) {
	keys := make([]string, 0, len(walletIDs))
	for _, id := range walletIDs {
		keys = append(keys, walletKey(id))
	}
	if err := utils.DeleteCache(ctx, c.rdb, keys...); err != nil {
		c.log.WithError(err).WithField("wallet_ids", walletIDs).Warn("Wallet cache invalidation failed")
	}
}

// Nop is used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*domain.Wallet, bool) { return nil, false }
func (Nop) Set(context.Context, *domain.Wallet)                {}
func (Nop) Invalidate(context.Context, ...string)              {}
