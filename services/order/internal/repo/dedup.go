package repo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/vente_shop/pkg/redisx"
)

const webhookKeyPrefix = "order:webhook:"

// WebhookDedup remembers processed payment event ids in Redis.
type WebhookDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewWebhookDedup(rdb *redis.Client, ttl time.Duration) *WebhookDedup {
	return &WebhookDedup{rdb: rdb, ttl: ttl}
}

// Claim reports whether eventID is seen for the first time.
func (d *WebhookDedup) Claim(ctx context.Context, eventID string) (bool, error) {
	return redisx.Once(ctx, d.rdb, webhookKeyPrefix+eventID, d.ttl)
}

// Forget releases a claim so a failed delivery can be retried.
func (d *WebhookDedup) Forget(ctx context.Context, eventID string) error {
	return d.rdb.Del(ctx, webhookKeyPrefix+eventID).Err()
}
