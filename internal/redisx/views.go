package redisx

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Views implements the engine's post-commit cache hook and the add-item
// idempotency fast path. Everything here is best effort: a redis hiccup is
// logged and otherwise ignored, the database stays the source of truth.
type Views struct {
	RDB *redis.Client
	Log *logrus.Logger
}

func (v *Views) InvalidateOrder(ctx context.Context, tenantSlug string, orderID uuid.UUID) {
	keys := []string{
		fmt.Sprintf(KeyOrderSummary, orderID),
		fmt.Sprintf(KeyTenantOrders, tenantSlug),
	}
	if err := v.RDB.Del(ctx, keys...).Err(); err != nil {
		v.Log.WithError(err).WithField("order_id", orderID).Warn("view invalidation failed")
	}
}

func (v *Views) ItemForRequest(ctx context.Context, requestID string) (uuid.UUID, bool) {
	s, err := v.RDB.Get(ctx, fmt.Sprintf(KeyIdemItemAdd, requestID)).Result()
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (v *Views) RememberItemRequest(ctx context.Context, requestID string, itemID uuid.UUID) {
	key := fmt.Sprintf(KeyIdemItemAdd, requestID)
	if err := v.RDB.Set(ctx, key, itemID.String(), TTLIdempotency).Err(); err != nil {
		v.Log.WithError(err).Warn("idempotency key write failed")
	}
}

// Dedup is the consumer-side once-only filter keyed by event id.
type Dedup struct {
	RDB     *redis.Client
	Service string
}

func (d *Dedup) Seen(ctx context.Context, eventID string) bool {
	ok, _ := Exists(ctx, d.RDB, fmt.Sprintf(KeyDedup, d.Service, eventID))
	return ok
}

func (d *Dedup) Mark(ctx context.Context, eventID string) {
	_ = d.RDB.Set(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID), "1", TTLDedup).Err()
}
