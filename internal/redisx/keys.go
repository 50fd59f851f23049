package redisx

import "time"

const (
	// Order summary cache: workorder:summary:{order_id} -> JSON
	KeyOrderSummary = "workorder:summary:%s"

	// Per-tenant order list view: workorder:list:{tenant_slug}
	KeyTenantOrders = "workorder:list:%s"

	// Add-item idempotency fast path: idem:workorder:item:{request_id} -> item_id
	KeyIdemItemAdd = "idem:workorder:item:%s"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSummaryCache = 5 * time.Minute
	TTLIdempotency  = 24 * time.Hour
	TTLDedup        = 48 * time.Hour
)
