package workshop

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface the engine runs on. Reads of soft-deleted
// work orders and products return ErrNotFound. WithinTx hands the callback a
// Store whose operations share one transaction; an error from the callback
// rolls everything back.
//
// The stock methods are the only writers of InventoryProduct.Stock.
// DecrementStock and AdjustStock are conditional updates: they report false
// instead of driving the counter negative, and implementations must make the
// check-and-write atomic (conditional UPDATE or row lock held for the
// transaction).
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Tenant(ctx context.Context, id uuid.UUID) (*Tenant, error)
	IsTenantMember(ctx context.Context, tenantID, actorID uuid.UUID) (bool, error)
	UpdateTenantTaxRate(ctx context.Context, tenantID uuid.UUID, rate float64) error

	WorkOrder(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	WorkOrderByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*WorkOrder, error)
	InsertWorkOrder(ctx context.Context, o *WorkOrder) error
	UpdateWorkOrderTotals(ctx context.Context, id uuid.UUID, net, tax, total int64) error
	UpdateWorkOrderStatus(ctx context.Context, id uuid.UUID, status Status, endDate *time.Time) error
	SoftDeleteWorkOrder(ctx context.Context, id uuid.UUID, at time.Time) error

	OrderItem(ctx context.Context, id uuid.UUID) (*OrderItem, error)
	OrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
	InsertOrderItem(ctx context.Context, it *OrderItem) error
	// DeleteOrderItem hard-deletes the row and reports whether it existed.
	DeleteOrderItem(ctx context.Context, id uuid.UUID) (bool, error)

	Product(ctx context.Context, id uuid.UUID) (*InventoryProduct, error)
	// ProductForUpdate locks the product row for the rest of the transaction.
	ProductForUpdate(ctx context.Context, id uuid.UUID) (*InventoryProduct, error)
	ListProducts(ctx context.Context, tenantID uuid.UUID) ([]InventoryProduct, error)
	InsertProduct(ctx context.Context, p *InventoryProduct) error
	UpdateProduct(ctx context.Context, p *InventoryProduct) error
	SoftDeleteProduct(ctx context.Context, id uuid.UUID, at time.Time) error
	// CountLiveReservations counts live order items on non-deleted work
	// orders that still reference the product.
	CountLiveReservations(ctx context.Context, productID uuid.UUID) (int, error)

	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (bool, error)
}
