package workshop

import (
	"time"

	"github.com/google/uuid"
)

// Labor positions are billed but never stock-tracked.
const CategoryLabor = "Labor"

type Tenant struct {
	ID        uuid.UUID
	Slug      string
	TaxRate   float64 // percent, tenant-configurable
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WorkOrder struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	VehicleID  uuid.UUID
	ExternalID string // intake idempotency key
	Status     Status
	NetCents   int64
	TaxCents   int64
	TotalCents int64
	StartDate  time.Time
	EndDate    *time.Time
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem is a billed line. PriceCents is a snapshot taken when the line
// was added, never a live reference into the catalog.
type OrderItem struct {
	ID          uuid.UUID
	WorkOrderID uuid.UUID
	Description string
	PriceCents  int64
	Qty         int
	ProductID   *uuid.UUID
}

type InventoryProduct struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Name          string
	Code          string
	Category      string
	NetPriceCents int64
	Stock         int
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *InventoryProduct) StockTracked() bool {
	return p.Category != CategoryLabor
}
