package workshop

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Commands are the validated request payloads the engine accepts. Handlers
// decode loose JSON into these and call Validate before anything runs.

type IntakeOrderCommand struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	ExternalID string    `json:"external_id"`
	StartDate  time.Time `json:"start_date"`
}

func (c IntakeOrderCommand) Validate() error {
	if c.TenantID == uuid.Nil || c.VehicleID == uuid.Nil {
		return fmt.Errorf("%w: tenant_id and vehicle_id are required", ErrValidation)
	}
	if c.ExternalID == "" {
		return fmt.Errorf("%w: external_id is required", ErrValidation)
	}
	return nil
}

type AddItemCommand struct {
	OrderID   uuid.UUID  `json:"order_id"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	// Description and PriceCents are required for custom lines; for catalog
	// lines they default to the product's name and price snapshot.
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents,omitempty"`
	Qty         int    `json:"qty"`
	RequestID   string `json:"request_id,omitempty"`
}

func (c AddItemCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order_id is required", ErrValidation)
	}
	if c.Qty < 1 {
		return fmt.Errorf("%w: qty must be at least 1", ErrValidation)
	}
	if c.ProductID == nil {
		if c.Description == "" {
			return fmt.Errorf("%w: description is required for custom items", ErrValidation)
		}
		if c.PriceCents < 0 {
			return fmt.Errorf("%w: price_cents cannot be negative", ErrValidation)
		}
	}
	return nil
}

type RemoveItemCommand struct {
	OrderID uuid.UUID `json:"order_id"`
	ItemID  uuid.UUID `json:"item_id"`
}

func (c RemoveItemCommand) Validate() error {
	if c.OrderID == uuid.Nil || c.ItemID == uuid.Nil {
		return fmt.Errorf("%w: order_id and item_id are required", ErrValidation)
	}
	return nil
}

type ChangeStatusCommand struct {
	OrderID uuid.UUID `json:"order_id"`
	To      Status    `json:"to"`
}

func (c ChangeStatusCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order_id is required", ErrValidation)
	}
	if !IsValidStatus(c.To) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, c.To)
	}
	return nil
}

type CreateProductCommand struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Category      string    `json:"category"`
	NetPriceCents int64     `json:"net_price_cents"`
	Stock         int       `json:"stock"`
}

func (c CreateProductCommand) Validate() error {
	if c.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant_id is required", ErrValidation)
	}
	if c.Name == "" || c.Code == "" || c.Category == "" {
		return fmt.Errorf("%w: name, code and category are required", ErrValidation)
	}
	if c.NetPriceCents < 0 {
		return fmt.Errorf("%w: net_price_cents cannot be negative", ErrValidation)
	}
	if c.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return nil
}

type UpdateProductCommand struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	NetPriceCents int64     `json:"net_price_cents"`
}

func (c UpdateProductCommand) Validate() error {
	if c.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if c.Name == "" || c.Code == "" {
		return fmt.Errorf("%w: name and code are required", ErrValidation)
	}
	if c.NetPriceCents < 0 {
		return fmt.Errorf("%w: net_price_cents cannot be negative", ErrValidation)
	}
	return nil
}

// AdjustStockCommand is the manual inventory flow. It shares the reservation
// coordinator's locking discipline so the two writers cannot lose updates.
type AdjustStockCommand struct {
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
}

func (c AdjustStockCommand) Validate() error {
	if c.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if c.Delta == 0 {
		return fmt.Errorf("%w: delta cannot be zero", ErrValidation)
	}
	return nil
}

type SetTaxRateCommand struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Rate     float64   `json:"rate"`
}

func (c SetTaxRateCommand) Validate() error {
	if c.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant_id is required", ErrValidation)
	}
	if c.Rate < 0 || c.Rate > 100 {
		return fmt.Errorf("%w: rate must be between 0 and 100", ErrValidation)
	}
	return nil
}
