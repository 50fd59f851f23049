package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

// Stock reservation coordinator: every decrement backing a line item and
// every increment from its removal goes through here, inside the caller's
// transaction, so the counter always reflects exactly the live reservations.

// reserveStock backs a new line with qty units of p. Labor positions are
// stock-exempt. The decrement is conditional; a shortfall aborts the whole
// transaction with ErrInsufficientStock.
func reserveStock(ctx context.Context, tx workshop.Store, p *workshop.InventoryProduct, qty int) error {
	if !p.StockTracked() {
		return nil
	}
	ok, err := tx.DecrementStock(ctx, p.ID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return workshop.ErrInsufficientStock
	}
	return nil
}

// releaseItem returns the item's reserved units to stock and hard-deletes the
// row. Increment and delete share the transaction, so a delete that raced a
// concurrent removal rolls the increment back and reports ErrNotFound instead
// of restocking twice.
func releaseItem(ctx context.Context, tx workshop.Store, it *workshop.OrderItem) error {
	if it.ProductID != nil {
		p, err := tx.ProductForUpdate(ctx, *it.ProductID)
		switch {
		case errors.Is(err, workshop.ErrNotFound):
			// catalog entry gone; nothing to restock
		case err != nil:
			return err
		case p.StockTracked():
			if err := tx.IncrementStock(ctx, p.ID, it.Qty); err != nil {
				return err
			}
		}
	}
	deleted, err := tx.DeleteOrderItem(ctx, it.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return workshop.ErrNotFound
	}
	return nil
}

// releaseOrderStock releases every live reservation of an order without
// touching the item rows. Used when the order itself is soft-deleted.
func releaseOrderStock(ctx context.Context, tx workshop.Store, orderID uuid.UUID) error {
	items, err := tx.OrderItems(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		p, err := tx.ProductForUpdate(ctx, *it.ProductID)
		if errors.Is(err, workshop.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !p.StockTracked() {
			continue
		}
		if err := tx.IncrementStock(ctx, p.ID, it.Qty); err != nil {
			return err
		}
	}
	return nil
}
