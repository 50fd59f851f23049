package engine

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

type Totals struct {
	NetCents   int64 `json:"net_cents"`
	TaxCents   int64 `json:"tax_cents"`
	TotalCents int64 `json:"total_cents"`
}

// ComputeTotals derives tax and gross from a net amount and a percent rate,
// rounding the tax to the nearest cent.
func ComputeTotals(netCents int64, taxRate float64) Totals {
	tax := int64(math.Round(float64(netCents) * taxRate / 100))
	return Totals{NetCents: netCents, TaxCents: tax, TotalCents: netCents + tax}
}

// recompute re-derives the order's monetary fields from its live items and
// writes them back inside the caller's transaction. The tenant's tax rate is
// read here, never cached, so a rate change shows up on the next mutation.
func recompute(ctx context.Context, tx workshop.Store, orderID, tenantID uuid.UUID) (Totals, error) {
	items, err := tx.OrderItems(ctx, orderID)
	if err != nil {
		return Totals{}, err
	}
	var net int64
	for _, it := range items {
		net += it.PriceCents * int64(it.Qty)
	}

	t, err := tx.Tenant(ctx, tenantID)
	if err != nil {
		return Totals{}, err
	}
	totals := ComputeTotals(net, t.TaxRate)

	if err := tx.UpdateWorkOrderTotals(ctx, orderID, totals.NetCents, totals.TaxCents, totals.TotalCents); err != nil {
		return Totals{}, err
	}
	return totals, nil
}
