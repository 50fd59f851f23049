package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

// Guard resolves the tenant scope of a target resource and checks the acting
// identity against it before any transaction opens. Routine mutations need
// member-or-owner; destructive and configuration operations need the owner.
type Guard struct {
	store workshop.Store
}

func NewGuard(store workshop.Store) *Guard { return &Guard{store: store} }

// ResolveOrder loads a live work order and its tenant for a routine mutation.
func (g *Guard) ResolveOrder(ctx context.Context, actorID, orderID uuid.UUID) (*workshop.WorkOrder, *workshop.Tenant, error) {
	o, err := g.store.WorkOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	t, err := g.store.Tenant(ctx, o.TenantID)
	if err != nil {
		return nil, nil, err
	}
	if err := g.allow(ctx, t, actorID, false); err != nil {
		return nil, nil, err
	}
	return o, t, nil
}

func (g *Guard) ResolveProduct(ctx context.Context, actorID, productID uuid.UUID, ownerOnly bool) (*workshop.InventoryProduct, *workshop.Tenant, error) {
	p, err := g.store.Product(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	t, err := g.store.Tenant(ctx, p.TenantID)
	if err != nil {
		return nil, nil, err
	}
	if err := g.allow(ctx, t, actorID, ownerOnly); err != nil {
		return nil, nil, err
	}
	return p, t, nil
}

func (g *Guard) ResolveTenant(ctx context.Context, actorID, tenantID uuid.UUID, ownerOnly bool) (*workshop.Tenant, error) {
	t, err := g.store.Tenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := g.allow(ctx, t, actorID, ownerOnly); err != nil {
		return nil, err
	}
	return t, nil
}

func (g *Guard) allow(ctx context.Context, t *workshop.Tenant, actorID uuid.UUID, ownerOnly bool) error {
	if actorID == t.OwnerID {
		return nil
	}
	if ownerOnly {
		return workshop.ErrUnauthorized
	}
	member, err := g.store.IsTenantMember(ctx, t.ID, actorID)
	if err != nil {
		return err
	}
	if !member {
		return workshop.ErrUnauthorized
	}
	return nil
}
