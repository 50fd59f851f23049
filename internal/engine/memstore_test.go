package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

// memStore is an in-memory workshop.Store. WithinTx snapshots all state and
// restores it when the callback fails, mirroring a rolled-back transaction.
type memStore struct {
	tenants  map[uuid.UUID]workshop.Tenant
	members  map[uuid.UUID]map[uuid.UUID]bool
	orders   map[uuid.UUID]workshop.WorkOrder
	items    map[uuid.UUID]workshop.OrderItem
	products map[uuid.UUID]workshop.InventoryProduct
}

func newMemStore() *memStore {
	return &memStore{
		tenants:  map[uuid.UUID]workshop.Tenant{},
		members:  map[uuid.UUID]map[uuid.UUID]bool{},
		orders:   map[uuid.UUID]workshop.WorkOrder{},
		items:    map[uuid.UUID]workshop.OrderItem{},
		products: map[uuid.UUID]workshop.InventoryProduct{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx workshop.Store) error) error {
	tenants, orders := cloneMap(m.tenants), cloneMap(m.orders)
	items, products := cloneMap(m.items), cloneMap(m.products)
	if err := fn(m); err != nil {
		m.tenants, m.orders, m.items, m.products = tenants, orders, items, products
		return err
	}
	return nil
}

func (m *memStore) Tenant(_ context.Context, id uuid.UUID) (*workshop.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, workshop.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) IsTenantMember(_ context.Context, tenantID, actorID uuid.UUID) (bool, error) {
	return m.members[tenantID][actorID], nil
}

func (m *memStore) UpdateTenantTaxRate(_ context.Context, tenantID uuid.UUID, rate float64) error {
	t, ok := m.tenants[tenantID]
	if !ok {
		return workshop.ErrNotFound
	}
	t.TaxRate = rate
	m.tenants[tenantID] = t
	return nil
}

func (m *memStore) WorkOrder(_ context.Context, id uuid.UUID) (*workshop.WorkOrder, error) {
	o, ok := m.orders[id]
	if !ok || o.DeletedAt != nil {
		return nil, workshop.ErrNotFound
	}
	return &o, nil
}

func (m *memStore) WorkOrderByExternalID(_ context.Context, tenantID uuid.UUID, externalID string) (*workshop.WorkOrder, error) {
	for _, o := range m.orders {
		if o.TenantID == tenantID && o.ExternalID == externalID && o.DeletedAt == nil {
			return &o, nil
		}
	}
	return nil, workshop.ErrNotFound
}

func (m *memStore) InsertWorkOrder(_ context.Context, o *workshop.WorkOrder) error {
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) UpdateWorkOrderTotals(_ context.Context, id uuid.UUID, net, tax, total int64) error {
	o, ok := m.orders[id]
	if !ok || o.DeletedAt != nil {
		return workshop.ErrNotFound
	}
	o.NetCents, o.TaxCents, o.TotalCents = net, tax, total
	m.orders[id] = o
	return nil
}

func (m *memStore) UpdateWorkOrderStatus(_ context.Context, id uuid.UUID, status workshop.Status, endDate *time.Time) error {
	o, ok := m.orders[id]
	if !ok || o.DeletedAt != nil {
		return workshop.ErrNotFound
	}
	o.Status = status
	o.EndDate = endDate
	m.orders[id] = o
	return nil
}

func (m *memStore) SoftDeleteWorkOrder(_ context.Context, id uuid.UUID, at time.Time) error {
	o, ok := m.orders[id]
	if !ok || o.DeletedAt != nil {
		return workshop.ErrNotFound
	}
	o.DeletedAt = &at
	m.orders[id] = o
	return nil
}

func (m *memStore) OrderItem(_ context.Context, id uuid.UUID) (*workshop.OrderItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, workshop.ErrNotFound
	}
	return &it, nil
}

func (m *memStore) OrderItems(_ context.Context, orderID uuid.UUID) ([]workshop.OrderItem, error) {
	var out []workshop.OrderItem
	for _, it := range m.items {
		if it.WorkOrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memStore) InsertOrderItem(_ context.Context, it *workshop.OrderItem) error {
	m.items[it.ID] = *it
	return nil
}

func (m *memStore) DeleteOrderItem(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *memStore) Product(_ context.Context, id uuid.UUID) (*workshop.InventoryProduct, error) {
	p, ok := m.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, workshop.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) ProductForUpdate(ctx context.Context, id uuid.UUID) (*workshop.InventoryProduct, error) {
	return m.Product(ctx, id)
}

func (m *memStore) ListProducts(_ context.Context, tenantID uuid.UUID) ([]workshop.InventoryProduct, error) {
	var out []workshop.InventoryProduct
	for _, p := range m.products {
		if p.TenantID == tenantID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memStore) InsertProduct(_ context.Context, p *workshop.InventoryProduct) error {
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) UpdateProduct(_ context.Context, p *workshop.InventoryProduct) error {
	cur, ok := m.products[p.ID]
	if !ok || cur.DeletedAt != nil {
		return workshop.ErrNotFound
	}
	cur.Name, cur.Code, cur.NetPriceCents = p.Name, p.Code, p.NetPriceCents
	m.products[p.ID] = cur
	return nil
}

func (m *memStore) SoftDeleteProduct(_ context.Context, id uuid.UUID, at time.Time) error {
	p, ok := m.products[id]
	if !ok || p.DeletedAt != nil {
		return workshop.ErrNotFound
	}
	p.DeletedAt = &at
	m.products[id] = p
	return nil
}

func (m *memStore) CountLiveReservations(_ context.Context, productID uuid.UUID) (int, error) {
	n := 0
	for _, it := range m.items {
		if it.ProductID == nil || *it.ProductID != productID {
			continue
		}
		if o, ok := m.orders[it.WorkOrderID]; ok && o.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *memStore) DecrementStock(_ context.Context, productID uuid.UUID, qty int) (bool, error) {
	p, ok := m.products[productID]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	if p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	m.products[productID] = p
	return true, nil
}

func (m *memStore) IncrementStock(_ context.Context, productID uuid.UUID, qty int) error {
	p, ok := m.products[productID]
	if !ok || p.DeletedAt != nil {
		return workshop.ErrNotFound
	}
	p.Stock += qty
	m.products[productID] = p
	return nil
}

func (m *memStore) AdjustStock(_ context.Context, productID uuid.UUID, delta int) (bool, error) {
	p, ok := m.products[productID]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	if p.Stock+delta < 0 {
		return false, nil
	}
	p.Stock += delta
	m.products[productID] = p
	return true, nil
}

var _ workshop.Store = (*memStore)(nil)
