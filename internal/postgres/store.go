package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same queries
// run inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgx-backed workshop.Store. Soft-deleted work orders and
// products are filtered out of every read.
type Store struct {
	pool *pgxpool.Pool // nil when this Store wraps a transaction
	q    querier
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx workshop.Store) error) error {
	if s.pool == nil {
		// already transactional; nested units join the outer one
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{q: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return workshop.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// ---- tenants ----

func (s *Store) Tenant(ctx context.Context, id uuid.UUID) (*workshop.Tenant, error) {
	var t workshop.Tenant
	err := s.q.QueryRow(ctx, `
		SELECT id, slug, tax_rate, owner_id, created_at, updated_at
		FROM tenants WHERE id=$1`, id).
		Scan(&t.ID, &t.Slug, &t.TaxRate, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "select tenant")
	}
	return &t, nil
}

func (s *Store) IsTenantMember(ctx context.Context, tenantID, actorID uuid.UUID) (bool, error) {
	var ok bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM tenant_members WHERE tenant_id=$1 AND actor_id=$2)`,
		tenantID, actorID).Scan(&ok)
	if err != nil {
		return false, errors.Wrap(err, "select tenant member")
	}
	return ok, nil
}

func (s *Store) UpdateTenantTaxRate(ctx context.Context, tenantID uuid.UUID, rate float64) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE tenants SET tax_rate=$2, updated_at=now() WHERE id=$1`, tenantID, rate)
	if err != nil {
		return errors.Wrap(err, "update tax rate")
	}
	if ct.RowsAffected() == 0 {
		return workshop.ErrNotFound
	}
	return nil
}

// ---- work orders ----

const workOrderCols = `id, tenant_id, vehicle_id, external_id, status,
	net_cents, tax_cents, total_cents, start_date, end_date, deleted_at,
	created_at, updated_at`

func scanWorkOrder(row pgx.Row) (*workshop.WorkOrder, error) {
	var o workshop.WorkOrder
	err := row.Scan(&o.ID, &o.TenantID, &o.VehicleID, &o.ExternalID, &o.Status,
		&o.NetCents, &o.TaxCents, &o.TotalCents, &o.StartDate, &o.EndDate,
		&o.DeletedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) WorkOrder(ctx context.Context, id uuid.UUID) (*workshop.WorkOrder, error) {
	o, err := scanWorkOrder(s.q.QueryRow(ctx, `
		SELECT `+workOrderCols+` FROM work_orders
		WHERE id=$1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, notFoundOr(err, "select work order")
	}
	return o, nil
}

func (s *Store) WorkOrderByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*workshop.WorkOrder, error) {
	o, err := scanWorkOrder(s.q.QueryRow(ctx, `
		SELECT `+workOrderCols+` FROM work_orders
		WHERE tenant_id=$1 AND external_id=$2 AND deleted_at IS NULL`, tenantID, externalID))
	if err != nil {
		return nil, notFoundOr(err, "select work order by external id")
	}
	return o, nil
}

func (s *Store) InsertWorkOrder(ctx context.Context, o *workshop.WorkOrder) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO work_orders(id, tenant_id, vehicle_id, external_id, status,
			net_cents, tax_cents, total_cents, start_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.TenantID, o.VehicleID, o.ExternalID, o.Status,
		o.NetCents, o.TaxCents, o.TotalCents, o.StartDate)
	return errors.Wrap(err, "insert work order")
}

func (s *Store) UpdateWorkOrderTotals(ctx context.Context, id uuid.UUID, net, tax, total int64) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE work_orders SET net_cents=$2, tax_cents=$3, total_cents=$4, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`, id, net, tax, total)
	if err != nil {
		return errors.Wrap(err, "update totals")
	}
	if ct.RowsAffected() == 0 {
		return workshop.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateWorkOrderStatus(ctx context.Context, id uuid.UUID, status workshop.Status, endDate *time.Time) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE work_orders SET status=$2, end_date=$3, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`, id, status, endDate)
	if err != nil {
		return errors.Wrap(err, "update status")
	}
	if ct.RowsAffected() == 0 {
		return workshop.ErrNotFound
	}
	return nil
}

func (s *Store) SoftDeleteWorkOrder(ctx context.Context, id uuid.UUID, at time.Time) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE work_orders SET deleted_at=$2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return errors.Wrap(err, "soft delete work order")
	}
	if ct.RowsAffected() == 0 {
		return workshop.ErrNotFound
	}
	return nil
}

// ---- order items ----

func (s *Store) OrderItem(ctx context.Context, id uuid.UUID) (*workshop.OrderItem, error) {
	var it workshop.OrderItem
	var productID uuid.NullUUID
	err := s.q.QueryRow(ctx, `
		SELECT id, work_order_id, description, price_cents, qty, product_id
		FROM order_items WHERE id=$1`, id).
		Scan(&it.ID, &it.WorkOrderID, &it.Description, &it.PriceCents, &it.Qty, &productID)
	if err != nil {
		return nil, notFoundOr(err, "select order item")
	}
	if productID.Valid {
		it.ProductID = &productID.UUID
	}
	return &it, nil
}

func (s *Store) OrderItems(ctx context.Context, orderID uuid.UUID) ([]workshop.OrderItem, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, work_order_id, description, price_cents, qty, product_id
		FROM order_items WHERE work_order_id=$1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "select order items")
	}
	defer rows.Close()

	var out []workshop.OrderItem
	for rows.Next() {
		var it workshop.OrderItem
		var productID uuid.NullUUID
		if err := rows.Scan(&it.ID, &it.WorkOrderID, &it.Description, &it.PriceCents, &it.Qty, &productID); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		if productID.Valid {
			it.ProductID = &productID.UUID
		}
		out = append(out, it)
	}
	return out, errors.Wrap(rows.Err(), "iterate order items")
}

func (s *Store) InsertOrderItem(ctx context.Context, it *workshop.OrderItem) error {
	var productID uuid.NullUUID
	if it.ProductID != nil {
		productID = uuid.NullUUID{UUID: *it.ProductID, Valid: true}
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO order_items(id, work_order_id, description, price_cents, qty, product_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		it.ID, it.WorkOrderID, it.Description, it.PriceCents, it.Qty, productID)
	return errors.Wrap(err, "insert order item")
}

func (s *Store) DeleteOrderItem(ctx context.Context, id uuid.UUID) (bool, error) {
	ct, err := s.q.Exec(ctx, `DELETE FROM order_items WHERE id=$1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete order item")
	}
	return ct.RowsAffected() == 1, nil
}

// ---- products ----

const productCols = `id, tenant_id, name, code, category, net_price_cents,
	stock, deleted_at, created_at, updated_at`

func scanProduct(row pgx.Row) (*workshop.InventoryProduct, error) {
	var p workshop.InventoryProduct
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Code, &p.Category,
		&p.NetPriceCents, &p.Stock, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Product(ctx context.Context, id uuid.UUID) (*workshop.InventoryProduct, error) {
	p, err := scanProduct(s.q.QueryRow(ctx, `
		SELECT `+productCols+` FROM products
		WHERE id=$1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, notFoundOr(err, "select product")
	}
	return p, nil
}

func (s *Store) ProductForUpdate(ctx context.Context, id uuid.UUID) (*workshop.InventoryProduct, error) {
	p, err := scanProduct(s.q.QueryRow(ctx, `
		SELECT `+productCols+` FROM products
		WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`, id))
	if err != nil {
		return nil, notFoundOr(err, "select product for update")
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, tenantID uuid.UUID) ([]workshop.InventoryProduct, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+productCols+` FROM products
		WHERE tenant_id=$1 AND deleted_at IS NULL ORDER BY code`, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "select products")
	}
	defer rows.Close()

	var out []workshop.InventoryProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, *p)
	}
	return out, errors.Wrap(rows.Err(), "iterate products")
}

func (s *Store) InsertProduct(ctx context.Context, p *workshop.InventoryProduct) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO products(id, tenant_id, name, code, category, net_price_cents, stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.TenantID, p.Name, p.Code, p.Category, p.NetPriceCents, p.Stock)
	return errors.Wrap(err, "insert product")
}

func (s *Store) UpdateProduct(ctx context.Context, p *workshop.InventoryProduct) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE products SET name=$2, code=$3, net_price_cents=$4, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`,
		p.ID, p.Name, p.Code, p.NetPriceCents)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	if ct.RowsAffected() == 0 {
		return workshop.ErrNotFound
	}
	return nil
}

func (s *Store) SoftDeleteProduct(ctx context.Context, id uuid.UUID, at time.Time) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE products SET deleted_at=$2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return errors.Wrap(err, "soft delete product")
	}
	if ct.RowsAffected() == 0 {
		return workshop.ErrNotFound
	}
	return nil
}

func (s *Store) CountLiveReservations(ctx context.Context, productID uuid.UUID) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM order_items i
		JOIN work_orders o ON o.id = i.work_order_id
		WHERE i.product_id=$1 AND o.deleted_at IS NULL`, productID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count reservations")
	}
	return n, nil
}

// ---- stock counter ----
// Conditional updates: the WHERE clause carries the floor check, so the
// check-and-write is one atomic statement and concurrent writers cannot lose
// updates or drive the counter negative.

func (s *Store) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	ct, err := s.q.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL AND stock >= $2`, productID, qty)
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}
	return ct.RowsAffected() == 1, nil
}

func (s *Store) IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`, productID, qty)
	if err != nil {
		return errors.Wrap(err, "increment stock")
	}
	if ct.RowsAffected() == 0 {
		return workshop.ErrNotFound
	}
	return nil
}

func (s *Store) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (bool, error) {
	ct, err := s.q.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL AND stock + $2 >= 0`, productID, delta)
	if err != nil {
		return false, errors.Wrap(err, "adjust stock")
	}
	return ct.RowsAffected() == 1, nil
}

var _ workshop.Store = (*Store)(nil)
