package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/adimasruri/go-workshop-orders/internal/kafka"
	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

// EventPublisher is the post-commit notification dispatch. Publishing is
// fire-and-forget: it must never block the mutation's caller or fail it.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// ViewCache is the post-commit view-invalidation hook plus the add-item
// idempotency fast path. All of it is best effort; the database is the truth.
type ViewCache interface {
	InvalidateOrder(ctx context.Context, tenantSlug string, orderID uuid.UUID)
	ItemForRequest(ctx context.Context, requestID string) (uuid.UUID, bool)
	RememberItemRequest(ctx context.Context, requestID string, itemID uuid.UUID)
}

// Service is the work-order ledger and inventory reservation engine. Every
// mutation runs authorize -> transaction{item mutation -> stock adjustment ->
// totals recomputation} -> commit -> best-effort notify/invalidate, so the
// ledger invariants hold in exactly one place for every entry point.
type Service struct {
	store workshop.Store
	guard *Guard
	pub   EventPublisher
	views ViewCache
	log   *logrus.Logger
	name  string
}

func New(store workshop.Store, pub EventPublisher, views ViewCache, log *logrus.Logger, serviceName string) *Service {
	return &Service{
		store: store,
		guard: NewGuard(store),
		pub:   pub,
		views: views,
		log:   log,
		name:  serviceName,
	}
}

type traceIDKey struct{}

// WithTraceID carries the request id into post-commit event envelopes.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

func traceIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(traceIDKey{}).(string)
	return s
}

type IntakeResult struct {
	Order      workshop.WorkOrder `json:"order"`
	Idempotent bool               `json:"idempotent"`
}

// IntakeOrder opens a new work order with zero totals. Idempotent on the
// tenant-scoped external id: replays return the existing order.
func (s *Service) IntakeOrder(ctx context.Context, actorID uuid.UUID, cmd workshop.IntakeOrderCommand) (*IntakeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.guard.ResolveTenant(ctx, actorID, cmd.TenantID, false); err != nil {
		return nil, err
	}

	if existing, err := s.store.WorkOrderByExternalID(ctx, cmd.TenantID, cmd.ExternalID); err == nil {
		return &IntakeResult{Order: *existing, Idempotent: true}, nil
	} else if !errors.Is(err, workshop.ErrNotFound) {
		return nil, err
	}

	start := cmd.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}
	order := &workshop.WorkOrder{
		ID:         uuid.New(),
		TenantID:   cmd.TenantID,
		VehicleID:  cmd.VehicleID,
		ExternalID: cmd.ExternalID,
		Status:     workshop.StatusPending,
		StartDate:  start,
	}
	err := s.store.WithinTx(ctx, func(tx workshop.Store) error {
		return tx.InsertWorkOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return &IntakeResult{Order: *order}, nil
}

type AddItemResult struct {
	Item       workshop.OrderItem `json:"item"`
	Totals     Totals             `json:"totals"`
	Idempotent bool               `json:"idempotent"`
}

// AddItem appends a billed line to a work order. Catalog lines snapshot the
// product's name and price and reserve stock; custom lines carry their own
// description and price. Item insert, stock decrement and totals rewrite are
// one atomic unit.
func (s *Service) AddItem(ctx context.Context, actorID uuid.UUID, cmd workshop.AddItemCommand) (*AddItemResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	order, tenant, err := s.guard.ResolveOrder(ctx, actorID, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if cmd.RequestID != "" && s.views != nil {
		if itemID, ok := s.views.ItemForRequest(ctx, cmd.RequestID); ok {
			if it, err := s.store.OrderItem(ctx, itemID); err == nil && it.WorkOrderID == order.ID {
				cur, err := s.store.WorkOrder(ctx, order.ID)
				if err != nil {
					return nil, err
				}
				return &AddItemResult{
					Item:       *it,
					Totals:     Totals{NetCents: cur.NetCents, TaxCents: cur.TaxCents, TotalCents: cur.TotalCents},
					Idempotent: true,
				}, nil
			}
		}
	}

	item := &workshop.OrderItem{
		ID:          uuid.New(),
		WorkOrderID: order.ID,
		Description: cmd.Description,
		PriceCents:  cmd.PriceCents,
		Qty:         cmd.Qty,
		ProductID:   cmd.ProductID,
	}
	var totals Totals
	err = s.store.WithinTx(ctx, func(tx workshop.Store) error {
		if cmd.ProductID != nil {
			p, err := tx.ProductForUpdate(ctx, *cmd.ProductID)
			if err != nil {
				return err
			}
			if p.TenantID != tenant.ID {
				return workshop.ErrNotFound
			}
			if err := reserveStock(ctx, tx, p, cmd.Qty); err != nil {
				return err
			}
			// price snapshot at reservation time
			item.PriceCents = p.NetPriceCents
			if item.Description == "" {
				item.Description = p.Name
			}
		}
		if err := tx.InsertOrderItem(ctx, item); err != nil {
			return err
		}
		totals, err = recompute(ctx, tx, order.ID, tenant.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, tenant.Slug, order.ID)
	if cmd.RequestID != "" && s.views != nil {
		s.views.RememberItemRequest(ctx, cmd.RequestID, item.ID)
	}
	return &AddItemResult{Item: *item, Totals: totals}, nil
}

// RemoveItem releases the line's reservation, hard-deletes the row and
// recomputes the totals in one transaction. Removing the same item twice
// reports ErrNotFound without touching stock again.
func (s *Service) RemoveItem(ctx context.Context, actorID uuid.UUID, cmd workshop.RemoveItemCommand) (*Totals, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	order, tenant, err := s.guard.ResolveOrder(ctx, actorID, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	var totals Totals
	err = s.store.WithinTx(ctx, func(tx workshop.Store) error {
		it, err := tx.OrderItem(ctx, cmd.ItemID)
		if err != nil {
			return err
		}
		if it.WorkOrderID != order.ID {
			return workshop.ErrNotFound
		}
		if err := releaseItem(ctx, tx, it); err != nil {
			return err
		}
		totals, err = recompute(ctx, tx, order.ID, tenant.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, tenant.Slug, order.ID)
	return &totals, nil
}

// ChangeStatus advances the work order's state machine. Totals are not
// touched. The status-change notification goes out after commit and its
// failure never reaches the caller.
func (s *Service) ChangeStatus(ctx context.Context, actorID uuid.UUID, cmd workshop.ChangeStatusCommand) (*workshop.WorkOrder, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	order, tenant, err := s.guard.ResolveOrder(ctx, actorID, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !workshop.CanTransition(order.Status, cmd.To) {
		return nil, workshop.ErrInvalidTransition
	}

	from := order.Status
	var endDate *time.Time
	if workshop.ClosesOrder(cmd.To) {
		now := time.Now().UTC()
		endDate = &now
	}
	err = s.store.WithinTx(ctx, func(tx workshop.Store) error {
		return tx.UpdateWorkOrderStatus(ctx, order.ID, cmd.To, endDate)
	})
	if err != nil {
		return nil, err
	}
	order.Status = cmd.To
	order.EndDate = endDate

	s.afterCommit(ctx, tenant.Slug, order.ID)
	s.publishStatusChanged(ctx, order, tenant.Slug, from)
	return order, nil
}

// DeleteOrder soft-deletes the work order and releases every live reservation
// in the same transaction. Item rows are kept as history; they stop counting
// toward any invariant once the order is gone.
func (s *Service) DeleteOrder(ctx context.Context, actorID, orderID uuid.UUID) error {
	order, tenant, err := s.guard.ResolveOrder(ctx, actorID, orderID)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(tx workshop.Store) error {
		if err := releaseOrderStock(ctx, tx, order.ID); err != nil {
			return err
		}
		return tx.SoftDeleteWorkOrder(ctx, order.ID, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, tenant.Slug, order.ID)
	s.publishOrderDeleted(ctx, order.ID, tenant.Slug)
	return nil
}

type OrderSummary struct {
	Order workshop.WorkOrder   `json:"order"`
	Items []workshop.OrderItem `json:"items"`
}

func (s *Service) GetOrder(ctx context.Context, actorID, orderID uuid.UUID) (*OrderSummary, error) {
	order, _, err := s.guard.ResolveOrder(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.OrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderSummary{Order: *order, Items: items}, nil
}

func (s *Service) CreateProduct(ctx context.Context, actorID uuid.UUID, cmd workshop.CreateProductCommand) (*workshop.InventoryProduct, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.guard.ResolveTenant(ctx, actorID, cmd.TenantID, true); err != nil {
		return nil, err
	}

	p := &workshop.InventoryProduct{
		ID:            uuid.New(),
		TenantID:      cmd.TenantID,
		Name:          cmd.Name,
		Code:          cmd.Code,
		Category:      cmd.Category,
		NetPriceCents: cmd.NetPriceCents,
		Stock:         cmd.Stock,
	}
	err := s.store.WithinTx(ctx, func(tx workshop.Store) error {
		return tx.InsertProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, actorID uuid.UUID, cmd workshop.UpdateProductCommand) (*workshop.InventoryProduct, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	p, _, err := s.guard.ResolveProduct(ctx, actorID, cmd.ProductID, true)
	if err != nil {
		return nil, err
	}

	p.Name = cmd.Name
	p.Code = cmd.Code
	p.NetPriceCents = cmd.NetPriceCents
	err = s.store.WithinTx(ctx, func(tx workshop.Store) error {
		return tx.UpdateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct soft-deletes a catalog entry. Owner only, and refused while
// live order items still hold reservations against it.
func (s *Service) DeleteProduct(ctx context.Context, actorID, productID uuid.UUID) error {
	p, _, err := s.guard.ResolveProduct(ctx, actorID, productID, true)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx workshop.Store) error {
		n, err := tx.CountLiveReservations(ctx, p.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return workshop.ErrValidation
		}
		return tx.SoftDeleteProduct(ctx, p.ID, time.Now().UTC())
	})
}

// AdjustStock is the manual inventory flow. It runs through the same
// conditional-update discipline as the reservation coordinator, so the two
// writers cannot lose each other's updates, and it cannot drive stock
// negative.
func (s *Service) AdjustStock(ctx context.Context, actorID uuid.UUID, cmd workshop.AdjustStockCommand) (*workshop.InventoryProduct, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := s.guard.ResolveProduct(ctx, actorID, cmd.ProductID, true); err != nil {
		return nil, err
	}

	var updated *workshop.InventoryProduct
	err := s.store.WithinTx(ctx, func(tx workshop.Store) error {
		p, err := tx.ProductForUpdate(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if !p.StockTracked() {
			return workshop.ErrValidation
		}
		ok, err := tx.AdjustStock(ctx, p.ID, cmd.Delta)
		if err != nil {
			return err
		}
		if !ok {
			return workshop.ErrInsufficientStock
		}
		p.Stock += cmd.Delta
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) ListProducts(ctx context.Context, actorID, tenantID uuid.UUID) ([]workshop.InventoryProduct, error) {
	if _, err := s.guard.ResolveTenant(ctx, actorID, tenantID, false); err != nil {
		return nil, err
	}
	return s.store.ListProducts(ctx, tenantID)
}

// SetTaxRate changes the tenant's rate. Owner only. The next recomputation of
// any order picks it up immediately.
func (s *Service) SetTaxRate(ctx context.Context, actorID uuid.UUID, cmd workshop.SetTaxRateCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if _, err := s.guard.ResolveTenant(ctx, actorID, cmd.TenantID, true); err != nil {
		return err
	}
	return s.store.WithinTx(ctx, func(tx workshop.Store) error {
		return tx.UpdateTenantTaxRate(ctx, cmd.TenantID, cmd.Rate)
	})
}

func (s *Service) afterCommit(ctx context.Context, tenantSlug string, orderID uuid.UUID) {
	if s.views != nil {
		s.views.InvalidateOrder(ctx, tenantSlug, orderID)
	}
}

func (s *Service) publishStatusChanged(ctx context.Context, o *workshop.WorkOrder, slug string, from workshop.Status) {
	if s.pub == nil {
		return
	}
	ev := workshop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     workshop.EventStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.name,
		TraceID:       traceIDFrom(ctx),
		CorrelationID: o.ID.String(),
		Payload: kafkax.MustMarshal(workshop.StatusChangedPayload{
			OrderID:    o.ID.String(),
			TenantSlug: slug,
			VehicleID:  o.VehicleID.String(),
			From:       from,
			To:         o.Status,
			TotalCents: o.TotalCents,
			EndDate:    o.EndDate,
		}),
	}
	s.pub.Publish(workshop.PartitionKey(o.ID.String()), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(workshop.EventStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	s.log.WithFields(logrus.Fields{"order_id": o.ID, "from": from, "to": o.Status}).
		Info("status change dispatched")
}

func (s *Service) publishOrderDeleted(ctx context.Context, orderID uuid.UUID, slug string) {
	if s.pub == nil {
		return
	}
	ev := workshop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     workshop.EventOrderDeleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.name,
		TraceID:       traceIDFrom(ctx),
		CorrelationID: orderID.String(),
		Payload: kafkax.MustMarshal(workshop.OrderDeletedPayload{
			OrderID:    orderID.String(),
			TenantSlug: slug,
		}),
	}
	s.pub.Publish(workshop.PartitionKey(orderID.String()), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(workshop.EventOrderDeleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
