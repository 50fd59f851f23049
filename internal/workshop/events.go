package workshop

import (
	"encoding/json"
	"time"
)

const (
	EventStatusChanged = "WorkOrderStatusChanged"
	EventOrderDeleted  = "WorkOrderDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // work order id
	Payload       json.RawMessage `json:"payload"`
}

// StatusChangedPayload is the order snapshot handed to the notification
// collaborator after commit.
type StatusChangedPayload struct {
	OrderID    string     `json:"order_id"`
	TenantSlug string     `json:"tenant_slug"`
	VehicleID  string     `json:"vehicle_id"`
	From       Status     `json:"from"`
	To         Status     `json:"to"`
	TotalCents int64      `json:"total_cents"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

type OrderDeletedPayload struct {
	OrderID    string `json:"order_id"`
	TenantSlug string `json:"tenant_slug"`
}
