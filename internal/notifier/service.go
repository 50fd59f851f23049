package notifier

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/adimasruri/go-workshop-orders/internal/kafka"
	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

// Mailer delivers a status-change message to the customer. It is constructed
// once at process start and injected, never reached for as ambient state.
type Mailer interface {
	SendStatusChange(ctx context.Context, p workshop.StatusChangedPayload) error
}

// Deduper filters redelivered events by event id.
type Deduper interface {
	Seen(ctx context.Context, eventID string) bool
	Mark(ctx context.Context, eventID string)
}

type Service struct {
	Dedup  Deduper
	Mailer Mailer
	Log    *logrus.Logger
}

// HandleStatusChanged is the consumer handler. Delivery failures are logged
// and the offset is still committed: notifications are best effort and must
// never wedge the stream.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env workshop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != workshop.EventStatusChanged {
		return nil
	}

	if s.Dedup != nil {
		if s.Dedup.Seen(ctx, env.EventID) {
			return nil
		}
		s.Dedup.Mark(ctx, env.EventID)
	}

	p, err := kafkax.UnwrapPayload[workshop.StatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Mailer.SendStatusChange(ctx, p); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"order_id": p.OrderID,
			"to":       p.To,
		}).Warn("status notification delivery failed")
	}
	return nil
}

// LogMailer stands in where no mail transport is configured.
type LogMailer struct {
	Log *logrus.Logger
}

func (l *LogMailer) SendStatusChange(_ context.Context, p workshop.StatusChangedPayload) error {
	l.Log.WithFields(logrus.Fields{
		"order_id": p.OrderID,
		"tenant":   p.TenantSlug,
		"from":     p.From,
		"to":       p.To,
	}).Info("status change notification")
	return nil
}
