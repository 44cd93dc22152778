package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/dukerupert/billing/internal/domain"
)

// SubjectPrefix is prepended to the notification kind to form the NATS subject,
// e.g. billing.notifications.overdue_notice.
const SubjectPrefix = "billing.notifications."

// Publisher is the subset of *nats.Conn used by NATSPublisher.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON envelope published for every notification.
type Event struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	TenantID   *uuid.UUID      `json:"tenantId,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type invoicePayload struct {
	Invoice domain.Invoice `json:"invoice"`
	Days    int            `json:"days"`
}

type planPayload struct {
	Plan      domain.PaymentPlan `json:"plan"`
	IsOverdue bool               `json:"isOverdue"`
}

type summaryPayload struct {
	Recipient string              `json:"recipient"`
	Summary   domain.DailySummary `json:"summary"`
}

// NATSPublisher emits notification events for downstream consumers
// (SMS gateways, patient portal, audit).
type NATSPublisher struct {
	conn  Publisher
	clock domain.Clock
}

var _ domain.NotificationDispatcher = (*NATSPublisher)(nil)

// NewNATSPublisher creates a publisher over an established connection.
func NewNATSPublisher(conn Publisher, clock domain.Clock) *NATSPublisher {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &NATSPublisher{conn: conn, clock: clock}
}

// Connect dials NATS with reconnects enabled.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func (p *NATSPublisher) publish(kind string, tenantID *uuid.UUID, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	data, err := json.Marshal(Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		TenantID:   tenantID,
		OccurredAt: p.clock.Now().UTC(),
		Payload:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", kind, err)
	}

	if err := p.conn.Publish(SubjectPrefix+kind, data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}
	return nil
}

func (p *NATSPublisher) SendPaymentReminder(ctx context.Context, invoice domain.Invoice, daysUntilDue int) error {
	id := invoice.TenantID
	return p.publish(KindPaymentReminder, &id, invoicePayload{Invoice: invoice, Days: daysUntilDue})
}

func (p *NATSPublisher) SendOverdueNotice(ctx context.Context, invoice domain.Invoice, daysOverdue int) error {
	id := invoice.TenantID
	return p.publish(KindOverdueNotice, &id, invoicePayload{Invoice: invoice, Days: daysOverdue})
}

func (p *NATSPublisher) SendPaymentPlanReminder(ctx context.Context, plan domain.PaymentPlan, isOverdue bool) error {
	id := plan.TenantID
	return p.publish(KindPlanReminder, &id, planPayload{Plan: plan, IsOverdue: isOverdue})
}

func (p *NATSPublisher) SendDailySummary(ctx context.Context, recipient string, summary domain.DailySummary) error {
	return p.publish(KindDailySummary, summary.TenantID, summaryPayload{Recipient: recipient, Summary: summary})
}
