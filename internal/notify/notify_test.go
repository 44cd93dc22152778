package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/billing/internal/domain"
	"github.com/dukerupert/billing/internal/notify/notifytest"
	"github.com/dukerupert/billing/internal/telemetry"
)

func TestGate(t *testing.T) {
	ctx := context.Background()
	inv := domain.Invoice{ID: 1}

	rec := &notifytest.Recorder{}
	disabled := NewGate(rec, false, zerolog.Nop())
	assert.False(t, disabled.Enabled())
	require.NoError(t, disabled.SendPaymentReminder(ctx, inv, 3))
	require.NoError(t, disabled.SendOverdueNotice(ctx, inv, 7))
	require.NoError(t, disabled.SendPaymentPlanReminder(ctx, domain.PaymentPlan{ID: 2}, true))
	require.NoError(t, disabled.SendDailySummary(ctx, "ops@example.com", domain.DailySummary{}))
	assert.Empty(t, rec.Calls())

	enabled := NewGate(rec, true, zerolog.Nop())
	require.NoError(t, enabled.SendPaymentReminder(ctx, inv, 3))
	assert.Equal(t, 1, rec.Count(KindPaymentReminder))
}

func TestFanout_AttemptsEveryDispatcher(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("smtp down")

	failing := &notifytest.Recorder{FailInvoice: map[int64]bool{1: true}, Err: boom}
	ok := &notifytest.Recorder{}

	err := Fanout{failing, ok}.SendOverdueNotice(ctx, domain.Invoice{ID: 1}, 14)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.Count(KindOverdueNotice))

	require.NoError(t, Fanout{ok}.SendDailySummary(ctx, "ops@example.com", domain.DailySummary{}))
	assert.Equal(t, 1, ok.Count(KindDailySummary))
}

func TestInstrumented(t *testing.T) {
	m := telemetry.NewBillingMetrics(prometheus.NewRegistry(), "test")
	rec := &notifytest.Recorder{FailPlan: map[int64]bool{9: true}, Err: errors.New("nope")}
	d := NewInstrumented(rec, m)

	require.NoError(t, d.SendPaymentPlanReminder(context.Background(), domain.PaymentPlan{ID: 1}, false))
	require.Error(t, d.SendPaymentPlanReminder(context.Background(), domain.PaymentPlan{ID: 9}, false))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues(KindPlanReminder)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed.WithLabelValues(KindPlanReminder)))
}

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNATSPublisher(t *testing.T) {
	conn := &fakeConn{}
	at := time.Date(2026, time.March, 15, 6, 0, 0, 0, time.UTC)
	p := NewNATSPublisher(conn, domain.FixedClock{At: at})

	inv := domain.Invoice{
		ID:            100,
		TenantID:      uuid.New(),
		InvoiceNumber: "INV-100",
		Amount:        decimal.NewFromInt(1020),
		Status:        domain.InvoiceStatusOverdue,
	}
	require.NoError(t, p.SendOverdueNotice(context.Background(), inv, 30))
	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "billing.notifications.overdue_notice", conn.subjects[0])

	var evt Event
	require.NoError(t, json.Unmarshal(conn.payloads[0], &evt))
	assert.Equal(t, KindOverdueNotice, evt.Kind)
	require.NotNil(t, evt.TenantID)
	assert.Equal(t, inv.TenantID, *evt.TenantID)
	assert.True(t, evt.OccurredAt.Equal(at))
	assert.NotEmpty(t, evt.ID)

	var payload invoicePayload
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, int64(100), payload.Invoice.ID)
	assert.Equal(t, 30, payload.Days)

	require.NoError(t, p.SendDailySummary(context.Background(), "ops@example.com", domain.DailySummary{}))
	assert.Equal(t, "billing.notifications.daily_summary", conn.subjects[1])
	assert.False(t, strings.Contains(string(conn.payloads[1]), "tenantId\":\""))
}

func TestNATSPublisher_PublishError(t *testing.T) {
	p := NewNATSPublisher(&fakeConn{err: errors.New("nats: connection closed")}, nil)
	err := p.SendPaymentReminder(context.Background(), domain.Invoice{ID: 1}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment_reminder")
}
