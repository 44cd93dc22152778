package email

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dukerupert/billing/internal/domain"
)

// Notifier sends billing notifications as email.
type Notifier struct {
	sender      Sender
	fromAddress string
	fromName    string
	logger      zerolog.Logger
}

var _ domain.NotificationDispatcher = (*Notifier)(nil)

// NewNotifier creates an email-backed notification dispatcher.
func NewNotifier(sender Sender, fromAddress, fromName string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sender:      sender,
		fromAddress: fromAddress,
		fromName:    fromName,
		logger:      logger.With().Str("component", "email").Logger(),
	}
}

// SendPaymentReminder emails the patient ahead of the due date.
func (n *Notifier) SendPaymentReminder(ctx context.Context, invoice domain.Invoice, daysUntilDue int) error {
	return n.send(ctx, invoice.Contact.Email, PaymentReminderEmail{Invoice: invoice, DaysUntilDue: daysUntilDue}, map[string]string{
		"X-Billing-Invoice": invoice.InvoiceNumber,
	})
}

// SendOverdueNotice emails the patient an escalation notice.
func (n *Notifier) SendOverdueNotice(ctx context.Context, invoice domain.Invoice, daysOverdue int) error {
	return n.send(ctx, invoice.Contact.Email, OverdueNoticeEmail{Invoice: invoice, DaysOverdue: daysOverdue}, map[string]string{
		"X-Billing-Invoice": invoice.InvoiceNumber,
	})
}

// SendPaymentPlanReminder emails the patient about an installment.
func (n *Notifier) SendPaymentPlanReminder(ctx context.Context, plan domain.PaymentPlan, isOverdue bool) error {
	return n.send(ctx, plan.Contact.Email, PaymentPlanReminderEmail{Plan: plan, IsOverdue: isOverdue}, map[string]string{
		"X-Billing-Plan": strconv.FormatInt(plan.ID, 10),
	})
}

// SendDailySummary emails the operator digest.
func (n *Notifier) SendDailySummary(ctx context.Context, recipient string, summary domain.DailySummary) error {
	return n.send(ctx, recipient, DailySummaryEmail{Summary: summary}, nil)
}

func (n *Notifier) send(ctx context.Context, to string, tmpl EmailTemplate, headers map[string]string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}

	htmlBody, textBody, err := render(ctx, tmpl)
	if err != nil {
		return fmt.Errorf("failed to render %q: %w", tmpl.Subject(), err)
	}

	from := n.fromAddress
	if n.fromName != "" {
		from = fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress)
	}

	msg := &Email{
		To:       []string{to},
		From:     from,
		Subject:  tmpl.Subject(),
		HTMLBody: htmlBody,
		TextBody: textBody,
		Headers:  headers,
	}

	if _, err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %q: %w", tmpl.Subject(), err)
	}
	return nil
}

func render(ctx context.Context, tmpl EmailTemplate) (string, string, error) {
	var buf bytes.Buffer
	if err := tmpl.Component().Render(ctx, &buf); err != nil {
		return "", "", err
	}
	htmlBody := buf.String()
	return htmlBody, generatePlainText(htmlBody), nil
}

// generatePlainText creates a simple plain text version from HTML
func generatePlainText(html string) string {
	text := html

	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = strings.ReplaceAll(text, "<br />", "\n")
	text = strings.ReplaceAll(text, "</p>", "\n\n")
	text = strings.ReplaceAll(text, "</div>", "\n")
	text = strings.ReplaceAll(text, "</h1>", "\n\n")
	text = strings.ReplaceAll(text, "</h2>", "\n\n")
	text = strings.ReplaceAll(text, "</h3>", "\n\n")

	for strings.Contains(text, "<") && strings.Contains(text, ">") {
		start := strings.Index(text, "<")
		end := strings.Index(text, ">")
		if start >= 0 && end > start {
			text = text[:start] + text[end+1:]
		} else {
			break
		}
	}

	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	text = strings.ReplaceAll(text, "&#34;", "\"")
	text = strings.ReplaceAll(text, "&#39;", "'")

	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
