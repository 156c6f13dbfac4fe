package payments

import (
	"context"
	"fmt"

	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/mail"
)

// PaymentConfirmation describes the transactional email sent to a customer
// after a B2B invoice payment is confirmed.
type PaymentConfirmation struct {
	To            string
	CustomerName  string
	ProjectName   string
	InvoiceID     string
	PaymentMethod string
}

// Notifier dispatches customer-facing payment notifications.
type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, p PaymentConfirmation) error
}

type smtpNotifier struct{}

// NewSMTPNotifier returns a Notifier backed by the SMTP mailer.
func NewSMTPNotifier() Notifier {
	return &smtpNotifier{}
}

func (n *smtpNotifier) SendPaymentConfirmation(ctx context.Context, p PaymentConfirmation) error {
	_ = ctx
	subject := fmt.Sprintf("Payment received for %s", p.InvoiceID)
	return mail.SendMail(p.To, subject, paymentConfirmationBody(p))
}

func paymentConfirmationBody(p PaymentConfirmation) string {
	name := p.CustomerName
	if name == "" {
		name = "there"
	}
	project := p.ProjectName
	if project == "" {
		project = "your project"
	}
	method := p.PaymentMethod
	if method == "" {
		method = "your selected payment method"
	}
	return fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We have received your payment for invoice <strong>%s</strong> via %s.</p>
<p>Work on %s has started and is now <strong>In Progress</strong>. We will keep you posted.</p>
<p>&mdash; RIO Templates</p>`,
		name, p.InvoiceID, method, project,
	)
}
