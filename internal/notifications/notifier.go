package notifications

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/littlethreads/backend/pkg/config"
	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/logger"
)

// Recipient is who the confirmation goes to, resolved by checkout from either
// the user record or the guest contact info.
type Recipient struct {
	Email string
	Name  string
}

// Notifier sends the post-checkout order confirmation. Callers treat any
// outcome as informational: a failed send never fails the order.
type Notifier interface {
	Send(ctx context.Context, order *models.Order, recipient Recipient) error
}

// smtpNotifier delivers confirmations over SMTP.
type smtpNotifier struct {
	cfg  config.SMTPConfig
	logg *logger.Logger
}

// NewNotifier returns an SMTP notifier when SMTP is configured and a no-op
// notifier otherwise, so checkout never has to branch on configuration.
func NewNotifier(cfg config.SMTPConfig, logg *logger.Logger) Notifier {
	if !cfg.Enabled() {
		return &noopNotifier{logg: logg}
	}
	return &smtpNotifier{cfg: cfg, logg: logg}
}

func (n *smtpNotifier) Send(ctx context.Context, order *models.Order, recipient Recipient) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	if recipient.Email == "" {
		return fmt.Errorf("recipient email is required")
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.FromAddress); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(recipient.Email); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Order confirmation #%s", shortOrderRef(order)))
	msg.SetBodyString(mail.TypeTextHTML, ConfirmationHTML(order, recipient))

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	if n.logg != nil {
		n.logg.Info(ctx, "order confirmation sent")
	}
	return nil
}

// noopNotifier stands in when SMTP is unconfigured (tests, local dev).
type noopNotifier struct {
	logg *logger.Logger
}

func (n *noopNotifier) Send(ctx context.Context, order *models.Order, recipient Recipient) error {
	if n.logg != nil {
		n.logg.Info(ctx, "smtp disabled, skipping order confirmation")
	}
	return nil
}

func shortOrderRef(order *models.Order) string {
	id := order.ID.String()
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
