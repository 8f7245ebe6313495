package notifications

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/config"
	"github.com/littlethreads/backend/pkg/db/models"
)

func confirmationOrder() *models.Order {
	yellow := "Yellow"
	return &models.Order{
		ID:              uuid.New(),
		TotalPrice:      decimal.RequireFromString("1620.00"),
		NewUserDiscount: true,
		Lines: models.OrderLines{
			{
				ProductID: uuid.New(),
				Title:     "Raincoat <Deluxe>",
				Quantity:  2,
				Size:      "2T",
				Color:     &yellow,
				UnitPrice: decimal.NewFromInt(900),
				LineTotal: decimal.NewFromInt(1800),
			},
		},
	}
}

func TestConfirmationHTML(t *testing.T) {
	html := ConfirmationHTML(confirmationOrder(), Recipient{Email: "a@b.c", Name: "Mara"})

	for _, want := range []string{
		"Hello Mara,",
		"Raincoat &lt;Deluxe&gt;",
		"Yellow / 2T",
		"900.00",
		"1800.00",
		"1620.00",
		"first-order discount",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
}

func TestConfirmationHTMLWithoutDiscountNote(t *testing.T) {
	order := confirmationOrder()
	order.NewUserDiscount = false

	html := ConfirmationHTML(order, Recipient{Email: "a@b.c"})
	if strings.Contains(html, "first-order discount") {
		t.Fatal("expected no discount note")
	}
	if !strings.Contains(html, "Hello,") {
		t.Fatal("expected generic greeting without a name")
	}
}

func TestNewNotifierFallsBackToNoop(t *testing.T) {
	notifier := NewNotifier(config.SMTPConfig{}, nil)
	if _, ok := notifier.(*noopNotifier); !ok {
		t.Fatalf("expected noop notifier when smtp unconfigured, got %T", notifier)
	}
	if err := notifier.Send(context.Background(), confirmationOrder(), Recipient{Email: "a@b.c"}); err != nil {
		t.Fatalf("noop send must not error: %v", err)
	}
}

func TestNewNotifierUsesSMTPWhenConfigured(t *testing.T) {
	notifier := NewNotifier(config.SMTPConfig{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "secret",
		FromAddress: "noreply@littlethreads.example",
	}, nil)
	if _, ok := notifier.(*smtpNotifier); !ok {
		t.Fatalf("expected smtp notifier, got %T", notifier)
	}
}
