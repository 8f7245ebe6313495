package catalog

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/db/models"
)

func priceProduct(price string, discount int) *models.Product {
	return &models.Product{
		Price:           decimal.RequireFromString(price),
		DiscountPercent: discount,
	}
}

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		discount int
		want     string
	}{
		{"no discount", "1000", 0, "1000"},
		{"ten percent", "1000", 10, "900"},
		{"rounds to two decimals", "19.99", 15, "16.99"},
		{"full discount", "45.50", 100, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DiscountedPrice(priceProduct(tc.price, tc.discount))
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestPriceForGatesOnAuthentication(t *testing.T) {
	product := priceProduct("1000", 10)

	if got := PriceFor(product, true); !got.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected discounted 900 for authenticated, got %s", got)
	}
	if got := PriceFor(product, false); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected base 1000 for guest, got %s", got)
	}

	fullPrice := priceProduct("1000", 0)
	if got := PriceFor(fullPrice, true); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected base price when no discount, got %s", got)
	}
}

func TestSavingsFor(t *testing.T) {
	product := priceProduct("1000", 10)

	if got := SavingsFor(product, true); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected savings 100, got %s", got)
	}
	if got := SavingsFor(product, false); !got.IsZero() {
		t.Fatalf("expected zero savings for guest, got %s", got)
	}
}

func TestIsOnSale(t *testing.T) {
	if IsOnSale(priceProduct("10", 0)) {
		t.Fatal("expected not on sale at 0 discount")
	}
	if !IsOnSale(priceProduct("10", 5)) {
		t.Fatal("expected on sale at 5 discount")
	}
}

func TestNewUserDiscountFactor(t *testing.T) {
	if got := NewUserDiscountFactor(true); !got.Equal(decimal.RequireFromString("0.9")) {
		t.Fatalf("expected 0.9, got %s", got)
	}
	if got := NewUserDiscountFactor(false); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected 1, got %s", got)
	}
}
