package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/db/models"
)

var (
	hundred           = decimal.NewFromInt(100)
	newUserFactor     = decimal.NewFromFloat(0.9)
	fullPriceFactor   = decimal.NewFromInt(1)
	moneyDecimalPlace = int32(2)
)

// DiscountedPrice is price x (1 - discount/100), rounded to 2 decimals.
func DiscountedPrice(p *models.Product) decimal.Decimal {
	if p.DiscountPercent <= 0 {
		return p.Price.Round(moneyDecimalPlace)
	}
	factor := fullPriceFactor.Sub(decimal.NewFromInt(int64(p.DiscountPercent)).Div(hundred))
	return p.Price.Mul(factor).Round(moneyDecimalPlace)
}

// PriceFor returns the discounted price only for authenticated viewers of a
// discounted product; everyone else sees the base price. Checkout passes
// authenticated=true unconditionally, so order totals always carry the
// discount even for guests.
func PriceFor(p *models.Product, authenticated bool) decimal.Decimal {
	if authenticated && p.DiscountPercent > 0 {
		return DiscountedPrice(p)
	}
	return p.Price.Round(moneyDecimalPlace)
}

// SavingsFor is base price minus PriceFor, gated the same way.
func SavingsFor(p *models.Product, authenticated bool) decimal.Decimal {
	return p.Price.Sub(PriceFor(p, authenticated)).Round(moneyDecimalPlace)
}

// IsOnSale reports whether the product carries any discount.
func IsOnSale(p *models.Product) bool {
	return p.DiscountPercent > 0
}

// NewUserDiscountFactor is the multiplicative factor applied to a checkout
// subtotal: 0.9 for an eligible first-time buyer, 1.0 otherwise.
func NewUserDiscountFactor(eligible bool) decimal.Decimal {
	if eligible {
		return newUserFactor
	}
	return fullPriceFactor
}
