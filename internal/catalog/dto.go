package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
)

// ProductDTO is the read shape for a catalog listing, base fields plus the
// derived pricing and availability views. Derived fields are computed on the
// way out and never stored.
type ProductDTO struct {
	ID              uuid.UUID               `json:"id"`
	Title           string                  `json:"title"`
	Description     *string                 `json:"description,omitempty"`
	Price           decimal.Decimal         `json:"price"`
	DiscountPercent int                     `json:"discount_percent"`
	DiscountedPrice decimal.Decimal         `json:"discounted_price"`
	Savings         decimal.Decimal         `json:"savings"`
	IsOnSale        bool                    `json:"is_on_sale"`
	Gender          enums.Gender            `json:"gender"`
	Category        *string                 `json:"category,omitempty"`
	Brand           *string                 `json:"brand,omitempty"`
	Image           *string                 `json:"image,omitempty"`
	Sizes           models.SizeInventories  `json:"sizes,omitempty"`
	Colors          models.ColorInventories `json:"colors,omitempty"`
	TotalQuantity   int                     `json:"total_quantity"`
	AvailableSizes  []string                `json:"available_sizes"`
	AvailableColors []string                `json:"available_colors,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// NewProductDTO maps the model into its read shape, filling derived views via
// the deployment's ledger.
func NewProductDTO(p *models.Product, ledger Ledger) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price.Round(2),
		DiscountPercent: p.DiscountPercent,
		DiscountedPrice: DiscountedPrice(p),
		Savings:         SavingsFor(p, true),
		IsOnSale:        IsOnSale(p),
		Gender:          p.Gender,
		Category:        p.Category,
		Brand:           p.Brand,
		Image:           p.Image,
		Sizes:           p.Sizes,
		Colors:          p.Colors,
		TotalQuantity:   ledger.TotalQuantity(p),
		AvailableSizes:  ledger.AvailableSizes(p),
		AvailableColors: ledger.AvailableColors(p),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ProductListResult is one catalog page.
type ProductListResult struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	Pages    int          `json:"pages"`
}
