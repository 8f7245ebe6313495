package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/enums"
)

// SizeInventory is one stock counter keyed by size label.
type SizeInventory struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// ColorInventory is a color bucket holding per-size stock counters.
type ColorInventory struct {
	Name      string          `json:"name"`
	HexCode   string          `json:"hex_code"`
	Inventory []SizeInventory `json:"inventory"`
}

// SizeInventories is the single-dimension variant shape, stored as one document.
type SizeInventories []SizeInventory

// ColorInventories is the two-dimension variant shape, stored as one document.
type ColorInventories []ColorInventory

// Product is the canonical catalog listing. Exactly one of Sizes or Colors is
// populated, depending on the deployment's inventory mode.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Title           string           `gorm:"column:title;not null"`
	Description     *string          `gorm:"column:description"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountPercent int              `gorm:"column:discount_percent;not null;default:0"`
	Gender          enums.Gender     `gorm:"column:gender;not null"`
	Category        *string          `gorm:"column:category"`
	Brand           *string          `gorm:"column:brand"`
	Image           *string          `gorm:"column:image"`
	Sizes           SizeInventories  `gorm:"column:sizes;type:jsonb;serializer:json"`
	Colors          ColorInventories `gorm:"column:colors;type:jsonb;serializer:json"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
