package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line in a cart. Color is set only in color_size deployments.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     *string   `json:"color,omitempty"`
}

// CartItems is the cart's line list, stored as one document.
type CartItems []CartItem

// Cart holds a shopper's staged line items. Exactly one of UserID or
// SessionID identifies the owner; IsGuest discriminates the two.
type Cart struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID      *uuid.UUID      `gorm:"column:user_id;type:uuid"`
	SessionID   *string         `gorm:"column:session_id"`
	IsGuest     bool            `gorm:"column:is_guest;not null;default:false"`
	Items       CartItems       `gorm:"column:items;type:jsonb;serializer:json"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
