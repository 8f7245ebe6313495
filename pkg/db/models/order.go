package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/enums"
)

// OrderLine is a denormalized snapshot of one purchased line. Unit price and
// line total are frozen at checkout so later catalog price changes never
// rewrite order history.
type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Color     *string         `json:"color,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderLines is the order's line list, stored as one document.
type OrderLines []OrderLine

// Order is the immutable snapshot produced by checkout. Only status, address
// and phone number may change afterwards, through the explicit update path.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID          *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	IsGuestOrder    bool              `gorm:"column:is_guest_order;not null;default:false"`
	GuestEmail      *string           `gorm:"column:guest_email"`
	GuestName       *string           `gorm:"column:guest_name"`
	Lines           OrderLines        `gorm:"column:lines;type:jsonb;serializer:json"`
	TotalPrice      decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Address         *string           `gorm:"column:address"`
	PhoneNumber     *string           `gorm:"column:phone_number"`
	NewUserDiscount bool              `gorm:"column:new_user_discount;not null;default:false"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
