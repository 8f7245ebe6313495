package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
)

// OrderDTO is the read shape for an order snapshot.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	UserID          *uuid.UUID        `json:"user_id,omitempty"`
	IsGuestOrder    bool              `json:"is_guest_order"`
	GuestEmail      *string           `json:"guest_email,omitempty"`
	GuestName       *string           `json:"guest_name,omitempty"`
	Lines           models.OrderLines `json:"lines"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	Status          enums.OrderStatus `json:"status"`
	Address         *string           `json:"address,omitempty"`
	PhoneNumber     *string           `json:"phone_number,omitempty"`
	NewUserDiscount bool              `json:"new_user_discount"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewOrderDTO maps the model into its read shape.
func NewOrderDTO(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	lines := o.Lines
	if lines == nil {
		lines = models.OrderLines{}
	}
	return &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		IsGuestOrder:    o.IsGuestOrder,
		GuestEmail:      o.GuestEmail,
		GuestName:       o.GuestName,
		Lines:           lines,
		TotalPrice:      o.TotalPrice.Round(2),
		Status:          o.Status,
		Address:         o.Address,
		PhoneNumber:     o.PhoneNumber,
		NewUserDiscount: o.NewUserDiscount,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// OrderListResult is one page of orders.
type OrderListResult struct {
	Orders []OrderDTO `json:"orders"`
	Total  int64      `json:"total"`
	Page   int        `json:"page"`
	Pages  int        `json:"pages"`
}
