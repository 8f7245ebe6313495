package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlethreads/backend/pkg/db/models"
)

// CartDTO is the read shape returned by every cart operation.
type CartDTO struct {
	ID          uuid.UUID        `json:"id"`
	UserID      *uuid.UUID       `json:"user_id,omitempty"`
	SessionID   *string          `json:"session_id,omitempty"`
	IsGuest     bool             `json:"is_guest"`
	Items       models.CartItems `json:"items"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewCartDTO maps the model into its read shape.
func NewCartDTO(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	items := c.Items
	if items == nil {
		items = models.CartItems{}
	}
	return &CartDTO{
		ID:          c.ID,
		UserID:      c.UserID,
		SessionID:   c.SessionID,
		IsGuest:     c.IsGuest,
		Items:       items,
		TotalAmount: c.TotalAmount.Round(2),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
