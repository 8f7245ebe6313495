package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlethreads/backend/pkg/db/models"
)

// Repository wires together cart persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByOwner loads the cart for the given owner discriminator.
func (r *Repository) FindByOwner(ctx context.Context, owner OwnerRef) (*models.Cart, error) {
	var cart models.Cart
	qb := r.db.WithContext(ctx)
	if userID, ok := owner.UserID(); ok {
		qb = qb.Where("user_id = ?", userID)
	} else if sessionID, ok := owner.SessionID(); ok {
		qb = qb.Where("session_id = ?", sessionID)
	}
	if err := qb.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts an empty cart for the owner.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Save writes the full cart row, items document included.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}
