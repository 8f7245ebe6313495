package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/pagination"
)

// Repository wires together product persistence helpers.
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

// FindByID loads the product document.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row, assigning an ID when absent.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Save writes the full product row, inventory document included.
func (r *Repository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// ListFilters narrows the catalog listing.
type ListFilters struct {
	Gender   *string
	Category *string
	Brand    *string
}

// List returns a page of products ordered by deepest discount first, then
// newest first, plus the unpaginated match count.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, int64, error) {
	params = params.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Product{})
	if filters.Gender != nil {
		qb = qb.Where("gender = ?", *filters.Gender)
	}
	if filters.Category != nil {
		qb = qb.Where("category = ?", *filters.Category)
	}
	if filters.Brand != nil {
		qb = qb.Where("brand = ?", *filters.Brand)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := qb.
		Order("discount_percent DESC").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Latest returns the n most recently created products.
func (r *Repository) Latest(ctx context.Context, n int) ([]models.Product, error) {
	if n <= 0 {
		n = 3
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(n).
		Find(&rows).
		Error
	return rows, err
}
