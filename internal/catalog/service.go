package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/pagination"
)

const latestProductCount = 3

// Service exposes catalog management and stock operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductListResult, error)
	LatestProducts(ctx context.Context) ([]ProductDTO, error)

	SetQuantity(ctx context.Context, productID uuid.UUID, sel VariantSelector, qty int) (*ProductDTO, error)
	AddStock(ctx context.Context, productID uuid.UUID, sel VariantSelector, qty int) (*ProductDTO, error)
	Sell(ctx context.Context, productID uuid.UUID, sel VariantSelector, qty int) (*ProductDTO, error)
	BulkSetColorInventory(ctx context.Context, productID uuid.UUID, color string, inventory []SizeQuantityInput) (*ProductDTO, error)
	AddColor(ctx context.Context, productID uuid.UUID, input AddColorInput) (*ProductDTO, error)
	RemoveColor(ctx context.Context, productID uuid.UUID, name string) (*ProductDTO, error)
}

// SizeQuantityInput is one size/quantity pair in an inventory payload.
type SizeQuantityInput struct {
	Size     string
	Quantity int
}

// ColorInput declares a color bucket with its starting stock.
type ColorInput struct {
	Name      string
	HexCode   string
	Inventory []SizeQuantityInput
}

// AddColorInput is the payload for declaring one new color.
type AddColorInput struct {
	Name      string
	HexCode   string
	Inventory []SizeQuantityInput
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Title           string
	Description     *string
	Price           decimal.Decimal
	DiscountPercent int
	Gender          enums.Gender
	Category        *string
	Brand           *string
	Image           *string
	Sizes           []SizeQuantityInput
	Colors          []ColorInput
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Title           *string
	Description     *string
	Price           *decimal.Decimal
	DiscountPercent *int
	Gender          *enums.Gender
	Category        *string
	Brand           *string
	Image           *string
}

// service implements the catalog service.
type service struct {
	repo   *Repository
	ledger Ledger
	mode   enums.InventoryMode
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, ledger Ledger, mode enums.InventoryMode) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid inventory mode %q", mode)
	}
	return &service{repo: repo, ledger: ledger, mode: mode}, nil
}

// CreateProduct validates and inserts a listing with its starting inventory.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if err := validateDiscountPercent(input.DiscountPercent); err != nil {
		return nil, err
	}
	if !input.Gender.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gender must be one of boy, girl, unisex")
	}
	if err := s.validateInventoryShape(input.Sizes, input.Colors); err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:           title,
		Description:     input.Description,
		Price:           input.Price.Round(2),
		DiscountPercent: input.DiscountPercent,
		Gender:          input.Gender,
		Category:        input.Category,
		Brand:           input.Brand,
		Image:           input.Image,
	}

	switch s.mode {
	case enums.InventoryModeSize:
		sizes, err := buildSizeInventories(input.Sizes)
		if err != nil {
			return nil, err
		}
		product.Sizes = sizes
	case enums.InventoryModeColorSize:
		colors, err := buildColorInventories(input.Colors)
		if err != nil {
			return nil, err
		}
		product.Colors = colors
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created, s.ledger), nil
}

// UpdateProduct applies partial listing updates; inventory goes through the
// dedicated stock operations.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.DiscountPercent != nil {
		if err := validateDiscountPercent(*input.DiscountPercent); err != nil {
			return nil, err
		}
	}
	if input.Gender != nil && !input.Gender.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gender must be one of boy, girl, unisex")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	applyUpdateToProduct(product, input)
	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(saved, s.ledger), nil
}

// DeleteProduct removes a listing. Carts referencing it are pruned lazily on
// their next read.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// GetProduct returns one listing with derived pricing and availability.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product, s.ledger), nil
}

// ListProducts returns one catalog page, deepest discounts first.
func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductListResult, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i], s.ledger))
	}
	return &ProductListResult{
		Products: dtos,
		Total:    total,
		Page:     params.Page,
		Pages:    pagination.Pages(total, params.Limit),
	}, nil
}

// LatestProducts returns the newest arrivals strip.
func (s *service) LatestProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.Latest(ctx, latestProductCount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: latest products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i], s.ledger))
	}
	return dtos, nil
}

// SetQuantity overwrites one variant's counter, creating the variant (and, in
// color mode, its bucket) when absent.
func (s *service) SetQuantity(ctx context.Context, productID uuid.UUID, sel VariantSelector, qty int) (*ProductDTO, error) {
	if err := validateSelectorShape(s.mode, sel); err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.ledger.SetQuantity(product, sel, qty)
	return s.saveAndMap(ctx, product)
}

// AddStock increments one variant's counter.
func (s *service) AddStock(ctx context.Context, productID uuid.UUID, sel VariantSelector, qty int) (*ProductDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := validateSelectorShape(s.mode, sel); err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	current := s.ledger.Quantity(product, sel)
	s.ledger.SetQuantity(product, sel, current+qty)
	return s.saveAndMap(ctx, product)
}

// Sell is the standalone decrement path used outside checkout.
func (s *service) Sell(ctx context.Context, productID uuid.UUID, sel VariantSelector, qty int) (*ProductDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.ValidateSelector(product, sel); err != nil {
		return nil, err
	}
	if !s.ledger.Reduce(product, sel, qty) {
		available := s.ledger.Quantity(product, sel)
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("only %d of variant %s in stock", available, sel)).
			WithDetails(map[string]any{"available": available, "requested": qty})
	}
	return s.saveAndMap(ctx, product)
}

// BulkSetColorInventory replaces one color's full size inventory.
func (s *service) BulkSetColorInventory(ctx context.Context, productID uuid.UUID, color string, inventory []SizeQuantityInput) (*ProductDTO, error) {
	if s.mode != enums.InventoryModeColorSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "colors are not supported in size inventory mode")
	}
	if color == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "color name is required")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	declared := false
	for _, bucket := range product.Colors {
		if bucket.Name == color {
			declared = true
			break
		}
	}
	if !declared {
		valid := make([]string, 0, len(product.Colors))
		for _, bucket := range product.Colors {
			valid = append(valid, bucket.Name)
		}
		return nil, pkgerrors.New(pkgerrors.CodeInvalidVariant,
			fmt.Sprintf("color %q is not offered for this product", color)).
			WithDetails(map[string]any{"valid_colors": valid})
	}
	seen := make(map[string]struct{}, len(inventory))
	for _, entry := range inventory {
		if entry.Size == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
		}
		if _, ok := seen[entry.Size]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate size in inventory payload")
		}
		seen[entry.Size] = struct{}{}
		s.ledger.SetQuantity(product, VariantSelector{Size: entry.Size, Color: &color}, entry.Quantity)
	}
	return s.saveAndMap(ctx, product)
}

// AddColor declares a new color bucket with its starting inventory.
func (s *service) AddColor(ctx context.Context, productID uuid.UUID, input AddColorInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	inventory, err := buildSizeInventories(input.Inventory)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.AddColor(product, input.Name, input.HexCode, inventory); err != nil {
		return nil, err
	}
	return s.saveAndMap(ctx, product)
}

// RemoveColor drops a color bucket; removing an absent color is a no-op.
func (s *service) RemoveColor(ctx context.Context, productID uuid.UUID, name string) (*ProductDTO, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "color name is required")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.ledger.RemoveColor(product, name)
	return s.saveAndMap(ctx, product)
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) saveAndMap(ctx context.Context, product *models.Product) (*ProductDTO, error) {
	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
	}
	return NewProductDTO(saved, s.ledger), nil
}

func (s *service) validateInventoryShape(sizes []SizeQuantityInput, colors []ColorInput) error {
	switch s.mode {
	case enums.InventoryModeSize:
		if len(colors) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "colors are not supported in size inventory mode")
		}
	case enums.InventoryModeColorSize:
		if len(sizes) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "flat sizes are not supported in color inventory mode")
		}
	}
	return nil
}

// validateSelectorShape checks only the selector's shape against the mode; the
// ledger checks it against the product's declared variants.
func validateSelectorShape(mode enums.InventoryMode, sel VariantSelector) error {
	if sel.Size == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	if mode.UsesColor() {
		if sel.Color == nil || *sel.Color == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "color is required")
		}
	} else if sel.Color != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "color is not supported in size inventory mode")
	}
	return nil
}

func validateDiscountPercent(value int) error {
	if value < 0 || value > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 0 and 100")
	}
	return nil
}

func buildSizeInventories(inputs []SizeQuantityInput) (models.SizeInventories, error) {
	seen := make(map[string]struct{}, len(inputs))
	out := make(models.SizeInventories, 0, len(inputs))
	for _, entry := range inputs {
		if entry.Size == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
		}
		if _, ok := seen[entry.Size]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate size in inventory payload")
		}
		seen[entry.Size] = struct{}{}
		qty := entry.Quantity
		if qty < 0 {
			qty = 0
		}
		out = append(out, models.SizeInventory{Size: entry.Size, Quantity: qty})
	}
	return out, nil
}

func buildColorInventories(inputs []ColorInput) (models.ColorInventories, error) {
	seen := make(map[string]struct{}, len(inputs))
	out := make(models.ColorInventories, 0, len(inputs))
	for _, color := range inputs {
		if color.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "color name is required")
		}
		if _, ok := seen[color.Name]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateVariant,
				fmt.Sprintf("color %q already exists", color.Name)).
				WithDetails(map[string]any{"color": color.Name})
		}
		seen[color.Name] = struct{}{}

		inventory, err := buildSizeInventories(color.Inventory)
		if err != nil {
			return nil, err
		}
		hex := color.HexCode
		if hex == "" {
			hex = placeholderHex
		}
		out = append(out, models.ColorInventory{Name: color.Name, HexCode: hex, Inventory: inventory})
	}
	return out, nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		product.Price = input.Price.Round(2)
	}
	if input.DiscountPercent != nil {
		product.DiscountPercent = *input.DiscountPercent
	}
	if input.Gender != nil {
		product.Gender = *input.Gender
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Image != nil {
		product.Image = input.Image
	}
}
