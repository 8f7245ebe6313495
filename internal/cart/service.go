package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/littlethreads/backend/internal/catalog"
	"github.com/littlethreads/backend/pkg/db/models"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
)

// Service exposes cart reads and mutations for one owner at a time.
type Service interface {
	Get(ctx context.Context, owner OwnerRef) (*CartDTO, error)
	AddItem(ctx context.Context, owner OwnerRef, productID uuid.UUID, sel catalog.VariantSelector, qty int) (*CartDTO, error)
	UpdateItem(ctx context.Context, owner OwnerRef, productID uuid.UUID, sel catalog.VariantSelector, qty int) (*CartDTO, error)
	RemoveItem(ctx context.Context, owner OwnerRef, productID uuid.UUID, sel catalog.VariantSelector) (*CartDTO, error)
	Clear(ctx context.Context, owner OwnerRef) (*CartDTO, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// service implements the cart service.
type service struct {
	repo     *Repository
	products productReader
	ledger   catalog.Ledger
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, products productReader, ledger catalog.Ledger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{repo: repo, products: products, ledger: ledger}, nil
}

// Get loads the owner's cart and reconciles it against current inventory:
// lines whose variant no longer covers the cached quantity are pruned, and the
// pruned cart is persisted with a recomputed total.
func (s *service) Get(ctx context.Context, owner OwnerRef) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	kept := make(models.CartItems, 0, len(cart.Items))
	pruned := false
	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				pruned = true
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		if !s.ledger.Available(product, selectorFor(item), item.Quantity) {
			pruned = true
			continue
		}
		kept = append(kept, item)
	}

	if pruned {
		cart.Items = kept
		if err := s.recomputeTotal(ctx, cart, owner); err != nil {
			return nil, err
		}
		if _, err := s.repo.Save(ctx, cart); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save reconciled cart")
		}
	}
	return NewCartDTO(cart), nil
}

// AddItem merges the requested quantity into any existing matching line and
// checks availability against the merged quantity before committing.
func (s *service) AddItem(ctx context.Context, owner OwnerRef, productID uuid.UUID, sel catalog.VariantSelector, qty int) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.ValidateSelector(product, sel); err != nil {
		return nil, err
	}

	cart, err := s.loadOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	merged := qty
	lineIdx := findLine(cart.Items, productID, sel)
	if lineIdx >= 0 {
		merged += cart.Items[lineIdx].Quantity
	}
	if !s.ledger.Available(product, sel, merged) {
		available := s.ledger.Quantity(product, sel)
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("only %d of variant %s in stock", available, sel)).
			WithDetails(map[string]any{"available": available, "requested": merged})
	}

	if lineIdx >= 0 {
		cart.Items[lineIdx].Quantity = merged
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  qty,
			Size:      sel.Size,
			Color:     sel.Color,
		})
	}

	return s.finishMutation(ctx, cart, owner)
}

// UpdateItem sets a line's quantity outright; a quantity of zero or less
// removes the line.
func (s *service) UpdateItem(ctx context.Context, owner OwnerRef, productID uuid.UUID, sel catalog.VariantSelector, qty int) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return s.RemoveItem(ctx, owner, productID, sel)
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.ValidateSelector(product, sel); err != nil {
		return nil, err
	}
	if !s.ledger.Available(product, sel, qty) {
		available := s.ledger.Quantity(product, sel)
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("only %d of variant %s in stock", available, sel)).
			WithDetails(map[string]any{"available": available, "requested": qty})
	}

	cart, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	if lineIdx := findLine(cart.Items, productID, sel); lineIdx >= 0 {
		cart.Items[lineIdx].Quantity = qty
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  qty,
			Size:      sel.Size,
			Color:     sel.Color,
		})
	}

	return s.finishMutation(ctx, cart, owner)
}

// RemoveItem drops the matching line. Removing an absent line is not an error.
func (s *service) RemoveItem(ctx context.Context, owner OwnerRef, productID uuid.UUID, sel catalog.VariantSelector) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	kept := make(models.CartItems, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID == productID && sameVariant(item, sel) {
			continue
		}
		kept = append(kept, item)
	}
	cart.Items = kept

	return s.finishMutation(ctx, cart, owner)
}

// Clear empties the cart without deleting it.
func (s *service) Clear(ctx context.Context, owner OwnerRef) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	cart.Items = models.CartItems{}
	cart.TotalAmount = decimal.Zero
	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save cart")
	}
	return NewCartDTO(saved), nil
}

func (s *service) loadCart(ctx context.Context, owner OwnerRef) (*models.Cart, error) {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	return cart, nil
}

// loadOrCreateCart backs the lazy-creation path taken on first AddItem.
func (s *service) loadOrCreateCart(ctx context.Context, owner OwnerRef) (*models.Cart, error) {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	fresh := &models.Cart{Items: models.CartItems{}}
	if userID, ok := owner.UserID(); ok {
		fresh.UserID = &userID
	} else if sessionID, ok := owner.SessionID(); ok {
		fresh.SessionID = &sessionID
		fresh.IsGuest = true
	}
	created, err := s.repo.Create(ctx, fresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create cart")
	}
	return created, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

// finishMutation recomputes the cached total and persists. Every mutator ends
// here; the total is never recomputed lazily at read time.
func (s *service) finishMutation(ctx context.Context, cart *models.Cart, owner OwnerRef) (*CartDTO, error) {
	if err := s.recomputeTotal(ctx, cart, owner); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save cart")
	}
	return NewCartDTO(saved), nil
}

// recomputeTotal derives the cached total from current line items and current
// product pricing, priced for the cart's authentication status.
func (s *service) recomputeTotal(ctx context.Context, cart *models.Cart, owner OwnerRef) error {
	total := decimal.Zero
	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		unit := catalog.PriceFor(product, owner.Authenticated())
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	cart.TotalAmount = total.Round(2)
	return nil
}

func selectorFor(item models.CartItem) catalog.VariantSelector {
	return catalog.VariantSelector{Size: item.Size, Color: item.Color}
}

func findLine(items models.CartItems, productID uuid.UUID, sel catalog.VariantSelector) int {
	for i, item := range items {
		if item.ProductID == productID && sameVariant(item, sel) {
			return i
		}
	}
	return -1
}

func sameVariant(item models.CartItem, sel catalog.VariantSelector) bool {
	if item.Size != sel.Size {
		return false
	}
	if (item.Color == nil) != (sel.Color == nil) {
		return false
	}
	if item.Color != nil && *item.Color != *sel.Color {
		return false
	}
	return true
}
