package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/pagination"
)

// Service exposes reads and post-checkout mutations of order snapshots.
// Creation happens exclusively in the checkout orchestrator.
type Service interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, params pagination.Params, status *enums.OrderStatus) (*OrderListResult, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

// UpdateOrderInput carries the whitelisted mutable fields. Anything else sent
// by a client is dropped before it reaches here.
type UpdateOrderInput struct {
	Status      *enums.OrderStatus
	Address     *string
	PhoneNumber *string
}

// service implements the order service.
type service struct {
	repo *Repository
}

// NewService constructs an order service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// GetOrder returns one order snapshot.
func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// ListOrders returns one page of orders, optionally narrowed by status.
func (s *service) ListOrders(ctx context.Context, params pagination.Params, status *enums.OrderStatus) (*OrderListResult, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid order status %q", *status))
	}
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return &OrderListResult{
		Orders: dtos,
		Total:  total,
		Page:   params.Page,
		Pages:  pagination.Pages(total, params.Limit),
	}, nil
}

// ListOrdersByUser returns every order placed by one user.
func (s *service) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders by user")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return dtos, nil
}

// UpdateOrder applies the whitelisted partial update. Status changes must
// follow the fulfillment lifecycle; terminal orders are frozen.
func (s *service) UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status != order.Status {
		next := *input.Status
		if !next.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid order status %q", next))
		}
		if !order.Status.CanTransitionTo(next) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, next)).
				WithDetails(map[string]any{"from": order.Status.String(), "to": next.String()})
		}
		order.Status = next
	}
	if input.Address != nil {
		order.Address = input.Address
	}
	if input.PhoneNumber != nil {
		order.PhoneNumber = input.PhoneNumber
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
	}
	return NewOrderDTO(saved), nil
}

// DeleteOrder is the administrative hard delete. Stock reduced at checkout
// stays reduced.
func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}
