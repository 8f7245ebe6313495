package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartpkg "github.com/littlethreads/backend/internal/cart"
	"github.com/littlethreads/backend/internal/catalog"
	"github.com/littlethreads/backend/internal/notifications"
	"github.com/littlethreads/backend/internal/orders"
	"github.com/littlethreads/backend/internal/users"
	"github.com/littlethreads/backend/pkg/db"
	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/logger"
	"github.com/littlethreads/backend/pkg/metrics"
)

const defaultNotifyTimeout = 10 * time.Second

// Service converts a cart into an order inside one transaction.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*orders.OrderDTO, error)
}

// CreateOrderInput identifies the buyer. Authenticated checkouts carry the
// user id; guest checkouts carry the session id plus contact details.
type CreateOrderInput struct {
	UserID      *uuid.UUID
	SessionID   *string
	GuestEmail  *string
	GuestName   *string
	Address     *string
	PhoneNumber *string
}

// offendingLine describes one cart line that failed the availability check.
// Every failing line is reported, not just the first.
type offendingLine struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Size      string  `json:"size"`
	Color     *string `json:"color,omitempty"`
	Requested int     `json:"requested"`
	Available int     `json:"available"`
}

// service implements the checkout orchestrator.
type service struct {
	dbClient      *db.Client
	userRepo      *users.Repository
	cartRepo      *cartpkg.Repository
	productRepo   *catalog.Repository
	orderRepo     *orders.Repository
	ledger        catalog.Ledger
	notifier      notifications.Notifier
	metrics       *metrics.CheckoutMetrics
	logg          *logger.Logger
	notifyTimeout time.Duration

	// notifyDone, when set, is closed after the notification attempt.
	// Tests use it to wait for the fire-and-forget send.
	notifyDone chan struct{}
}

// NewService constructs a checkout service instance.
func NewService(
	dbClient *db.Client,
	userRepo *users.Repository,
	cartRepo *cartpkg.Repository,
	productRepo *catalog.Repository,
	orderRepo *orders.Repository,
	ledger catalog.Ledger,
	notifier notifications.Notifier,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	notifyTimeout time.Duration,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if userRepo == nil || cartRepo == nil || productRepo == nil || orderRepo == nil {
		return nil, fmt.Errorf("user, cart, product and order repositories required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &service{
		dbClient:      dbClient,
		userRepo:      userRepo,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		ledger:        ledger,
		notifier:      notifier,
		metrics:       checkoutMetrics,
		logg:          logg,
		notifyTimeout: notifyTimeout,
	}, nil
}

// CreateOrder runs the whole checkout inside one transaction: owner
// resolution, full-cart availability check, pricing with new-user
// eligibility, inventory decrement, order snapshot, cart clear. Any failure
// before commit rolls everything back. The confirmation notification runs
// after commit and its outcome is informational only.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*orders.OrderDTO, error) {
	var (
		created   *models.Order
		recipient notifications.Recipient
	)

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txUsers := s.userRepo.WithTx(tx)
		txCarts := s.cartRepo.WithTx(tx)
		txProducts := s.productRepo.WithTx(tx)
		txOrders := s.orderRepo.WithTx(tx)

		// 1. resolve owner
		var (
			owner    cartpkg.OwnerRef
			buyer    *models.User
			eligible bool
		)
		if input.UserID != nil {
			user, err := txUsers.FindByID(ctx, *input.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
			}
			buyer = user
			owner = cartpkg.AuthenticatedOwner(user.ID)
			recipient = notifications.Recipient{Email: user.Email, Name: user.Name}
		} else {
			email := strings.TrimSpace(deref(input.GuestEmail))
			name := strings.TrimSpace(deref(input.GuestName))
			session := strings.TrimSpace(deref(input.SessionID))
			if session == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "session id is required for guest checkout")
			}
			if email == "" || name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "guest checkout requires contact email and name")
			}
			owner = cartpkg.GuestOwner(session)
			recipient = notifications.Recipient{Email: email, Name: name}
		}

		// 2. load cart
		cart, err := txCarts.FindByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		// 3. availability check over every line, reporting all failures
		products := make(map[uuid.UUID]*models.Product, len(cart.Items))
		var offending []offendingLine
		for _, item := range cart.Items {
			product, ok := products[item.ProductID]
			if !ok {
				loaded, err := txProducts.FindByID(ctx, item.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						offending = append(offending, offendingLine{
							ProductID: item.ProductID.String(),
							Title:     "(no longer available)",
							Size:      item.Size,
							Color:     item.Color,
							Requested: item.Quantity,
						})
						continue
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
				}
				product = loaded
				products[item.ProductID] = product
			}
			sel := catalog.VariantSelector{Size: item.Size, Color: item.Color}
			if !s.ledger.Available(product, sel, item.Quantity) {
				offending = append(offending, offendingLine{
					ProductID: product.ID.String(),
					Title:     product.Title,
					Size:      item.Size,
					Color:     item.Color,
					Requested: item.Quantity,
					Available: s.ledger.Quantity(product, sel),
				})
			}
		}
		if len(offending) > 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient inventory for one or more lines").
				WithDetails(map[string]any{"lines": offending})
		}

		// 4. new-user eligibility: authenticated buyers with no prior orders.
		// The order count alone decides; is_new_user is written for reporting
		// but never read back.
		if buyer != nil {
			count, err := txOrders.CountByUser(ctx, buyer.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
			}
			eligible = count == 0
		}

		// 5. subtotal. Checkout always prices with the discount applied,
		// guest or not; cart display is where the gating happens.
		subtotal := decimal.Zero
		lines := make(models.OrderLines, 0, len(cart.Items))
		for _, item := range cart.Items {
			product := products[item.ProductID]
			unit := catalog.PriceFor(product, true)
			lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			lines = append(lines, models.OrderLine{
				ProductID: product.ID,
				Title:     product.Title,
				Quantity:  item.Quantity,
				Size:      item.Size,
				Color:     item.Color,
				UnitPrice: unit,
				LineTotal: lineTotal,
			})
		}
		total := subtotal.Mul(catalog.NewUserDiscountFactor(eligible)).Round(2)
		if eligible && buyer.IsNewUser {
			if err := txUsers.SetIsNewUser(ctx, buyer.ID, false); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: flip new-user flag")
			}
		}

		// 6. decrement inventory; a failed reduce means a concurrent checkout
		// won the race, so abort everything
		for _, item := range cart.Items {
			product := products[item.ProductID]
			sel := catalog.VariantSelector{Size: item.Size, Color: item.Color}
			if !s.ledger.Reduce(product, sel, item.Quantity) {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "inventory changed during checkout").
					WithDetails(map[string]any{"product_id": product.ID, "size": item.Size})
			}
		}
		for _, product := range products {
			if _, err := txProducts.Save(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save inventory")
			}
		}

		// 7. persist the snapshot
		order := &models.Order{
			Lines:           lines,
			TotalPrice:      total,
			Status:          enums.OrderStatusPending,
			Address:         input.Address,
			PhoneNumber:     input.PhoneNumber,
			NewUserDiscount: eligible,
		}
		if buyer != nil {
			order.UserID = &buyer.ID
		} else {
			order.IsGuestOrder = true
			email := recipient.Email
			name := recipient.Name
			order.GuestEmail = &email
			order.GuestName = &name
		}
		inserted, err := txOrders.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		created = inserted

		// 8. empty the cart, keep the row
		cart.Items = models.CartItems{}
		cart.TotalAmount = decimal.Zero
		if _, err := txCarts.Save(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncCheckoutFailure(failureReason(err))
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout transaction failed")
	}

	s.metrics.IncOrdersCreated()

	// re-read the committed snapshot and notify outside the transaction
	confirmed, err := s.orderRepo.FindByID(ctx, created.ID)
	if err != nil {
		confirmed = created
	}
	s.notifyAsync(confirmed, recipient)

	return orders.NewOrderDTO(confirmed), nil
}

// notifyAsync fires the confirmation with a bounded timeout, detached from
// the request context so a client disconnect cannot cancel it. Failures are
// logged and counted, never returned.
func (s *service) notifyAsync(order *models.Order, recipient notifications.Recipient) {
	logCtx := s.logg.WithOrderID(context.Background(), order.ID.String())
	done := s.notifyDone
	go func() {
		defer func() {
			if done != nil {
				close(done)
			}
		}()
		sendCtx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Send(sendCtx, order, recipient); err != nil {
			s.metrics.IncNotification("failed")
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "order confirmation failed")
			return
		}
		s.metrics.IncNotification("sent")
		s.logg.Info(logCtx, "order confirmation dispatched")
	}()
}

func failureReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "internal"
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation:
		return "validation"
	case pkgerrors.CodeNotFound:
		return "user_not_found"
	case pkgerrors.CodeInsufficientStock:
		return "insufficient_inventory"
	case pkgerrors.CodeDependency:
		return "dependency"
	default:
		return strings.ToLower(string(typed.Code()))
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
