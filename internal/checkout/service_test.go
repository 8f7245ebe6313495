package checkout

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	cartpkg "github.com/littlethreads/backend/internal/cart"
	"github.com/littlethreads/backend/internal/catalog"
	"github.com/littlethreads/backend/internal/notifications"
	ordersvc "github.com/littlethreads/backend/internal/orders"
	"github.com/littlethreads/backend/internal/users"
	"github.com/littlethreads/backend/pkg/config"
	"github.com/littlethreads/backend/pkg/db"
	"github.com/littlethreads/backend/pkg/db/models"
	"github.com/littlethreads/backend/pkg/enums"
	pkgerrors "github.com/littlethreads/backend/pkg/errors"
	"github.com/littlethreads/backend/pkg/logger"
	"github.com/littlethreads/backend/pkg/metrics"
)

type recordedSend struct {
	order     *models.Order
	recipient notifications.Recipient
}

type fakeNotifier struct {
	fail  bool
	sends []recordedSend
}

func (f *fakeNotifier) Send(ctx context.Context, order *models.Order, recipient notifications.Recipient) error {
	f.sends = append(f.sends, recordedSend{order: order, recipient: recipient})
	if f.fail {
		return fmt.Errorf("smtp down")
	}
	return nil
}

type checkoutFixture struct {
	svc      *service
	client   *db.Client
	notifier *fakeNotifier
	product  *models.Product
	user     *models.User
	yellow   string
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	conn := client.DB()
	if err := conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Cart{}, &models.Order{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         "Mara Jensen",
		Email:        "mara@example.com",
		PasswordHash: "hash",
		Role:         enums.UserRoleUser,
		IsNewUser:    true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	product := &models.Product{
		ID:              uuid.New(),
		Title:           "Raincoat",
		Price:           decimal.NewFromInt(1000),
		DiscountPercent: 10,
		Gender:          enums.GenderUnisex,
		Colors: models.ColorInventories{
			{
				Name:    "Yellow",
				HexCode: "#ffd400",
				Inventory: []models.SizeInventory{
					{Size: "2T", Quantity: 5},
					{Size: "4T", Quantity: 2},
				},
			},
		},
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	ledger, err := catalog.NewLedger(enums.InventoryModeColorSize)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	notifier := &fakeNotifier{}
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard})

	svc, err := NewService(
		client,
		users.NewRepository(conn),
		cartpkg.NewRepository(conn),
		catalog.NewRepository(conn),
		ordersvc.NewRepository(conn),
		ledger,
		notifier,
		metrics.NewCheckoutMetrics(prometheus.NewRegistry()),
		logg,
		time.Second,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &checkoutFixture{
		svc:      svc.(*service),
		client:   client,
		notifier: notifier,
		product:  product,
		user:     user,
		yellow:   "Yellow",
	}
}

func (f *checkoutFixture) seedCart(t *testing.T, owner cartpkg.OwnerRef, items models.CartItems) *models.Cart {
	t.Helper()
	cart := &models.Cart{Items: items}
	if userID, ok := owner.UserID(); ok {
		cart.UserID = &userID
	} else if sessionID, ok := owner.SessionID(); ok {
		cart.SessionID = &sessionID
		cart.IsGuest = true
	}
	if _, err := cartpkg.NewRepository(f.client.DB()).Create(context.Background(), cart); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return cart
}

func (f *checkoutFixture) item(size string, qty int) models.CartItem {
	return models.CartItem{ProductID: f.product.ID, Quantity: qty, Size: size, Color: &f.yellow}
}

// createOrder runs checkout and waits for the notification attempt.
func (f *checkoutFixture) createOrder(t *testing.T, input CreateOrderInput) (*ordersvc.OrderDTO, error) {
	t.Helper()
	done := make(chan struct{})
	f.svc.notifyDone = done
	dto, err := f.svc.CreateOrder(context.Background(), input)
	if err == nil {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for notification attempt")
		}
	}
	return dto, err
}

func (f *checkoutFixture) quantity(t *testing.T, size string) int {
	t.Helper()
	var product models.Product
	if err := f.client.DB().First(&product, "id = ?", f.product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	for _, bucket := range product.Colors {
		for _, entry := range bucket.Inventory {
			if entry.Size == size {
				return entry.Quantity
			}
		}
	}
	return 0
}

func TestCreateOrderFirstTimeBuyer(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t, cartpkg.AuthenticatedOwner(f.user.ID), models.CartItems{f.item("2T", 2)})

	dto, err := f.createOrder(t, CreateOrderInput{UserID: &f.user.ID})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// 1000 with 10% discount -> 900 each, x2 = 1800, x0.9 new-user = 1620.00
	if !dto.TotalPrice.Equal(decimal.RequireFromString("1620.00")) {
		t.Fatalf("expected total 1620.00, got %s", dto.TotalPrice)
	}
	if !dto.NewUserDiscount {
		t.Fatal("expected new-user discount applied")
	}
	if dto.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending, got %s", dto.Status)
	}
	if len(dto.Lines) != 1 || !dto.Lines[0].UnitPrice.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected denormalized unit price 900, got %+v", dto.Lines)
	}

	if got := f.quantity(t, "2T"); got != 3 {
		t.Fatalf("expected inventory 3, got %d", got)
	}

	var cart models.Cart
	if err := f.client.DB().First(&cart, "user_id = ?", f.user.ID).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if len(cart.Items) != 0 || !cart.TotalAmount.IsZero() {
		t.Fatalf("expected emptied cart, got %d items total %s", len(cart.Items), cart.TotalAmount)
	}

	var user models.User
	if err := f.client.DB().First(&user, "id = ?", f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.IsNewUser {
		t.Fatal("expected new-user flag flipped inside the transaction")
	}

	if len(f.notifier.sends) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.sends))
	}
	if f.notifier.sends[0].recipient.Email != "mara@example.com" {
		t.Fatalf("expected user email recipient, got %s", f.notifier.sends[0].recipient.Email)
	}
}

func TestCreateOrderSecondOrderLosesDiscount(t *testing.T) {
	f := newCheckoutFixture(t)
	owner := cartpkg.AuthenticatedOwner(f.user.ID)

	f.seedCart(t, owner, models.CartItems{f.item("2T", 1)})
	if _, err := f.createOrder(t, CreateOrderInput{UserID: &f.user.ID}); err != nil {
		t.Fatalf("first order: %v", err)
	}

	// refill the cart for the second purchase
	var cart models.Cart
	if err := f.client.DB().First(&cart, "user_id = ?", f.user.ID).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	cart.Items = models.CartItems{f.item("2T", 2)}
	if err := f.client.DB().Save(&cart).Error; err != nil {
		t.Fatalf("refill cart: %v", err)
	}

	dto, err := f.createOrder(t, CreateOrderInput{UserID: &f.user.ID})
	if err != nil {
		t.Fatalf("second order: %v", err)
	}
	if dto.NewUserDiscount {
		t.Fatal("expected no new-user discount on the second order")
	}
	if !dto.TotalPrice.Equal(decimal.RequireFromString("1800.00")) {
		t.Fatalf("expected total 1800.00, got %s", dto.TotalPrice)
	}
}

func TestCreateOrderEligibilityFollowsOrderCount(t *testing.T) {
	f := newCheckoutFixture(t)

	// the flag may lag behind reality; a buyer with zero orders is still new
	if err := f.client.DB().Model(&models.User{}).
		Where("id = ?", f.user.ID).
		Update("is_new_user", false).Error; err != nil {
		t.Fatalf("clear flag: %v", err)
	}
	f.seedCart(t, cartpkg.AuthenticatedOwner(f.user.ID), models.CartItems{f.item("2T", 2)})

	dto, err := f.createOrder(t, CreateOrderInput{UserID: &f.user.ID})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if !dto.NewUserDiscount {
		t.Fatal("zero prior orders must earn the discount regardless of the flag")
	}
	if !dto.TotalPrice.Equal(decimal.RequireFromString("1620.00")) {
		t.Fatalf("expected total 1620.00, got %s", dto.TotalPrice)
	}
}

func TestCreateOrderGuest(t *testing.T) {
	f := newCheckoutFixture(t)
	session := "sess-42"
	email := "guest@example.com"
	name := "Guest Buyer"
	f.seedCart(t, cartpkg.GuestOwner(session), models.CartItems{f.item("2T", 2)})

	dto, err := f.createOrder(t, CreateOrderInput{
		SessionID:  &session,
		GuestEmail: &email,
		GuestName:  &name,
	})
	if err != nil {
		t.Fatalf("guest checkout: %v", err)
	}
	if !dto.IsGuestOrder {
		t.Fatal("expected guest order")
	}
	// guests never get the new-user factor, but the product discount still
	// applies at checkout: 900 x 2
	if !dto.TotalPrice.Equal(decimal.RequireFromString("1800.00")) {
		t.Fatalf("expected total 1800.00, got %s", dto.TotalPrice)
	}
	if dto.NewUserDiscount {
		t.Fatal("guest orders are never eligible for the new-user discount")
	}
	if dto.GuestEmail == nil || *dto.GuestEmail != email {
		t.Fatalf("expected guest email stored, got %v", dto.GuestEmail)
	}
}

func TestCreateOrderGuestWithoutContactFailsBeforeMutation(t *testing.T) {
	f := newCheckoutFixture(t)
	session := "sess-7"
	f.seedCart(t, cartpkg.GuestOwner(session), models.CartItems{f.item("2T", 2)})

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{SessionID: &session})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if got := f.quantity(t, "2T"); got != 5 {
		t.Fatalf("inventory must be untouched, got %d", got)
	}
	var cart models.Cart
	if err := f.client.DB().First(&cart, "session_id = ?", session).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("cart must be untouched, got %d items", len(cart.Items))
	}
	if len(f.notifier.sends) != 0 {
		t.Fatal("no notification may be attempted on failure")
	}
}

func TestCreateOrderAllOrNothing(t *testing.T) {
	f := newCheckoutFixture(t)
	// 2T has 5 in stock, 4T only 2: the 4T line must sink the whole checkout
	f.seedCart(t, cartpkg.AuthenticatedOwner(f.user.ID), models.CartItems{
		f.item("2T", 2),
		f.item("4T", 3),
	})

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{UserID: &f.user.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	lines, ok := details["lines"].([]offendingLine)
	if !ok || len(lines) != 1 {
		t.Fatalf("expected exactly the offending 4T line, got %v", details["lines"])
	}
	if lines[0].Size != "4T" || lines[0].Requested != 3 || lines[0].Available != 2 {
		t.Fatalf("unexpected offending line: %+v", lines[0])
	}

	// nothing moved
	if got := f.quantity(t, "2T"); got != 5 {
		t.Fatalf("2T inventory must be untouched, got %d", got)
	}
	if got := f.quantity(t, "4T"); got != 2 {
		t.Fatalf("4T inventory must be untouched, got %d", got)
	}
	var orderCount int64
	if err := f.client.DB().Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("no order may exist, got %d", orderCount)
	}
	var cart models.Cart
	if err := f.client.DB().First(&cart, "user_id = ?", f.user.ID).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("cart must be untouched, got %d items", len(cart.Items))
	}
	var user models.User
	if err := f.client.DB().First(&user, "id = ?", f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !user.IsNewUser {
		t.Fatal("new-user flag must survive an aborted checkout")
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t, cartpkg.AuthenticatedOwner(f.user.ID), models.CartItems{})

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{UserID: &f.user.ID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestCreateOrderUnknownUser(t *testing.T) {
	f := newCheckoutFixture(t)
	missing := uuid.New()

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{UserID: &missing})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderNotificationFailureDoesNotFailOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.notifier.fail = true
	f.seedCart(t, cartpkg.AuthenticatedOwner(f.user.ID), models.CartItems{f.item("2T", 1)})

	dto, err := f.createOrder(t, CreateOrderInput{UserID: &f.user.ID})
	if err != nil {
		t.Fatalf("order must succeed despite notification failure: %v", err)
	}
	if dto == nil {
		t.Fatal("expected order snapshot")
	}
	if len(f.notifier.sends) != 1 {
		t.Fatalf("expected one notification attempt, got %d", len(f.notifier.sends))
	}
}
