package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/littlethreads/backend/api/controllers"
	"github.com/littlethreads/backend/api/middleware"
	cartsvc "github.com/littlethreads/backend/internal/cart"
	"github.com/littlethreads/backend/internal/catalog"
	checkoutsvc "github.com/littlethreads/backend/internal/checkout"
	ordersvc "github.com/littlethreads/backend/internal/orders"
	usersvc "github.com/littlethreads/backend/internal/users"
	"github.com/littlethreads/backend/pkg/config"
	"github.com/littlethreads/backend/pkg/db"
	"github.com/littlethreads/backend/pkg/logger"
	pkgredis "github.com/littlethreads/backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService ordersvc.Service,
	usersService usersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(catalogService, logg))
			r.Post("/", controllers.ProductCreate(catalogService, logg))
			r.Get("/latest", controllers.ProductsLatest(catalogService, logg))
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.ProductDetail(catalogService, logg))
				r.Patch("/", controllers.ProductUpdate(catalogService, logg))
				r.Delete("/", controllers.ProductDelete(catalogService, logg))
				r.Put("/inventory", controllers.InventorySet(catalogService, logg))
				r.Post("/inventory/add", controllers.InventoryAdd(catalogService, logg))
				r.Post("/inventory/sell", controllers.InventorySell(catalogService, logg))
				r.Post("/colors", controllers.ColorAdd(catalogService, logg))
				r.Put("/colors/{colorName}/inventory", controllers.ColorBulkSet(catalogService, logg))
				r.Delete("/colors/{colorName}", controllers.ColorRemove(catalogService, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items", controllers.CartRemoveItem(cartService, logg))
		})

		r.Post("/orders", controllers.OrderCreate(checkoutService, logg))
		r.Get("/orders", controllers.OrderList(ordersService, logg))
		r.Get("/orders/{orderId}", controllers.OrderDetail(ordersService, logg))
		r.Patch("/orders/{orderId}", controllers.OrderUpdate(ordersService, logg))
		r.Delete("/orders/{orderId}", controllers.OrderDelete(ordersService, logg))
		r.Get("/orders/user/{userId}", controllers.OrdersByUser(ordersService, logg))

		r.Post("/users", controllers.UserCreate(usersService, logg))
		r.Get("/users/{userId}", controllers.UserDetail(usersService, logg))
	})

	return r
}
