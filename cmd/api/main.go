package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/littlethreads/backend/api/routes"
	cartsvc "github.com/littlethreads/backend/internal/cart"
	"github.com/littlethreads/backend/internal/catalog"
	checkoutsvc "github.com/littlethreads/backend/internal/checkout"
	"github.com/littlethreads/backend/internal/notifications"
	ordersvc "github.com/littlethreads/backend/internal/orders"
	usersvc "github.com/littlethreads/backend/internal/users"
	"github.com/littlethreads/backend/pkg/config"
	"github.com/littlethreads/backend/pkg/db"
	"github.com/littlethreads/backend/pkg/enums"
	"github.com/littlethreads/backend/pkg/logger"
	"github.com/littlethreads/backend/pkg/metrics"
	"github.com/littlethreads/backend/pkg/migrate"
	pkgredis "github.com/littlethreads/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// redis is optional: without it the checkout idempotency guard is off
	var (
		redisClient *pkgredis.Client
		redisPinger pkgredis.Pinger
		idemStore   pkgredis.IdempotencyStore
	)
	if cfg.Redis.Configured() {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		idemStore = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, checkout idempotency disabled")
	}

	mode := enums.InventoryMode(cfg.Shop.InventoryMode)
	ledger, err := catalog.NewLedger(mode)
	if err != nil {
		logg.Error(context.Background(), "failed to build inventory ledger", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	userRepo := usersvc.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, ledger, mode)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartRepo, catalogRepo, ledger)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	usersService, err := usersvc.NewService(userRepo, cartRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	ordersService, err := ordersvc.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notifier := notifications.NewNotifier(cfg.SMTP, logg)
	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		userRepo,
		cartRepo,
		catalogRepo,
		orderRepo,
		ledger,
		notifier,
		checkoutMetrics,
		logg,
		cfg.SMTP.SendTimeout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"inventory_mode": cfg.Shop.InventoryMode,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisPinger,
			idemStore,
			registry,
			catalogService,
			cartService,
			checkoutService,
			ordersService,
			usersService,
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
