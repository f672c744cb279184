package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mamadoubah/nimbashop-backend/api/routes"
	"github.com/mamadoubah/nimbashop-backend/internal/analytics"
	"github.com/mamadoubah/nimbashop-backend/internal/audit"
	"github.com/mamadoubah/nimbashop-backend/internal/auth"
	"github.com/mamadoubah/nimbashop-backend/internal/cart"
	"github.com/mamadoubah/nimbashop-backend/internal/notifications"
	"github.com/mamadoubah/nimbashop-backend/internal/orders"
	"github.com/mamadoubah/nimbashop-backend/internal/payments"
	product "github.com/mamadoubah/nimbashop-backend/internal/products"
	"github.com/mamadoubah/nimbashop-backend/internal/refunds"
	"github.com/mamadoubah/nimbashop-backend/internal/stock"
	"github.com/mamadoubah/nimbashop-backend/internal/suppliers"
	"github.com/mamadoubah/nimbashop-backend/internal/support"
	"github.com/mamadoubah/nimbashop-backend/internal/users"
	"github.com/mamadoubah/nimbashop-backend/pkg/auth/session"
	"github.com/mamadoubah/nimbashop-backend/pkg/config"
	"github.com/mamadoubah/nimbashop-backend/pkg/db"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
	"github.com/mamadoubah/nimbashop-backend/pkg/mailer"
	"github.com/mamadoubah/nimbashop-backend/pkg/metrics"
	"github.com/mamadoubah/nimbashop-backend/pkg/migrate"
	"github.com/mamadoubah/nimbashop-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	mail, err := mailer.New(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	metricsRegistry := prometheus.NewRegistry()
	commerceMetrics := metrics.NewCommerceMetrics(metricsRegistry)

	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		fatal(logg, "failed to create audit service", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		Security:       auditService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}

	catalogService, err := product.NewService(product.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		fatal(logg, "failed to create catalog service", err)
	}

	stockService, err := stock.NewService(stock.NewRepository(dbClient.DB()), dbClient, commerceMetrics)
	if err != nil {
		fatal(logg, "failed to create stock service", err)
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cartRepo, dbClient, catalogService, stockService)
	if err != nil {
		fatal(logg, "failed to create cart service", err)
	}

	orderService, err := orders.NewService(
		ordersRepo,
		cartRepo,
		catalogService,
		usersRepo,
		stockService,
		dbClient,
		mail,
		commerceMetrics,
		cfg.Delivery,
		cfg.Orders,
	)
	if err != nil {
		fatal(logg, "failed to create orders service", err)
	}

	paymentService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		ordersRepo,
		stockService,
		usersRepo,
		dbClient,
		mail,
		commerceMetrics,
		cfg.Delivery,
	)
	if err != nil {
		fatal(logg, "failed to create payments service", err)
	}

	supplierService, err := suppliers.NewService(suppliers.NewRepository(dbClient.DB()), catalogService, dbClient)
	if err != nil {
		fatal(logg, "failed to create suppliers service", err)
	}

	refundService, err := refunds.NewService(
		refunds.NewRepository(dbClient.DB()),
		ordersRepo,
		stockService,
		usersRepo,
		dbClient,
		mail,
		cfg.Delivery,
	)
	if err != nil {
		fatal(logg, "failed to create refunds service", err)
	}

	supportService, err := support.NewService(support.NewRepository(dbClient.DB()), usersRepo, dbClient, mail)
	if err != nil {
		fatal(logg, "failed to create support service", err)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), mail, commerceMetrics)
	if err != nil {
		fatal(logg, "failed to create notifications service", err)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()))
	if err != nil {
		fatal(logg, "failed to create analytics service", err)
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		metricsRegistry,
		sessionManager,
		authService,
		usersRepo,
		catalogService,
		stockService,
		cartService,
		orderService,
		paymentService,
		supplierService,
		refundService,
		supportService,
		notificationService,
		analyticsService,
		auditService,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		stop()
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
