package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadoubah/nimbashop-backend/api/controllers"
	"github.com/mamadoubah/nimbashop-backend/api/middleware"
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
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
	"github.com/mamadoubah/nimbashop-backend/pkg/redis"
)

// NewRouter wires every HTTP surface: public auth, the customer API under
// /api/v1, and the back office under /api/manager/v1.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient controllers.Pinger,
	redisClient *redis.Client,
	metricsRegistry *prometheus.Registry,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	usersRepo users.Repository,
	catalogService product.Service,
	stockService stock.Service,
	cartService cart.Service,
	orderService orders.Service,
	paymentService payments.Service,
	supplierService suppliers.Service,
	refundService refunds.Service,
	supportService support.Service,
	notificationService notifications.Service,
	analyticsService analytics.Service,
	auditService audit.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if metricsRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Post("/auth/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		r.Get("/auth/me", controllers.AuthMe(authService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogProducts(catalogService, logg))
			r.Get("/{productId}", controllers.CatalogProductDetail(catalogService, logg))
			r.Get("/{productId}/availability", controllers.ProductAvailability(stockService, logg))
		})
		r.Get("/categories", controllers.ListCategories(catalogService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCheckout(orderService, logg))
			r.Get("/", controllers.MyOrders(orderService, logg))
			r.Get("/{orderId}", controllers.MyOrderDetail(orderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(orderService, auditService, logg))
			r.Get("/{orderId}/invoice", controllers.OrderInvoice(orderService, usersRepo, cfg.Company, cfg.Delivery, logg))
			r.Get("/{orderId}/receipt", controllers.PaymentReceipt(orderService, paymentService, usersRepo, cfg.Company, cfg.Delivery, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/mobile-money", controllers.PaymentMobileMoney(paymentService, logg))
			r.Post("/card", controllers.PaymentCard(paymentService, logg))
		})

		r.Route("/refunds", func(r chi.Router) {
			r.Post("/", controllers.RefundRequest(refundService, logg))
			r.Get("/", controllers.MyRefunds(refundService, logg))
			r.Get("/{refundId}", controllers.RefundDetail(refundService, logg))
		})

		r.Route("/support/tickets", func(r chi.Router) {
			r.Post("/", controllers.SupportOpenTicket(supportService, logg))
			r.Get("/", controllers.MyTickets(supportService, logg))
			r.Get("/{ticketId}", controllers.SupportTicketDetail(supportService, logg))
			r.Post("/{ticketId}/messages", controllers.SupportReply(supportService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationList(notificationService, logg))
			r.Post("/{notificationId}/read", controllers.NotificationMarkRead(notificationService, logg))
			r.Post("/read-all", controllers.NotificationMarkAllRead(notificationService, logg))
		})
	})

	r.Route("/api/manager/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleManager), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ManagerOrders(orderService, logg))
			r.Get("/{orderId}", controllers.ManagerOrderDetail(orderService, logg))
			r.Get("/{orderId}/payments", controllers.OrderPayments(paymentService, logg))
			r.Patch("/{orderId}/status", controllers.ManagerOrderStatus(orderService, auditService, logg))
			r.Post("/{orderId}/cancel", controllers.ManagerOrderCancel(orderService, auditService, logg))
		})

		r.Post("/payments/cash", controllers.ManagerPaymentCash(paymentService, auditService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ManagerProducts(catalogService, logg))
			r.Post("/", controllers.ProductCreate(catalogService, auditService, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(catalogService, auditService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(catalogService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(catalogService, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/low", controllers.LowStock(stockService, logg))
			r.Post("/{productId}/add", controllers.StockAdd(stockService, auditService, logg))
			r.Post("/{productId}/remove", controllers.StockRemove(stockService, auditService, logg))
			r.Post("/{productId}/adjust", controllers.StockAdjust(stockService, auditService, logg))
			r.Get("/{productId}/movements", controllers.StockMovements(stockService, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/", controllers.SupplierCreate(supplierService, auditService, logg))
			r.Get("/", controllers.SupplierList(supplierService, logg))
			r.Get("/{supplierId}", controllers.SupplierDetail(supplierService, logg))
			r.Patch("/{supplierId}", controllers.SupplierUpdate(supplierService, auditService, logg))
			r.Post("/{supplierId}/verify", controllers.SupplierVerify(supplierService, auditService, logg))
			r.Post("/{supplierId}/listings", controllers.ListingCreate(supplierService, auditService, logg))
			r.Get("/{supplierId}/listings", controllers.SupplierListings(supplierService, logg))
			r.Get("/{supplierId}/ledger", controllers.SupplierLedger(supplierService, logg))
			r.Get("/{supplierId}/sales", controllers.SupplierSales(supplierService, logg))
		})
		r.Patch("/listings/{listingId}", controllers.ListingUpdate(supplierService, auditService, logg))
		r.Post("/sales/{saleId}/status", controllers.SupplierSaleStatus(supplierService, auditService, logg))

		r.Route("/refunds", func(r chi.Router) {
			r.Get("/pending", controllers.PendingRefunds(refundService, logg))
			r.Post("/{refundId}/process", controllers.RefundProcess(refundService, auditService, logg))
		})

		r.Route("/support/tickets", func(r chi.Router) {
			r.Get("/", controllers.ManagerTickets(supportService, logg))
			r.Get("/{ticketId}", controllers.SupportTicketDetail(supportService, logg))
			r.Post("/{ticketId}/messages", controllers.SupportReply(supportService, logg))
			r.Patch("/{ticketId}/status", controllers.SupportTicketStatus(supportService, auditService, logg))
			r.Post("/{ticketId}/assign", controllers.SupportTicketAssign(supportService, auditService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", controllers.AnalyticsDashboard(analyticsService, logg))
			r.Get("/revenue", controllers.AnalyticsRevenue(analyticsService, logg))
			r.Get("/top-products", controllers.AnalyticsTopProducts(analyticsService, logg))
			r.Get("/commissions", controllers.AnalyticsCommissions(analyticsService, logg))
		})

		r.Route("/audit", func(r chi.Router) {
			r.Get("/logs", controllers.AuditLogList(auditService, logg))
			r.Get("/security-events", controllers.SecurityEventList(auditService, logg))
		})
	})

	return r
}
