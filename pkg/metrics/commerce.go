package metrics

import "github.com/prometheus/client_golang/prometheus"

// CommerceMetrics records order, payment and stock movement counters.
type CommerceMetrics struct {
	ordersCreated     *prometheus.CounterVec
	paymentsConfirmed *prometheus.CounterVec
	paymentsRejected  *prometheus.CounterVec
	stockMovements    *prometheus.CounterVec
	lowStockProducts  prometheus.Gauge
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labelled by payment method.",
	}, []string{"method"})
	paymentsConfirmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Payments confirmed, labelled by method.",
	}, []string{"method"})
	paymentsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_rejected_total",
		Help: "Payment confirmations rejected, labelled by method and reason.",
	}, []string{"method", "reason"})
	stockMovements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock movements recorded, labelled by movement type.",
	}, []string{"type"})
	lowStockProducts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "low_stock_products",
		Help: "Products currently at or below their minimum stock level.",
	})
	reg.MustRegister(ordersCreated, paymentsConfirmed, paymentsRejected, stockMovements, lowStockProducts)
	return &CommerceMetrics{
		ordersCreated:     ordersCreated,
		paymentsConfirmed: paymentsConfirmed,
		paymentsRejected:  paymentsRejected,
		stockMovements:    stockMovements,
		lowStockProducts:  lowStockProducts,
	}
}

// IncOrderCreated increments the created-orders counter for a payment method.
func (c *CommerceMetrics) IncOrderCreated(method string) {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPaymentConfirmed increments the confirmed-payments counter.
func (c *CommerceMetrics) IncPaymentConfirmed(method string) {
	if c == nil || c.paymentsConfirmed == nil {
		return
	}
	c.paymentsConfirmed.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPaymentRejected increments the rejected-payments counter.
func (c *CommerceMetrics) IncPaymentRejected(method, reason string) {
	if c == nil || c.paymentsRejected == nil {
		return
	}
	c.paymentsRejected.WithLabelValues(normalizeLabel(method), normalizeLabel(reason)).Inc()
}

// IncStockMovement increments the stock-movement counter for a movement type.
func (c *CommerceMetrics) IncStockMovement(movementType string) {
	if c == nil || c.stockMovements == nil {
		return
	}
	c.stockMovements.WithLabelValues(normalizeLabel(movementType)).Inc()
}

// SetLowStockProducts records the current count of low-stock products.
func (c *CommerceMetrics) SetLowStockProducts(n int) {
	if c == nil || c.lowStockProducts == nil {
		return
	}
	c.lowStockProducts.Set(float64(n))
}
