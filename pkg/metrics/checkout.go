package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order-creation outcomes.
type CheckoutMetrics struct {
	ordersCreated    prometheus.Counter
	checkoutFailures *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully created at checkout.",
	})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts aborted before commit.",
	}, []string{"reason"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifications_total",
		Help: "Order confirmation notification attempts.",
	}, []string{"outcome"})
	reg.MustRegister(ordersCreated, checkoutFailures, notifications)
	return &CheckoutMetrics{
		ordersCreated:    ordersCreated,
		checkoutFailures: checkoutFailures,
		notifications:    notifications,
	}
}

// IncOrdersCreated counts one committed order.
func (c *CheckoutMetrics) IncOrdersCreated() {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.Inc()
}

// IncCheckoutFailure counts one aborted checkout, labelled by reason.
func (c *CheckoutMetrics) IncCheckoutFailure(reason string) {
	if c == nil || c.checkoutFailures == nil {
		return
	}
	c.checkoutFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncNotification counts one confirmation send attempt, labelled by outcome.
func (c *CheckoutMetrics) IncNotification(outcome string) {
	if c == nil || c.notifications == nil {
		return
	}
	c.notifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
