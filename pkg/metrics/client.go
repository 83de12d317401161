package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records backend calls and storefront outcomes on the client.
// A nil *ClientMetrics is valid and records nothing.
type ClientMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestFailures *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
	checkouts       *prometheus.CounterVec
}

// NewClientMetrics registers the client metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_request_duration_seconds",
		Help:    "Duration of storefront backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	requestFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_request_failures_total",
		Help: "Failed storefront backend requests by error code.",
	}, []string{"endpoint", "code"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart quantity mutations by mode and outcome.",
	}, []string{"mode", "outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_outcomes_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(requestDuration, requestFailures, cartMutations, checkouts)
	return &ClientMetrics{
		requestDuration: requestDuration,
		requestFailures: requestFailures,
		cartMutations:   cartMutations,
		checkouts:       checkouts,
	}
}

// ObserveRequest records the duration of a backend call.
func (c *ClientMetrics) ObserveRequest(endpoint string, duration time.Duration) {
	if c == nil || c.requestDuration == nil {
		return
	}
	c.requestDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

// IncRequestFailure counts a failed backend call.
func (c *ClientMetrics) IncRequestFailure(endpoint, code string) {
	if c == nil || c.requestFailures == nil {
		return
	}
	c.requestFailures.WithLabelValues(normalizeLabel(endpoint), normalizeLabel(code)).Inc()
}

// IncCartMutation counts a cart mutation; outcome is "ok" or a rejection reason.
func (c *ClientMetrics) IncCartMutation(mode, outcome string) {
	if c == nil || c.cartMutations == nil {
		return
	}
	c.cartMutations.WithLabelValues(normalizeLabel(mode), normalizeLabel(outcome)).Inc()
}

// IncCheckout counts a checkout attempt.
func (c *ClientMetrics) IncCheckout(outcome string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
