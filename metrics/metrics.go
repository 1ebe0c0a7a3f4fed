// Package metrics exposes Prometheus counters for the restaurant flows.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	logins          *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	ordersCommitted prometheus.Counter
	itemsOrdered    prometheus.Counter
	paymentFailures *prometheus.CounterVec
	reservations    prometheus.Counter
	httpResponses   *prometheus.CounterVec
	gatherer        prometheus.Gatherer
}

// NewCollector registers the counters on reg. When reg is also a Gatherer it backs Handler.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toomburg_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toomburg_registrations_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
		ordersCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toomburg_orders_committed_total",
			Help: "Paid carts.",
		}),
		itemsOrdered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toomburg_items_ordered_total",
			Help: "Order rows written.",
		}),
		paymentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toomburg_payment_failures_total",
			Help: "Rejected payments by reason.",
		}, []string{"reason"}),
		reservations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toomburg_reservations_total",
			Help: "Reservations booked.",
		}),
		httpResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toomburg_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.ordersCommitted,
		c.itemsOrdered,
		c.paymentFailures,
		c.reservations,
		c.httpResponses,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordOrderCommitted(items int) {
	c.ordersCommitted.Inc()
	c.itemsOrdered.Add(float64(items))
}

func (c *Collector) RecordPaymentFailure(reason string) {
	c.paymentFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordReservation() {
	c.reservations.Inc()
}

func (c *Collector) RecordHTTPStatus(code int) {
	c.httpResponses.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Handler serves the registry the collector was built on, or the default one.
func (c *Collector) Handler() http.Handler {
	if c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
