package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "maestro"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Invoice workflow metrics
	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_invoices_created_total",
		Help: "Invoices committed by the invoice writer",
	})

	InvoiceReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_invoice_idempotent_replays_total",
		Help: "Invoice submissions answered from an existing idempotency key",
	})

	InvoiceAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    prefix + "_invoice_amount",
		Help:    "Total amount of committed invoices",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000, 10000},
	})

	InvoiceRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_invoice_rejections_total",
			Help: "Invoice submissions rejected before or during commit",
		},
		[]string{"reason"},
	)

	InvoiceStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_invoice_status_changes_total",
			Help: "Invoice status transitions by target status",
		},
		[]string{"status"},
	)

	// Stock metrics
	StockMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Stock movements recorded by kind",
		},
		[]string{"tipo"},
	)

	ProductStock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_product_stock",
			Help: "Last known stock per product",
		},
		[]string{"product_id"},
	)
)

// Rejection reasons used with InvoiceRejections.
const (
	ReasonEmpty         = "empty"
	ReasonTotalMismatch = "total_mismatch"
	ReasonStock         = "stock"
	ReasonConflict      = "conflict"
	ReasonIdempotency   = "idempotency"
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
