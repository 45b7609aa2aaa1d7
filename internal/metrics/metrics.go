package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics holds the collectors the server exports on /metrics.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SalesCommitted      prometheus.Counter
	SalesRevenue        prometheus.Counter
	LowStockProducts    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		SalesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_committed_total",
			Help: "Sales written to the ledger",
		}),
		SalesRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_revenue_total",
			Help: "Sum of committed sale totals, tax included",
		}),
		LowStockProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pos_low_stock_products",
			Help: "Products below their low-stock threshold at the last sweep",
		}),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SalesCommitted,
		m.SalesRevenue,
		m.LowStockProducts,
	)
	return m
}

// Middleware records every request once the handler chain has finished.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}

// SaleCommitted counts one sale and its total.
func (m *Metrics) SaleCommitted(total decimal.Decimal) {
	m.SalesCommitted.Inc()
	m.SalesRevenue.Add(total.InexactFloat64())
}

// SetLowStock publishes the size of the latest low-stock list.
func (m *Metrics) SetLowStock(n int) {
	m.LowStockProducts.Set(float64(n))
}
