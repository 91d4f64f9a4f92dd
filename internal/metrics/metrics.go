package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors HTTP y de negocio de la API
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	OrdersPlaced        prometheus.Counter
	OrderRevenue        prometheus.Counter
	StockRejections     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registra los collectors con el prefijo dado. Con un registry propio
// los tests no chocan con el registro global
func New(prefix string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP request metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		// Order metrics
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		OrderRevenue: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_order_revenue_total",
			Help: "Sum of the total amount of placed orders",
		}),
		StockRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_stock_rejections_total",
				Help: "Order lines rejected while reserving stock",
			},
			[]string{"reason"},
		),

		gatherer: reg,
	}
}

func (m *Metrics) OrderPlaced(amount float64) {
	m.OrdersPlaced.Inc()
	m.OrderRevenue.Add(amount)
}

func (m *Metrics) StockRejected(reason string) {
	m.StockRejections.WithLabelValues(reason).Inc()
}

// Middleware mide cada request usando la ruta registrada como label
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}

// Handler expone el registry en formato texto de Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
