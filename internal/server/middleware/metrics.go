package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// otherLabel метка для путей вне таблицы маршрутизации и неизвестных методов
const otherLabel = "other"

// knownMethods методы, которые обрабатывает dispatcher
var knownMethods = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"delete": true,
}

// Metrics собирает Prometheus метрики HTTP запросов
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	routes   map[string]bool
}

// NewMetrics создает и регистрирует метрики в registry.
// routes ограничивает значения метки route, остальные пути считаются как "other".
func NewMetrics(registry prometheus.Registerer, routes []string) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phoneauth",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "phoneauth",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "phoneauth",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests being served",
		}),
		routes: make(map[string]bool, len(routes)),
	}

	for _, route := range routes {
		m.routes[strings.Trim(route, "/")] = true
	}

	registry.MustRegister(m.requests, m.duration, m.inFlight)

	return m
}

// Middleware возвращает middleware, считающий запросы
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		route := m.route(r.URL.Path)
		method := methodLabel(r.Method)

		m.requests.WithLabelValues(route, method, strconv.Itoa(wrapped.statusCode)).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) route(path string) string {
	route := strings.Trim(path, "/")
	if m.routes[route] {
		return route
	}
	return otherLabel
}

func methodLabel(method string) string {
	method = strings.ToLower(method)
	if knownMethods[method] {
		return method
	}
	return otherLabel
}
