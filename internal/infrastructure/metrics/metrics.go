// Package metrics expone las métricas Prometheus de la bodega.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
)

var _ inventory.Recorder = (*Metrics)(nil)

// Metrics agrupa los colectores en un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	Movements   *prometheus.CounterVec
	Units       *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	Corrections *prometheus.CounterVec

	EventsPublished *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registra los colectores bajo el namespace dado (p. ej. "bodega").
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.Movements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_movements_total",
		Help:      "Movimientos de stock confirmados por dirección",
	}, []string{"direction"})

	m.Units = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_units_total",
		Help:      "Unidades movidas por dirección",
	}, []string{"direction"})

	m.Rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_rejections_total",
		Help:      "Operaciones de stock rechazadas por motivo",
	}, []string{"reason"})

	m.Corrections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_corrections_total",
		Help:      "Desfases stock/lotes corregidos",
	}, []string{"kind"})

	m.EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kafka_events_published_total",
		Help:      "Eventos de stock publicados en Kafka",
	}, []string{"event_type", "status"})

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Peticiones HTTP",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de peticiones HTTP en segundos",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	registry.MustRegister(
		m.Movements, m.Units, m.Rejections, m.Corrections,
		m.EventsPublished, m.HTTPRequestsTotal, m.HTTPRequestDuration,
	)
	return m
}

// ObserveMovement implementa inventory.Recorder.
func (m *Metrics) ObserveMovement(direction string, quantity int) {
	m.Movements.WithLabelValues(direction).Inc()
	m.Units.WithLabelValues(direction).Add(float64(quantity))
}

// ObserveRejection implementa inventory.Recorder.
func (m *Metrics) ObserveRejection(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

// ObserveCorrection implementa inventory.Recorder.
func (m *Metrics) ObserveCorrection(kind string) {
	m.Corrections.WithLabelValues(kind).Inc()
}

// ObservePublish cuenta un intento de publicación de evento.
func (m *Metrics) ObservePublish(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, status).Inc()
}

// ObserveHTTP registra una petición ya respondida. path es la ruta registrada, no la URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler sirve el registry en formato de exposición Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry devuelve el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
