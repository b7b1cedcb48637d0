package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/Ahorro-api/internal/domain"
)

var (
	LedgerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Total de operaciones del libro mayor por resultado",
	}, []string{"operation", "result"})

	LedgerOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Latencia de las operaciones del libro mayor",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	SettledUnitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_settled_units_total",
		Help: "Unidades liquidadas validadas (colectas y transferencias)",
	})

	StockMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_stock_movements_total",
		Help: "Filas de stock escritas por tipo de movimiento",
	}, []string{"movement_type"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_published_total",
		Help: "Eventos publicados al sink por resultado",
	}, []string{"event", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// ObserveOperation registra latencia y resultado ("ok", "not_found", "conflict", "validation", "storage").
func ObserveOperation(operation string, start time.Time, err error) {
	LedgerOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	LedgerOperationsTotal.WithLabelValues(operation, Result(err)).Inc()
}

// Result traduce un error al label de resultado.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return string(de.Kind)
	}
	return string(domain.KindStorage)
}

// ObserveHTTP registra una petición HTTP atendida.
func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
}
