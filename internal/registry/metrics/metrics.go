package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the asset registry.
type Metrics struct {
	// Committed transitions by category
	Mints     *prometheus.CounterVec
	Updates   prometheus.Counter
	Transfers *prometheus.CounterVec

	// Rejected operations by error code
	Failures *prometheus.CounterVec

	OperationDuration *prometheus.HistogramVec
}

// New registers the registry metrics with the default Prometheus registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the registry metrics with reg. Tests pass a
// fresh prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mints: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_registry_mints_total",
			Help: "Total number of assets minted by category",
		}, []string{"category"}),

		Updates: factory.NewCounter(prometheus.CounterOpts{
			Name: "asset_registry_updates_total",
			Help: "Total number of metadata corrections applied",
		}),

		Transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_registry_transfers_total",
			Help: "Total number of ownership transfers by category",
		}, []string{"category"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_registry_failures_total",
			Help: "Total number of rejected registry operations by operation and error code",
		}, []string{"operation", "code"}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asset_registry_operation_duration_seconds",
			Help:    "Duration of registry operations including the store transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// IncrementMint records a committed mint.
func (m *Metrics) IncrementMint(category string) {
	if m != nil {
		m.Mints.WithLabelValues(category).Inc()
	}
}

// IncrementUpdate records a committed correction.
func (m *Metrics) IncrementUpdate() {
	if m != nil {
		m.Updates.Inc()
	}
}

// IncrementTransfer records a committed transfer.
func (m *Metrics) IncrementTransfer(category string) {
	if m != nil {
		m.Transfers.WithLabelValues(category).Inc()
	}
}

// IncrementFailure records a rejected operation.
func (m *Metrics) IncrementFailure(operation, code string) {
	if m != nil {
		m.Failures.WithLabelValues(operation, code).Inc()
	}
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m != nil {
		m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
