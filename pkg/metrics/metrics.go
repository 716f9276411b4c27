package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa las métricas Prometheus del libro de inventario.
type Metrics struct {
	MovementsRecorded  *prometheus.CounterVec
	AdjustmentsDenied  *prometheus.CounterVec
	TransfersCompleted prometheus.Counter
	LedgerDuration     *prometheus.HistogramVec
	ProjectorLookups   *prometheus.CounterVec
	ProjectedRows      prometheus.Counter
	OutboxPublished    prometheus.Counter
	OutboxFailed       prometheus.Counter
}

// New registra las métricas en reg. En producción se pasa prometheus.DefaultRegisterer;
// en tests un prometheus.NewRegistry() para no chocar entre casos.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MovementsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_movements_total",
			Help: "Movimientos escritos en el libro, por motivo y tipo de ubicación",
		}, []string{"reason", "location_type"}),
		AdjustmentsDenied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_denied_total",
			Help: "Operaciones rechazadas antes de escribir, por causa",
		}, []string{"operation", "cause"}),
		TransfersCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "stock_ledger_transfers_total",
			Help: "Traslados confirmados",
		}),
		LedgerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stock_ledger_operation_duration_seconds",
			Help:    "Duración de adjust/transfer incluida la transacción",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		ProjectorLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_ledger_projector_lookups_total",
			Help: "Consultas en lote emitidas por el proyector de auditoría",
		}, []string{"target"}),
		ProjectedRows: f.NewCounter(prometheus.CounterOpts{
			Name: "stock_ledger_projected_rows_total",
			Help: "Filas de auditoría proyectadas",
		}),
		OutboxPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "stock_ledger_outbox_published_total",
			Help: "Eventos del outbox publicados",
		}),
		OutboxFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "stock_ledger_outbox_failed_total",
			Help: "Intentos de publicación fallidos",
		}),
	}
}

// ObserveOperation registra la duración de una operación. Llamar con time.Now() al inicio.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	m.LedgerDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Denied cuenta un rechazo por causa (insufficient, invalid_state, invalid_input, not_found, other).
func (m *Metrics) Denied(op, cause string) {
	m.AdjustmentsDenied.WithLabelValues(op, cause).Inc()
}
