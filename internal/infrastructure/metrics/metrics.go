package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
)

var _ feedlot.Metrics = (*Prometheus)(nil)

// Prometheus contadores de operación del ledger y sus efectos colaterales.
type Prometheus struct {
	ledgerOps          *prometheus.CounterVec
	sideEffectFailures *prometheus.CounterVec
	conflictRetries    prometheus.Counter
}

// New registra los contadores en el registry dado (nil usa el global).
func New(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Prometheus{
		ledgerOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedlot",
			Name:      "ledger_operations_total",
			Help:      "Operaciones del ledger de lotes por tipo (debit, credit).",
		}, []string{"op"}),
		sideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedlot",
			Name:      "side_effect_failures_total",
			Help:      "Fallas de efectos colaterales best-effort por integración.",
		}, []string{"kind"}),
		conflictRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "feedlot",
			Name:      "persistence_conflict_retries_total",
			Help:      "Reintentos de transacción por conflicto de concurrencia.",
		}),
	}
}

func (m *Prometheus) LedgerOp(op string) {
	m.ledgerOps.WithLabelValues(op).Inc()
}

func (m *Prometheus) SideEffectFailure(kind string) {
	m.sideEffectFailures.WithLabelValues(kind).Inc()
}

func (m *Prometheus) ConflictRetry() {
	m.conflictRetries.Inc()
}
