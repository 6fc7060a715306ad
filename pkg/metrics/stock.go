package metrics

import "github.com/prometheus/client_golang/prometheus"

// StockMetrics counts ledger movements by kind and outcome.
type StockMetrics struct {
	movements    *prometheus.CounterVec
	inconsistent prometheus.Counter
}

func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_movements_total",
		Help:      "Stock ledger operations by kind and outcome.",
	}, []string{"kind", "outcome"})
	inconsistent := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_inconsistent_reservations_total",
		Help:      "Commit or release calls that exceeded the reserved quantity.",
	})
	reg.MustRegister(movements, inconsistent)
	return &StockMetrics{movements: movements, inconsistent: inconsistent}
}

func (s *StockMetrics) IncMovement(kind, outcome string) {
	if s == nil || s.movements == nil {
		return
	}
	s.movements.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

func (s *StockMetrics) IncInconsistentReservation() {
	if s == nil || s.inconsistent == nil {
		return
	}
	s.inconsistent.Inc()
}
