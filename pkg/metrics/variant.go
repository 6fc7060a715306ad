package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResolutionExisting       = "existing"
	ResolutionCreated        = "created"
	ResolutionConflictReread = "conflict_reread"
)

// VariantMetrics counts how variant resolutions were satisfied.
type VariantMetrics struct {
	resolutions *prometheus.CounterVec
}

func NewVariantMetrics(reg prometheus.Registerer) *VariantMetrics {
	if reg == nil {
		return &VariantMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "variant_resolutions_total",
		Help:      "Variant resolutions by result.",
	}, []string{"result"})
	reg.MustRegister(resolutions)
	return &VariantMetrics{resolutions: resolutions}
}

func (v *VariantMetrics) IncResolution(result string) {
	if v == nil || v.resolutions == nil {
		return
	}
	v.resolutions.WithLabelValues(normalizeLabel(result)).Inc()
}
