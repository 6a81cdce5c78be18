package livestock

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mamadbah2/proporco/internal/domain/errs"
)

// Metrics counts reconciled operations by outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics registers the livestock collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proporco",
			Subsystem: "livestock",
			Name:      "operations_total",
			Help:      "Livestock mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrValidation):
		return "invalid"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
