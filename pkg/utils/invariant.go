// Invariants are conditions that must hold unless there is a bug in chain itself, e.g. a list whose links run out
// before its length counter says they should. Think of what you'd `panic()` on, but without taking the whole server
// down for it: a violation is logged, counted in `invariants_total` and, in test builds, turned into a panic.
// The caller still has to handle the erroneous case, usually with an early return.
//
// Do not raise invariants for conditions that depend on external input; a client sending a bad index is an error,
// not an invariant violation.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The package that detected the violation, e.g. list or port.
	"type",   // A short snake_case name of the violated condition.
})

// RaiseInvariant records a violation of `invariantType` detected in `module`.
func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns how many times `invariantType` has been raised in `module`.
func GetMetricValue(module, invariantType string) int {
	metric := &promclient.Metric{}
	if err := invariantsMetric.WithLabelValues(module, invariantType).Write(metric); err != nil {
		slog.Error("Failed to read the invariants metric.", "error", err)
		return 0
	}
	return int(metric.Counter.GetValue())
}
