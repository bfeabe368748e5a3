// Package telemetry provides Prometheus counters/histograms and
// OpenTelemetry spans for the compiler driver, which opens spans for its
// parse, assemble, and emit phases.
//
// Grounded on the teacher's pkg/metrics/metrics.go (a Metrics struct
// wrapping a private prometheus.Registry, one constructor building every
// collector up front) and pkg/tracing/tracing.go (a TracerProvider
// wrapping sdktrace, switchable between stdout and OTLP-gRPC exporters).
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Phase names one stage of the compiler pipeline.
type Phase string

const (
	PhaseParse       Phase = "parse"
	PhaseScopeResolve Phase = "scope_resolve"
	PhaseTypeEval    Phase = "type_eval"
	PhaseCFGBuild    Phase = "cfg_build"
	PhaseAssemble    Phase = "assemble"
	PhaseEmit        Phase = "emit"
)

// Metrics holds the Prometheus collectors for one vexc process.
type Metrics struct {
	filesCompiled   prometheus.Counter
	diagnostics     *prometheus.CounterVec
	phaseDuration   *prometheus.HistogramVec
	registry        *prometheus.Registry
}

// New registers a fresh set of collectors on a private registry (so
// running vexc as a library never pollutes prometheus.DefaultRegisterer,
// the way the teacher's own Metrics type keeps its own registry).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		filesCompiled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vexc",
			Name:      "files_compiled_total",
			Help:      "Number of source files successfully compiled.",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vexc",
			Name:      "diagnostics_total",
			Help:      "Number of diagnostics emitted, by kind.",
		}, []string{"kind"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vexc",
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock duration of each compiler phase.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"phase"}),
		registry: reg,
	}
	reg.MustRegister(m.filesCompiled, m.diagnostics, m.phaseDuration)
	return m
}

// ObservePhase records the duration of one compiler phase.
func (m *Metrics) ObservePhase(phase Phase, seconds float64) {
	m.phaseDuration.WithLabelValues(string(phase)).Observe(seconds)
}

// IncFileCompiled records one successfully compiled source file.
func (m *Metrics) IncFileCompiled() { m.filesCompiled.Inc() }

// IncDiagnostic records one emitted diagnostic of the given kind.
func (m *Metrics) IncDiagnostic(kind string) { m.diagnostics.WithLabelValues(kind).Inc() }

// Handler returns an http.Handler serving this Metrics instance's
// registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
