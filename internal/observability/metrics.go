// Package observability holds the logging and metrics setup shared by the
// report pipeline and its HTTP surface.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReportBuilds counts completed report builds by outcome.
	ReportBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_builds_total",
			Help: "Number of report builds, labeled by outcome (ok/error).",
		},
		[]string{"outcome"},
	)

	// RebuildTriggers counts stale-read rebuilds triggered on fetch.
	RebuildTriggers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "report_rebuild_triggers_total",
			Help: "Number of transparent rebuilds triggered by stale report reads.",
		},
	)

	// CoverageFallbacks counts embedding-strategy failures that fell back
	// to keyword coverage.
	CoverageFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coverage_embedding_fallbacks_total",
			Help: "Number of embedding coverage evaluations that fell back to the keyword strategy.",
		},
	)

	// AugmentFailures counts best-effort generative calls that returned
	// no augmentation.
	AugmentFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "augment_failures_total",
			Help: "Number of augmentation calls that degraded to the deterministic fallback, labeled by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(ReportBuilds, RebuildTriggers, CoverageFallbacks, AugmentFailures)
}

// MetricsHandler exposes the process metrics for scraping.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
