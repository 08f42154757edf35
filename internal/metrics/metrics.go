package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the pipeline's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	OffersSubmitted    prometheus.Counter
	OffersApproved     prometheus.Counter
	OffersFailed       prometheus.Counter
	RowsReconciled     prometheus.Counter
	ApprovalRunSeconds prometheus.Histogram
}

// NewRegistry creates and registers the pipeline collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	submitted := prometheus.NewCounter(prometheus.CounterOpts{Name: "offers_submitted_total"})
	approved := prometheus.NewCounter(prometheus.CounterOpts{Name: "offers_approved_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "offers_failed_total"})
	reconciled := prometheus.NewCounter(prometheus.CounterOpts{Name: "pending_rows_reconciled_total"})
	runSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "approval_run_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(submitted, approved, failed, reconciled, runSeconds)
	return &Registry{
		reg:                r,
		OffersSubmitted:    submitted,
		OffersApproved:     approved,
		OffersFailed:       failed,
		RowsReconciled:     reconciled,
		ApprovalRunSeconds: runSeconds,
	}
}

// Handler exposes the registry for scraping.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
