package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsSubmitted   = prometheus.NewCounter(prometheus.CounterOpts{Name: "analysis_jobs_submitted_total", Help: "Total analysis jobs accepted"})
	JobsCompleted   = prometheus.NewCounter(prometheus.CounterOpts{Name: "analysis_jobs_completed_total", Help: "Jobs completed with a generated report"})
	JobsFailed      = prometheus.NewCounter(prometheus.CounterOpts{Name: "analysis_jobs_failed_total", Help: "Jobs that ended in FAILED"})
	JobsSwept       = prometheus.NewCounter(prometheus.CounterOpts{Name: "analysis_jobs_swept_total", Help: "Terminal jobs removed by the retention sweep"})
	PIIMasked       = prometheus.NewCounter(prometheus.CounterOpts{Name: "analysis_pii_masked_total", Help: "PII entities masked before external transmission"})
	ActiveJobsGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "analysis_jobs_active", Help: "Jobs currently QUEUED or PROCESSING"})
	InFlightGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "analysis_workers_inflight", Help: "Worker tasks currently executing"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsSubmitted,
			JobsCompleted,
			JobsFailed,
			JobsSwept,
			PIIMasked,
			ActiveJobsGauge,
			InFlightGauge,
		)
	})
	return promhttp.Handler()
}
