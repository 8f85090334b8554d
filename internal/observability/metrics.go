package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements core.MetricsRecorder with a counter and a
// latency histogram per store operation.
type PrometheusRecorder struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the store collectors on reg. A nil
// registerer leaves the collectors unregistered.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "physiobill",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Billing store operations by outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "physiobill",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Billing store operation latency including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{r.ops, r.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Observe records one operation outcome.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, d time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.ops.WithLabelValues(operation, status).Inc()
	r.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// Collectors exposes the underlying collectors, mainly for tests.
func (r *PrometheusRecorder) Collectors() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	return r.ops, r.duration
}
