package batch

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters the status server exposes for batch runs.
type Metrics struct {
	Attempts *prometheus.CounterVec
	Claimed  prometheus.Counter
	Failed   *prometheus.CounterVec
}

// NewMetrics registers the batch loop's counters against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mangavault_batch_attempts_total",
			Help: "Total chapter purchase attempts by vendor.",
		}, []string{"vendor"}),
		Claimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mangavault_batch_claimed_total",
			Help: "Total chapters successfully claimed.",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mangavault_batch_failed_total",
			Help: "Total chapter claim failures by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.Attempts, m.Claimed, m.Failed)

	return m
}
