package harness

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors exposes the runner counters. The values are read from the
// worker slots on every scrape; nothing is stored twice.
func (r *Runner) Collectors(labels prometheus.Labels) []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "qcmdpc_trials_total",
			Help:        "Decoding trials completed.",
			ConstLabels: labels,
		}, func() float64 { return float64(r.Snapshot().Tests) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "qcmdpc_successes_total",
			Help:        "Trials decoded within the iteration cap.",
			ConstLabels: labels,
		}, func() float64 { return float64(r.Snapshot().Successes) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "qcmdpc_failures_total",
			Help:        "Trials not decoded within the iteration cap.",
			ConstLabels: labels,
		}, func() float64 { return float64(r.Snapshot().Failures()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "qcmdpc_trial_rate",
			Help:        "Trials per second since the run started.",
			ConstLabels: labels,
		}, r.rate),
	}
}

func (r *Runner) rate() float64 {
	el := r.Elapsed().Seconds()
	if el <= 0 {
		return 0
	}
	var tests int64
	for _, sl := range r.slots {
		tests += sl.tests.Load()
	}
	return float64(tests) / el
}

// Register adds the runner collectors to reg.
func (r *Runner) Register(reg prometheus.Registerer, labels prometheus.Labels) error {
	for _, c := range r.Collectors(labels) {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
