package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for finalize attempts.
const (
	OutcomeFiled    = "filed"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics provides observability for the filing module.
// Tracks filing creation, finalize outcomes, assessed fees and critical path durations.
type Metrics struct {
	FilingsCreated       *prometheus.CounterVec
	FinalizeOutcomes     *prometheus.CounterVec
	FeesAssessed         *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	FinalizeDuration     prometheus.Histogram
	ComputeFeesDuration  prometheus.Histogram
}

// New registers the filing metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		FilingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "efile_filings_created_total",
			Help: "Total number of filings created, by filing type and amendment flag",
		}, []string{"filing_type", "amendment"}),
		FinalizeOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "efile_finalize_total",
			Help: "Finalize attempts by filing type and outcome",
		}, []string{"filing_type", "outcome"}),
		FeesAssessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "efile_fees_assessed_dollars_total",
			Help: "Sum of fees embedded in filed documents",
		}, []string{"filing_type"}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "efile_notification_failures_total",
			Help: "Notifications that could not be dispatched after a filing was received",
		}),
		FinalizeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "efile_finalize_duration_seconds",
			Help:    "Duration of Finalize operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ComputeFeesDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "efile_compute_fees_duration_seconds",
			Help:    "Duration of ComputeFees operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementFilingCreated(filingType string, amendment bool) {
	label := "false"
	if amendment {
		label = "true"
	}
	m.FilingsCreated.WithLabelValues(filingType, label).Inc()
}

func (m *Metrics) IncrementFinalize(filingType, outcome string) {
	m.FinalizeOutcomes.WithLabelValues(filingType, outcome).Inc()
}

// AddFees records the fee total of a filed document.
func (m *Metrics) AddFees(filingType string, amount float64) {
	if amount > 0 {
		m.FeesAssessed.WithLabelValues(filingType).Add(amount)
	}
}

func (m *Metrics) IncrementNotificationFailure() {
	m.NotificationFailures.Inc()
}

// ObserveFinalize records the duration of a Finalize operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveFinalize(start time.Time) {
	m.FinalizeDuration.Observe(time.Since(start).Seconds())
}

// ObserveComputeFees records the duration of a ComputeFees operation.
func (m *Metrics) ObserveComputeFees(start time.Time) {
	m.ComputeFeesDuration.Observe(time.Since(start).Seconds())
}
