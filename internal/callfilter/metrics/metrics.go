package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for call filtering.
// All methods are safe on a nil receiver.
type Metrics struct {
	SessionOutcomes *prometheus.CounterVec
	SessionDuration *prometheus.HistogramVec

	ScreeningDuration prometheus.Histogram
	ScreeningTimeouts *prometheus.CounterVec

	BlockStatuses  *prometheus.CounterVec
	LookupFailures *prometheus.CounterVec

	FilterDecisions  *prometheus.CounterVec
	FilterDuration   prometheus.Histogram
	PipelineTimeouts prometheus.Counter
	SinkFailures     *prometheus.CounterVec
}

// New creates a new Metrics instance with all call filtering metrics
// registered. Call once per process.
func New() *Metrics {
	return &Metrics{
		SessionOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "callguard_screening_session_outcomes_total",
			Help: "Screening session completions by role and outcome",
		}, []string{"role", "outcome"}), // outcome: allow, disallow, silence, bind_failed, disconnected, closed, ...

		SessionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "callguard_screening_session_duration_seconds",
			Help:    "Time from bind to session completion by role",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 4.5},
		}, []string{"role"}),

		ScreeningDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "callguard_screening_duration_seconds",
			Help:    "Duration of the full screening stage for a call",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 4.5, 5},
		}),

		ScreeningTimeouts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "callguard_screening_timeouts_total",
			Help: "Screening timers that fired before a result, by stage",
		}, []string{"stage"}), // stage: carrier, deadline

		BlockStatuses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "callguard_block_status_total",
			Help: "Block status codes returned for inbound calls",
		}, []string{"status"}),

		LookupFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "callguard_lookup_failures_total",
			Help: "Collaborator lookups that failed open, by source",
		}, []string{"source"}), // source: contacts, block_status

		FilterDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "callguard_filter_decisions_total",
			Help: "Final filtering decisions by outcome and block reason",
		}, []string{"outcome", "block_reason"}),

		FilterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "callguard_filter_duration_seconds",
			Help:    "End-to-end filtering duration per call",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 4.5, 5},
		}),

		PipelineTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "callguard_pipeline_timeouts_total",
			Help: "Calls whose filters did not all report before the pipeline timeout",
		}),

		SinkFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "callguard_decision_sink_failures_total",
			Help: "Decision deliveries that failed, by sink",
		}, []string{"sink"}),
	}
}

func (m *Metrics) IncrementSessionOutcome(role, outcome string) {
	if m != nil {
		m.SessionOutcomes.WithLabelValues(role, outcome).Inc()
	}
}

func (m *Metrics) ObserveSessionDuration(role string, d time.Duration) {
	if m != nil {
		m.SessionDuration.WithLabelValues(role).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveScreeningDuration(d time.Duration) {
	if m != nil {
		m.ScreeningDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementScreeningTimeout(stage string) {
	if m != nil {
		m.ScreeningTimeouts.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncrementBlockStatus(status string) {
	if m != nil {
		m.BlockStatuses.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementLookupFailure(source string) {
	if m != nil {
		m.LookupFailures.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncrementFilterDecision(outcome, blockReason string) {
	if m != nil {
		m.FilterDecisions.WithLabelValues(outcome, blockReason).Inc()
	}
}

func (m *Metrics) ObserveFilterDuration(d time.Duration) {
	if m != nil {
		m.FilterDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPipelineTimeout() {
	if m != nil {
		m.PipelineTimeouts.Inc()
	}
}

func (m *Metrics) IncrementSinkFailure(sink string) {
	if m != nil {
		m.SinkFailures.WithLabelValues(sink).Inc()
	}
}
