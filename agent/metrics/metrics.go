// Package metrics exposes turn counters and latencies for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Turn outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeRejected = "rejected"
	OutcomeReplayed = "replayed"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	turns       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	latency     prometheus.Histogram
	summaries   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_diary_turns_total",
				Help: "Webhook turns by resolved dialog state and outcome.",
			},
			[]string{"status", "outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_diary_transitions_total",
				Help: "Dialog state transitions chosen by handlers.",
			},
			[]string{"from", "to"},
		),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_diary_turn_duration_seconds",
			Help:    "Wall time spent answering one turn.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		summaries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_diary_summaries_total",
				Help: "Detached note summarization jobs by result.",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.turns, m.transitions, m.latency, m.summaries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveTurn(status, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(status, outcome).Inc()
	m.latency.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveSummary(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.summaries.WithLabelValues(result).Inc()
}

// TurnsCounter exposes the turn counter for assertions in tests.
func (m *Metrics) TurnsCounter() *prometheus.CounterVec {
	return m.turns
}
