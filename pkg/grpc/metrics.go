package grpc

import (
	"time"

	"github.com/example/nodeplugin/proto"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run collectors of one plugin server. A nil *Metrics
// records nothing.
type Metrics struct {
	runsInFlight prometheus.Gauge
	runsTotal    *prometheus.CounterVec
	runsRejected *prometheus.CounterVec
	framesSent   *prometheus.CounterVec
	runLatency   prometheus.Histogram
}

// NewMetrics creates the run collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nodeplugin_runs_in_flight",
				Help: "The count of runs currently executing.",
			},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeplugin_runs_total",
				Help: "The count of finished runs by result status.",
			},
			[]string{"status"},
		),
		runsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeplugin_runs_rejected_total",
				Help: "The count of runs refused before any work started.",
			},
			[]string{"reason"},
		),
		framesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeplugin_frames_sent_total",
				Help: "The count of run frames written to streams.",
			},
			[]string{"type"},
		),
		runLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nodeplugin_run_duration_seconds",
				Help:    "The duration of finished runs.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}

	reg.MustRegister(m.runsInFlight, m.runsTotal, m.runsRejected, m.framesSent, m.runLatency)
	return m
}

func (m *Metrics) runStarted() {
	if m == nil {
		return
	}
	m.runsInFlight.Inc()
}

func (m *Metrics) runFinished(status proto.ExecutionStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.runsInFlight.Dec()
	m.runsTotal.WithLabelValues(status.String()).Inc()
	m.runLatency.Observe(d.Seconds())
}

func (m *Metrics) runRejected(reason string) {
	if m == nil {
		return
	}
	m.runsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) frameSent(t proto.ResponseType) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(t.String()).Inc()
}
