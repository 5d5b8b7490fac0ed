package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics counts tracker events. It satisfies tracker.Recorder.
type Metrics struct {
	registry       *prometheus.Registry
	samplesTotal   *prometheus.CounterVec
	samplerErrors  prometheus.Counter
	remindersTotal prometheus.Counter
}

// NewMetrics creates the tracker metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moodlens_activity_samples_total",
			Help: "Activity samples written, by tag.",
		}, []string{"tag"}),
		samplerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodlens_sampler_errors_total",
			Help: "Samples skipped or lost because probing or writing failed.",
		}),
		remindersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodlens_mood_reminders_total",
			Help: "Mood reminders fired.",
		}),
	}

	m.registry.MustRegister(
		m.samplesTotal,
		m.samplerErrors,
		m.remindersTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Sampled(tag string) { m.samplesTotal.WithLabelValues(tag).Inc() }
func (m *Metrics) SampleFailed()      { m.samplerErrors.Inc() }
func (m *Metrics) ReminderFired()     { m.remindersTotal.Inc() }

// Registry exposes the registry the metrics are served from.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
