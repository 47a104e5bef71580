package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the engine.
type Metrics struct {
	IngestRuns      *prometheus.CounterVec
	FlagChanges     *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	EventsDropped   prometheus.Counter
	Subscribers     prometheus.Gauge
	SchedulerCycles prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IngestRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "safety_ingest_runs_total",
			Help: "Weather ingestion attempts per outcome.",
		}, []string{"outcome"}),
		FlagChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "safety_flag_changes_total",
			Help: "Safety flag rows written, by resulting status.",
		}, []string{"status"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "safety_events_published_total",
			Help: "Events published to the fan-out hub, by event name.",
		}, []string{"event"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "safety_events_dropped_total",
			Help: "Events dropped because a subscriber or topic queue was full.",
		}),
		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "safety_hub_subscribers",
			Help: "Currently connected hub subscribers.",
		}),
		SchedulerCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "safety_scheduler_cycles_total",
			Help: "Completed scheduler update cycles.",
		}),
	}
}
