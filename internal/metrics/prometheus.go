package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"gridbench/internal/bench"
)

// PrometheusSink is an implementation of bench.Sink that mirrors the published mapping into a
// gauge vector on a dedicated registry. The registry can be scraped or, when a textfile path is
// configured, written out for the node exporter's textfile collector after every publication.
type PrometheusSink struct {
	registry  *prometheus.Registry
	durations *prometheus.GaugeVec
	publishes prometheus.Counter
	textfile  string
}

// NewPrometheusSink creates a sink with its own registry. An empty textfile disables file export.
func NewPrometheusSink(textfile string, constLabels prometheus.Labels) *PrometheusSink {
	durations := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   "gridbench",
		Name:        "operation_duration_milliseconds",
		Help:        "Latest measured duration of each benchmark measurement, in milliseconds.",
		ConstLabels: constLabels,
	}, []string{"measurement"})

	publishes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "gridbench",
		Name:        "publishes_total",
		Help:        "Number of times the measurement mapping has been published.",
		ConstLabels: constLabels,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(durations, publishes)

	return &PrometheusSink{
		registry:  registry,
		durations: durations,
		publishes: publishes,
		textfile:  textfile,
	}
}

// Registry exposes the sink's registry, e.g. to serve it over HTTP.
func (s *PrometheusSink) Registry() *prometheus.Registry {
	return s.registry
}

// Publish replaces every gauge with the snapshot's values.
func (s *PrometheusSink) Publish(snapshot bench.Snapshot) error {
	s.durations.Reset()

	for _, entry := range snapshot.Entries {
		s.durations.WithLabelValues(entry.Name).Set(entry.DurationMs())
	}

	s.publishes.Inc()

	if s.textfile == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(s.textfile, s.registry); err != nil {
		return fmt.Errorf("prometheus: error writing textfile: path=%s err=%w", s.textfile, err)
	}

	return nil
}
