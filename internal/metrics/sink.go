package metrics

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"

	"gridbench/internal/bench"
)

// timingEmitter is the subset of StatsdClient used by StatsdSink.
type timingEmitter interface {
	Timing(metric string, duration time.Duration, tags map[string]string) error
	Count(metric string, delta int64, tags map[string]string) error
}

// StatsdSink is an implementation of bench.Sink that emits every published measurement as a
// statsd timing, tagged with the measurement name and the run ID.
type StatsdSink struct {
	client timingEmitter
	runID  string
}

// NewStatsdSink creates a sink emitting to the specified statsd address and sample rate.
func NewStatsdSink(addr string, sampleRate float32, runID string) (*StatsdSink, error) {
	client, err := statsdClientFactory(addr, sampleRate)
	if err != nil {
		return nil, err
	}

	return &StatsdSink{client: client, runID: runID}, nil
}

// Publish statsd implementation. Since every snapshot carries the full mapping, measurements from
// earlier operations are re-emitted with each publication; the publish counter lets dashboards
// tell publications apart.
func (s *StatsdSink) Publish(snapshot bench.Snapshot) error {
	var err error

	for _, entry := range snapshot.Entries {
		err = multierr.Append(err, s.client.Timing("latency.benchmark", entry.Duration, map[string]string{
			"measurement": entry.Name,
			"run":         s.runID,
		}))
	}

	err = multierr.Append(err, s.client.Count("event.benchmark.publish", 1, map[string]string{
		"run": s.runID,
	}))

	if err != nil {
		return fmt.Errorf("statsd: error emitting measurements: err=%w", err)
	}

	return nil
}

// Close releases the underlying client, if it holds a socket.
func (s *StatsdSink) Close() error {
	if closer, ok := s.client.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Fanout publishes every snapshot to each of its sinks in order. A failing sink does not prevent
// the remaining sinks from receiving the snapshot; all errors are combined.
type Fanout []bench.Sink

// Publish fans the snapshot out.
func (f Fanout) Publish(snapshot bench.Snapshot) error {
	var err error

	for _, sink := range f {
		err = multierr.Append(err, sink.Publish(snapshot))
	}

	return err
}
