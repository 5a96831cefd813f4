package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gridbench/internal/bench"
)

type emitted struct {
	metric   string
	duration time.Duration
	delta    int64
	tags     map[string]string
}

type fakeEmitter struct {
	timings []emitted
	counts  []emitted
	err     error
}

func (e *fakeEmitter) Timing(metric string, duration time.Duration, tags map[string]string) error {
	e.timings = append(e.timings, emitted{metric: metric, duration: duration, tags: tags})
	return e.err
}

func (e *fakeEmitter) Count(metric string, delta int64, tags map[string]string) error {
	e.counts = append(e.counts, emitted{metric: metric, delta: delta, tags: tags})
	return e.err
}

func snapshotOf(entries map[string]time.Duration, order ...string) bench.Snapshot {
	m := bench.NewMetrics()
	for _, name := range order {
		m.Set(name, entries[name])
	}
	return m.Snapshot()
}

func TestFormatMetric(t *testing.T) {
	c := &StatsdClient{defaultTags: map[string]string{"host": "bench-1"}}

	require.Equal(
		t,
		"latency.benchmark,host=bench-1,measurement=Sort+Time,run=abc",
		c.formatMetric("latency.benchmark", map[string]string{"measurement": "Sort Time", "run": "abc"}),
	)

	bare := &StatsdClient{}
	require.Equal(t, "event%3Aweird", bare.formatMetric("event:weird", nil))
}

func TestStatsdSinkPublish(t *testing.T) {
	emitter := &fakeEmitter{}
	sink := &StatsdSink{client: emitter, runID: "run-1"}

	snapshot := snapshotOf(map[string]time.Duration{
		"Sort Time":   4 * time.Millisecond,
		"Filter Time": 2 * time.Millisecond,
	}, "Sort Time", "Filter Time")

	require.NoError(t, sink.Publish(snapshot))

	require.Len(t, emitter.timings, 2)
	require.Equal(t, "latency.benchmark", emitter.timings[0].metric)
	require.Equal(t, 4*time.Millisecond, emitter.timings[0].duration)
	require.Equal(t, map[string]string{"measurement": "Sort Time", "run": "run-1"}, emitter.timings[0].tags)
	require.Equal(t, "Filter Time", emitter.timings[1].tags["measurement"])

	require.Len(t, emitter.counts, 1)
	require.Equal(t, "event.benchmark.publish", emitter.counts[0].metric)
	require.NoError(t, sink.Close())
}

func TestStatsdSinkPublishError(t *testing.T) {
	emitter := &fakeEmitter{err: errors.New("connection refused")}
	sink := &StatsdSink{client: emitter}

	err := sink.Publish(snapshotOf(map[string]time.Duration{"A": time.Millisecond}, "A"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
}

func TestPrometheusSinkReplacesGauges(t *testing.T) {
	sink := NewPrometheusSink("", prometheus.Labels{"run": "run-1"})

	require.NoError(t, sink.Publish(snapshotOf(map[string]time.Duration{
		"Sort Time":   1500 * time.Microsecond,
		"Filter Time": 3 * time.Millisecond,
	}, "Sort Time", "Filter Time")))

	require.InDelta(t, 1.5, testutil.ToFloat64(sink.durations.WithLabelValues("Sort Time")), 1e-9)
	require.Equal(t, 2, testutil.CollectAndCount(sink.durations))

	require.NoError(t, sink.Publish(snapshotOf(map[string]time.Duration{
		"Filter Time": 5 * time.Millisecond,
	}, "Filter Time")))

	require.Equal(t, 1, testutil.CollectAndCount(sink.durations))
	require.InDelta(t, 5.0, testutil.ToFloat64(sink.durations.WithLabelValues("Filter Time")), 1e-9)
	require.InDelta(t, 2.0, testutil.ToFloat64(sink.publishes), 1e-9)
}

func TestPrometheusSinkTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridbench.prom")
	sink := NewPrometheusSink(path, nil)

	require.NoError(t, sink.Publish(snapshotOf(map[string]time.Duration{
		"Grouping Time": 7 * time.Millisecond,
	}, "Grouping Time")))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(
		string(contents),
		`gridbench_operation_duration_milliseconds{measurement="Grouping Time"} 7`,
	))
}

func TestFanout(t *testing.T) {
	var first, second []bench.Snapshot
	boom := errors.New("boom")

	fanout := Fanout{
		bench.SinkFunc(func(s bench.Snapshot) error {
			first = append(first, s)
			return boom
		}),
		bench.SinkFunc(func(s bench.Snapshot) error {
			second = append(second, s)
			return nil
		}),
	}

	err := fanout.Publish(snapshotOf(map[string]time.Duration{"A": time.Millisecond}, "A"))
	require.ErrorIs(t, err, boom)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	require.NoError(t, Fanout(nil).Publish(bench.Snapshot{}))
}
