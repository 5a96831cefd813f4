package bench

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func newTestHarness() (*Harness, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()

	return NewHarness(HarnessOpts{Clock: clock}), clock
}

// recordingSink keeps every snapshot it has been handed.
type recordingSink struct {
	published []Snapshot
}

func (s *recordingSink) Publish(snapshot Snapshot) error {
	s.published = append(s.published, snapshot)
	return nil
}

func (s *recordingSink) last(t *testing.T) Snapshot {
	require.NotEmpty(t, s.published)
	return s.published[len(s.published)-1]
}

func TestMeasureComputesDurationBetweenMarks(t *testing.T) {
	h, clock := newTestHarness()

	h.Mark("s")
	clock.Advance(120 * time.Millisecond)
	h.Mark("e")

	m, err := h.Measure("Op", "s", "e")
	require.NoError(t, err)
	require.Equal(t, "Op", m.Name)
	require.Equal(t, 120*time.Millisecond, m.Duration)
	require.InDelta(t, 120.0, m.DurationMs(), 1e-9)
	require.Equal(t, Measured, h.State())
}

func TestMeasureSameNameLatestWins(t *testing.T) {
	h, clock := newTestHarness()

	h.Mark("a")
	clock.Advance(5 * time.Millisecond)
	h.Mark("b")
	clock.Advance(10 * time.Millisecond)
	h.Mark("c")

	_, err := h.Measure("Op", "a", "b")
	require.NoError(t, err)
	_, err = h.Measure("Other", "a", "c")
	require.NoError(t, err)
	_, err = h.Measure("Op", "b", "c")
	require.NoError(t, err)

	snapshot := h.Measurements()
	require.Equal(t, []string{"Op", "Other"}, snapshot.Labels)
	require.Equal(t, []float64{10, 15}, snapshot.Values)
}

func TestMeasureMissingMark(t *testing.T) {
	h, _ := newTestHarness()

	h.Mark("e")

	_, err := h.Measure("Op2", "missing", "e")
	require.Error(t, err)

	var missing *MissingMarkError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "Op2", missing.Measurement)
	require.Equal(t, "missing", missing.Label)
	require.Equal(t, 0, h.Measurements().Len())

	_, err = h.Measure("Op3", "e", "never")
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "never", missing.Label)
}

func TestMeasureNegativeDuration(t *testing.T) {
	h, clock := newTestHarness()

	h.Mark("end")
	clock.Advance(time.Millisecond)
	h.Mark("start")

	_, err := h.Measure("Backwards", "start", "end")

	var negative *NegativeDurationError
	require.True(t, errors.As(err, &negative))
	require.Equal(t, -time.Millisecond, negative.Duration)
	require.Equal(t, 0, h.Measurements().Len())
}

func TestResetThenCaptureAllPublishesEmptyMapping(t *testing.T) {
	h, clock := newTestHarness()
	sink := &recordingSink{}

	h.Mark("s")
	clock.Advance(time.Millisecond)
	h.Mark("e")
	_, err := h.Measure("Op", "s", "e")
	require.NoError(t, err)

	h.Reset()
	require.Equal(t, Idle, h.State())

	require.NoError(t, h.CaptureAll(NewMetrics(), sink))
	require.Equal(t, 0, sink.last(t).Len())
	require.Equal(t, Published, h.State())
}

func TestCaptureAllRepublishesCompleteMapping(t *testing.T) {
	h, clock := newTestHarness()
	sink := &recordingSink{}
	dst := NewMetrics()

	measure := func(name string, d time.Duration) {
		h.Mark(name + "-start")
		clock.Advance(d)
		h.Mark(name + "-end")
		_, err := h.Measure(name, name+"-start", name+"-end")
		require.NoError(t, err)
	}

	measure("A", 5*time.Millisecond)
	measure("B", 3*time.Millisecond)
	require.NoError(t, h.CaptureAll(dst, sink))

	measure("C", 7*time.Millisecond)
	require.NoError(t, h.CaptureAll(dst, sink))

	require.Len(t, sink.published, 2)
	last := sink.last(t)
	require.Equal(t, []string{"A", "B", "C"}, last.Labels)
	require.Equal(t, []float64{5, 3, 7}, last.Values)
}

func TestResetRequiredToAvoidStaleEntries(t *testing.T) {
	h, clock := newTestHarness()

	timed := func(name string) {
		h.Mark("start")
		clock.Advance(2 * time.Millisecond)
		h.Mark("end")
		_, err := h.Measure(name, "start", "end")
		require.NoError(t, err)
	}

	// Without a reset, the sort measurement survives into the filter run.
	timed("Sort Time")
	timed("Filter Time")
	_, stale := h.Measurements().Lookup("Sort Time")
	require.True(t, stale)

	h.Reset()
	timed("Sort Time")
	h.Reset()
	timed("Filter Time")

	snapshot := h.Measurements()
	_, stale = snapshot.Lookup("Sort Time")
	require.False(t, stale)
	require.Equal(t, []string{"Filter Time"}, snapshot.Labels)
}

func TestRunTimedOperation(t *testing.T) {
	h, clock := newTestHarness()
	sink := &recordingSink{}
	dst := NewMetrics()

	var states []State
	steps := []Step{
		{
			Name:  "Data Generation Time",
			Start: "gen-start",
			End:   "gen-end",
			Run: func(ctx context.Context, span *Span) error {
				states = append(states, h.State())
				clock.Advance(40 * time.Millisecond)
				return nil
			},
		},
		{
			Name:  "Data Binding Time",
			Start: "set-start",
			End:   "set-end",
			Run: func(ctx context.Context, span *Span) error {
				clock.Advance(15 * time.Millisecond)
				return nil
			},
		},
	}

	require.NoError(t, h.RunTimedOperation(context.Background(), "load", steps, dst, sink))

	require.Equal(t, []State{Running}, states)
	require.Equal(t, Published, h.State())
	require.Equal(t, []string{"Data Generation Time", "Data Binding Time"}, sink.last(t).Labels)
	require.Equal(t, []float64{40, 15}, sink.last(t).Values)

	duration, ok := dst.Get("Data Binding Time")
	require.True(t, ok)
	require.Equal(t, 15*time.Millisecond, duration)
}

func TestRunTimedOperationDeferredStep(t *testing.T) {
	h, clock := newTestHarness()
	dst := NewMetrics()

	steps := []Step{
		{
			Name:     "Initial Render Time",
			Start:    "render-start",
			End:      "render-end",
			Deferred: true,
			Run: func(ctx context.Context, span *Span) error {
				// The end mark is set later, from another goroutine, as a render callback
				// would.
				go func() {
					clock.Advance(33 * time.Millisecond)
					span.End()
				}()
				return nil
			},
		},
	}

	require.NoError(t, h.RunTimedOperation(context.Background(), "render", steps, dst, nil))

	duration, ok := dst.Get("Initial Render Time")
	require.True(t, ok)
	require.Equal(t, 33*time.Millisecond, duration)
}

func TestRunTimedOperationDeferredStepCanceled(t *testing.T) {
	h, _ := newTestHarness()
	sink := &recordingSink{}

	var pending *Span
	steps := []Step{
		{
			Name:     "Initial Render Time",
			Start:    "render-start",
			End:      "render-end",
			Deferred: true,
			Run: func(ctx context.Context, span *Span) error {
				pending = span
				return nil
			},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.RunTimedOperation(ctx, "render", steps, NewMetrics(), sink)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, sink.published)

	// A late callback from the abandoned run must not leak into the next one.
	h.Reset()
	pending.End()
	h.Mark("render-start")

	_, err = h.Measure("Initial Render Time", "render-start", "render-end")
	var missing *MissingMarkError
	require.True(t, errors.As(err, &missing))
}

func TestRunTimedOperationStepError(t *testing.T) {
	h, _ := newTestHarness()
	sink := &recordingSink{}
	boom := errors.New("boom")

	steps := []Step{
		{
			Name:  "Sort Time",
			Start: "sort-start",
			End:   "sort-end",
			Run: func(ctx context.Context, span *Span) error {
				return boom
			},
		},
	}

	err := h.RunTimedOperation(context.Background(), "sort", steps, NewMetrics(), sink)
	require.ErrorIs(t, err, boom)
	require.Empty(t, sink.published)
}

func TestRunTimedOperationRejectsOverlap(t *testing.T) {
	h, _ := newTestHarness()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	steps := []Step{
		{
			Name:  "Scroll Test Time",
			Start: "scroll-start",
			End:   "scroll-end",
			Run: func(ctx context.Context, span *Span) error {
				close(entered)
				<-release
				return nil
			},
		},
	}

	go func() {
		done <- h.RunTimedOperation(context.Background(), "scroll", steps, NewMetrics(), nil)
	}()

	<-entered
	err := h.RunTimedOperation(context.Background(), "sort", nil, NewMetrics(), nil)
	require.ErrorIs(t, err, ErrOperationInProgress)

	close(release)
	require.NoError(t, <-done)

	// The harness is usable again once the first operation completed.
	require.NoError(t, h.RunTimedOperation(context.Background(), "sort", nil, NewMetrics(), nil))
}

func TestCaptureAllSinkError(t *testing.T) {
	h, _ := newTestHarness()
	boom := errors.New("sink down")

	err := h.CaptureAll(NewMetrics(), SinkFunc(func(Snapshot) error { return boom }))
	require.ErrorIs(t, err, boom)
	require.NotEqual(t, Published, h.State())
}
