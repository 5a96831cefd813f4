package bench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"gridbench/internal/log"
)

// Harness times named operations. It holds its own registry of marks (label to timestamp) and
// measurements (name to duration); nothing is shared between harness instances.
type Harness struct {
	clock  clockwork.Clock
	logger log.Logger

	marks        map[string]time.Time
	measurements *Metrics
	state        State
	// generation is bumped on every Reset so that late span callbacks belonging to an earlier
	// run cannot leak marks into the current one.
	generation uint64
	running    bool
	mutex      sync.Mutex
}

// HarnessOpts formalizes configuration options for a harness.
type HarnessOpts struct {
	// Clock is the time source used for marks. It defaults to the real wall clock; tests
	// substitute a fake clock to control durations exactly.
	Clock clockwork.Clock
	// Logger receives debug traces of marks and measurements. It defaults to a noop logger.
	Logger log.Logger
}

// NewHarness creates an idle harness with the specified options.
func NewHarness(opts HarnessOpts) *Harness {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}

	return &Harness{
		clock:        opts.Clock,
		logger:       opts.Logger,
		marks:        make(map[string]time.Time),
		measurements: NewMetrics(),
		state:        Idle,
	}
}

// Reset clears all previously recorded marks and measurements and returns the harness to Idle.
// It must be called before starting a new operation so results do not leak across runs.
func (h *Harness) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.marks = make(map[string]time.Time)
	h.measurements.Clear()
	h.state = Idle
	h.generation++
}

// Mark records the current time under label, replacing any earlier mark with the same label.
func (h *Harness) Mark(label string) {
	now := h.clock.Now()

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.marks[label] = now
}

// Measure resolves the duration between two marks and stores it under name. It fails with a
// *MissingMarkError if either label was never marked, and with a *NegativeDurationError if the
// end mark precedes the start mark. Nothing is stored on failure.
func (h *Harness) Measure(name string, startLabel string, endLabel string) (Measurement, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	start, ok := h.marks[startLabel]
	if !ok {
		return Measurement{}, &MissingMarkError{Measurement: name, Label: startLabel}
	}

	end, ok := h.marks[endLabel]
	if !ok {
		return Measurement{}, &MissingMarkError{Measurement: name, Label: endLabel}
	}

	duration := end.Sub(start)
	if duration < 0 {
		return Measurement{}, &NegativeDurationError{
			Measurement: name,
			Start:       startLabel,
			End:         endLabel,
			Duration:    duration,
		}
	}

	h.measurements.Set(name, duration)
	h.state = Measured

	h.logger.Debug("bench: measured: name=%s duration=%v", name, duration)

	return Measurement{Name: name, Duration: duration}, nil
}

// Measurements returns the measurements recorded since the last Reset.
func (h *Harness) Measurements() Snapshot {
	return h.measurements.Snapshot()
}

// State reports the current lifecycle state.
func (h *Harness) State() State {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.state
}

// CaptureAll copies every recorded measurement into dst, then publishes the complete contents of
// dst to the sink. A nil dst publishes only the harness's own measurements; a nil sink skips
// publication.
func (h *Harness) CaptureAll(dst *Metrics, sink Sink) error {
	current := h.measurements.Snapshot()

	snapshot := current
	if dst != nil {
		dst.merge(current.Entries)
		snapshot = dst.Snapshot()
	}

	if sink != nil {
		if err := sink.Publish(snapshot); err != nil {
			return fmt.Errorf("bench: error publishing measurements: err=%w", err)
		}
	}

	h.setState(Published)

	h.logger.Debug(
		"bench: captured measurements: captured=%d published=%d",
		current.Len(),
		snapshot.Len(),
	)

	return nil
}

// RunTimedOperation resets the harness, runs each step bracketed by its own start and end marks,
// measures every step, and finally captures all measurements into dst and publishes them to the
// sink. It fails with ErrOperationInProgress if another operation is running on this harness.
func (h *Harness) RunTimedOperation(ctx context.Context, name string, steps []Step, dst *Metrics, sink Sink) error {
	if !h.acquire() {
		return ErrOperationInProgress
	}
	defer h.release()

	h.Reset()

	h.logger.Debug("bench: starting timed operation: name=%s steps=%d", name, len(steps))

	for _, step := range steps {
		if err := h.runStep(ctx, name, step); err != nil {
			return err
		}
	}

	return h.CaptureAll(dst, sink)
}

// runStep executes a single step within a timed operation.
func (h *Harness) runStep(ctx context.Context, operation string, step Step) error {
	h.setState(MarkingStart)
	h.Mark(step.Start)

	span := h.newSpan(step.End)

	h.setState(Running)

	if step.Run != nil {
		if err := step.Run(ctx, span); err != nil {
			return fmt.Errorf(
				"bench: step failed: operation=%s step=%s err=%w",
				operation,
				step.Name,
				err,
			)
		}
	}

	if step.Deferred {
		h.logger.Debug("bench: awaiting deferred end mark: step=%s label=%s", step.Name, step.End)

		select {
		case <-span.Done():
		case <-ctx.Done():
			return fmt.Errorf(
				"bench: deferred step did not complete: operation=%s step=%s err=%w",
				operation,
				step.Name,
				ctx.Err(),
			)
		}
	} else {
		span.End()
	}

	_, err := h.Measure(step.Name, step.Start, step.End)

	return err
}

// markSpanEnd records an end mark on behalf of a span, unless the harness has been reset since the
// span was created.
func (h *Harness) markSpanEnd(label string, generation uint64) bool {
	now := h.clock.Now()

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.generation != generation {
		return false
	}

	h.state = MarkingEnd
	h.marks[label] = now

	return true
}

func (h *Harness) newSpan(endLabel string) *Span {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return &Span{
		harness:    h,
		label:      endLabel,
		generation: h.generation,
		done:       make(chan struct{}),
	}
}

func (h *Harness) setState(state State) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.state = state
}

func (h *Harness) acquire() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.running {
		return false
	}

	h.running = true

	return true
}

func (h *Harness) release() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.running = false
}
