package bench

import (
	"context"
	"sync"
)

// Step is a single timed unit of work within an operation. The harness marks Start, calls Run,
// marks End, and stores the resolved duration under Name.
type Step struct {
	// Name is the measurement name, e.g. "Sort Time".
	Name string
	// Start and End are the mark labels bracketing the step, e.g. "sort-start" and "sort-end".
	Start string
	End   string
	// Deferred steps do not end when Run returns. Instead, the end mark is set whenever
	// something calls span.End, typically a callback fired later from the frame loop (a first
	// render event, for example). The harness waits for that call.
	Deferred bool
	// Run performs the work being timed. It may be nil for steps that only bracket an
	// externally driven event.
	Run func(ctx context.Context, span *Span) error
}

// Span is the handle a running step holds on its own end mark.
type Span struct {
	harness    *Harness
	label      string
	generation uint64
	once       sync.Once
	done       chan struct{}
}

// End records the span's end mark. Only the first call has an effect, and calls arriving after
// the harness was reset are ignored. It is safe to call from any goroutine.
func (s *Span) End() {
	s.once.Do(func() {
		s.harness.markSpanEnd(s.label, s.generation)
		close(s.done)
	})
}

// Done is closed once End has been called.
func (s *Span) Done() <-chan struct{} {
	return s.done
}
