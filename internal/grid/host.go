package grid

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"gridbench/internal/log"
)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Host is the environment that paints between benchmark steps. RequestFrame schedules a callback
// to run once, after the next visual update.
type Host interface {
	RequestFrame(callback func())
}

// NextFrame suspends the caller until the host's next frame, or until the context is done.
func NextFrame(ctx context.Context, host Host) error {
	painted := make(chan struct{})
	host.RequestFrame(func() { close(painted) })

	select {
	case <-painted:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FrameLoop is a Host that runs frame callbacks on its own goroutine, once per tick of a fixed
// frame interval. Callbacks requested during a frame run on the following frame.
type FrameLoop struct {
	clock    clockwork.Clock
	interval time.Duration
	logger   log.Logger

	pending []func()
	frames  uint64
	started bool
	mutex   sync.Mutex

	stop chan struct{}
	done chan struct{}
}

// FrameLoopOpts formalizes configuration options for a frame loop.
type FrameLoopOpts struct {
	// Interval is the time between frames. It defaults to DefaultFrameInterval.
	Interval time.Duration
	// Clock drives the frame ticker. It defaults to the real clock.
	Clock  clockwork.Clock
	Logger log.Logger
}

// NewFrameLoop creates a stopped frame loop.
func NewFrameLoop(opts FrameLoopOpts) *FrameLoop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultFrameInterval
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}

	return &FrameLoop{
		clock:    opts.Clock,
		interval: opts.Interval,
		logger:   opts.Logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins ticking frames in a background goroutine. Calling Start more than once has no
// effect.
func (l *FrameLoop) Start() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.started {
		return
	}

	l.started = true

	ticker := l.clock.NewTicker(l.interval)

	go func() {
		defer close(l.done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				l.frame()
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for the frame goroutine to exit. Callbacks still pending are
// discarded.
func (l *FrameLoop) Stop() {
	l.mutex.Lock()
	started := l.started
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	l.mutex.Unlock()

	if started {
		<-l.done
	}
}

// RequestFrame schedules a callback for the next frame.
func (l *FrameLoop) RequestFrame(callback func()) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.pending = append(l.pending, callback)
}

// Frames reports the number of frames that have run so far.
func (l *FrameLoop) Frames() uint64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.frames
}

// frame runs every callback scheduled before the frame began.
func (l *FrameLoop) frame() {
	l.mutex.Lock()
	callbacks := l.pending
	l.pending = nil
	l.frames++
	frame := l.frames
	l.mutex.Unlock()

	if len(callbacks) > 0 {
		l.logger.Debug("frame_loop: running frame callbacks: frame=%d callbacks=%d", frame, len(callbacks))
	}

	for _, callback := range callbacks {
		callback()
	}
}

// ImmediateHost is a Host without a paint cycle: every requested callback runs right away on its
// own goroutine. It suits headless runs where only the cost of the grid calls matters.
type ImmediateHost struct{}

// RequestFrame runs the callback asynchronously.
func (ImmediateHost) RequestFrame(callback func()) {
	go callback()
}
