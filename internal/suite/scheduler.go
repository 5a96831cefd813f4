package suite

import (
	"context"
	"errors"
	"sync"

	"gridbench/internal/data"
	"gridbench/internal/log"
)

var (
	// ErrQueueFull is returned by Submit when the scheduler's queue is at capacity.
	ErrQueueFull = errors.New("scheduler: request queue is full")
	// ErrSchedulerStopped is returned for requests submitted to, or still queued in, a stopped
	// scheduler.
	ErrSchedulerStopped = errors.New("scheduler: scheduler is stopped")
)

// Scheduler serializes benchmark requests: operations run one at a time, in submission order, on
// a single worker goroutine. A request submitted while another is running waits in the queue
// until the earlier one has completed, including any deferred end mark.
type Scheduler struct {
	runner Runner
	queue  *data.Queue
	logger log.Logger

	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
	mutex   sync.Mutex
}

// SchedulerOpts formalizes configuration options for a scheduler.
type SchedulerOpts struct {
	// QueueCapacity bounds the number of requests waiting to run. Non-positive values leave the
	// queue unbounded.
	QueueCapacity int
	Logger        log.Logger
}

// Pending is a handle on a submitted request.
type Pending struct {
	Operation Operation

	done chan struct{}
	err  error
}

type request struct {
	ctx     context.Context
	pending *Pending
}

// NewScheduler creates a stopped scheduler that runs operations with runner.
func NewScheduler(runner Runner, opts SchedulerOpts) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}

	return &Scheduler{
		runner: runner,
		queue:  data.NewQueue(opts.QueueCapacity),
		logger: opts.Logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine. Calling Start more than once has no effect.
func (s *Scheduler) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started || s.stopped {
		return
	}

	s.started = true

	go s.work()
}

// Stop stops accepting requests, waits for the running request (if any) to finish, and fails
// every request still queued with ErrSchedulerStopped.
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	if s.stopped {
		s.mutex.Unlock()
		return
	}

	s.stopped = true
	started := s.started
	close(s.stop)
	s.mutex.Unlock()

	if started {
		<-s.done
	} else {
		s.failQueued()
	}
}

// Submit queues an operation. The context governs the operation itself once it starts running.
func (s *Scheduler) Submit(ctx context.Context, op Operation) (*Pending, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.stopped {
		return nil, ErrSchedulerStopped
	}

	pending := &Pending{Operation: op, done: make(chan struct{})}

	if !s.queue.Push(&request{ctx: ctx, pending: pending}) {
		return nil, ErrQueueFull
	}

	s.logger.Debug("scheduler: queued request: op=%s queued=%d", op, s.queue.Size())

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return pending, nil
}

// Wait blocks until the operation completes and returns its error, or until ctx is done. Wait may
// be called any number of times.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the operation has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// complete resolves the pending request. It is called exactly once per request.
func (p *Pending) complete(err error) {
	p.err = err
	close(p.done)
}

func (s *Scheduler) work() {
	defer close(s.done)

	for {
		for {
			select {
			case <-s.stop:
				s.failQueued()
				return
			default:
			}

			value, ok := s.queue.Pop()
			if !ok {
				break
			}

			s.run(value.(*request))
		}

		select {
		case <-s.wake:
		case <-s.stop:
			s.failQueued()
			return
		}
	}
}

func (s *Scheduler) run(req *request) {
	op := req.pending.Operation

	if err := req.ctx.Err(); err != nil {
		s.logger.Debug("scheduler: skipping canceled request: op=%s", op)
		req.pending.complete(err)
		return
	}

	err := s.runner.Run(req.ctx, op)
	if err != nil {
		s.logger.Error("scheduler: operation failed: op=%s err=%v", op, err)
	}

	req.pending.complete(err)
}

func (s *Scheduler) failQueued() {
	for _, value := range s.queue.Drain() {
		value.(*request).pending.complete(ErrSchedulerStopped)
	}
}
