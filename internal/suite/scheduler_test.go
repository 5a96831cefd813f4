package suite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeRunner records the order operations ran in and the peak number running at once.
type fakeRunner struct {
	ran     []Operation
	active  int
	peak    int
	block   chan struct{}
	started chan Operation
	fail    map[Operation]error
	mutex   sync.Mutex
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan Operation, 16), fail: make(map[Operation]error)}
}

func (r *fakeRunner) Run(ctx context.Context, op Operation) error {
	r.mutex.Lock()
	r.active++
	if r.active > r.peak {
		r.peak = r.active
	}
	block := r.block
	r.mutex.Unlock()

	r.started <- op

	if block != nil {
		<-block
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.active--
	r.ran = append(r.ran, op)

	return r.fail[op]
}

func TestSchedulerSerializesInSubmissionOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testContext(t)
	runner := newFakeRunner()
	runner.block = make(chan struct{})
	runner.fail[Filter] = errors.New("filter exploded")

	s := NewScheduler(runner, SchedulerOpts{})
	s.Start()
	defer s.Stop()

	var pending []*Pending
	for _, op := range []Operation{Load, Sort, Filter, Scroll} {
		p, err := s.Submit(ctx, op)
		require.NoError(t, err)
		pending = append(pending, p)
	}

	// Only the first request runs until it is released.
	require.Equal(t, Load, <-runner.started)
	select {
	case <-pending[1].Done():
		t.Fatal("second request completed before the first")
	default:
	}

	close(runner.block)

	require.NoError(t, pending[0].Wait(ctx))
	require.NoError(t, pending[1].Wait(ctx))
	require.EqualError(t, pending[2].Wait(ctx), "filter exploded")
	require.NoError(t, pending[3].Wait(ctx))

	// Waiting again returns the same result.
	require.EqualError(t, pending[2].Wait(ctx), "filter exploded")

	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	require.Equal(t, []Operation{Load, Sort, Filter, Scroll}, runner.ran)
	require.Equal(t, 1, runner.peak)
}

func TestSchedulerQueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testContext(t)
	runner := newFakeRunner()

	// Not started: requests stay queued.
	s := NewScheduler(runner, SchedulerOpts{QueueCapacity: 2})

	first, err := s.Submit(ctx, Load)
	require.NoError(t, err)
	second, err := s.Submit(ctx, Sort)
	require.NoError(t, err)

	_, err = s.Submit(ctx, Filter)
	require.ErrorIs(t, err, ErrQueueFull)

	s.Stop()

	require.ErrorIs(t, first.Wait(ctx), ErrSchedulerStopped)
	require.ErrorIs(t, second.Wait(ctx), ErrSchedulerStopped)

	_, err = s.Submit(ctx, Group)
	require.ErrorIs(t, err, ErrSchedulerStopped)
}

func TestSchedulerSkipsCanceledRequests(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testContext(t)
	runner := newFakeRunner()
	s := NewScheduler(runner, SchedulerOpts{})

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	p, err := s.Submit(canceled, Sort)
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.ErrorIs(t, p.Wait(ctx), context.Canceled)

	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	require.Empty(t, runner.ran)
}

func TestSchedulerRunsSuite(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testContext(t)
	suite, _, sink := newTestSuite(&countingHost{}, Opts{Rows: 1500})

	s := NewScheduler(suite, SchedulerOpts{QueueCapacity: 8})
	s.Start()
	defer s.Stop()

	var pending []*Pending
	for _, op := range Operations {
		p, err := s.Submit(ctx, op)
		require.NoError(t, err)
		pending = append(pending, p)
	}

	for _, p := range pending {
		require.NoError(t, p.Wait(ctx))
	}

	require.Len(t, sink.last(t).Labels, 8)
}
