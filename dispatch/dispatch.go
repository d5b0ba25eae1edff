package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/pacerlabs/pacer/errors"
)

// Work is a blocking unit of work. The context carries the per-call
// deadline when the dispatcher is configured with a timeout; work that can
// observe cancellation should do so, but is not required to.
type Work func(ctx context.Context) (any, error)

// Future is the asynchronous result of a submitted Work.
type Future struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func failedFuture(err error) *Future {
	f := newFuture()
	f.complete(nil, err)
	return f
}

func (f *Future) complete(value any, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (f *Future) Result() (any, error) {
	return f.value, f.err
}

// Wait blocks until the result is available or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, errors.Wrap(errors.PhaseDispatch, errors.KindTimeout, ctx.Err(), "wait abandoned")
	}
}

type task struct {
	op   string
	work Work
	fut  *Future
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets a per-call timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.timeout = d }
}

// WithQueueDepth sets how many submissions may be queued ahead of the
// workers before Submit fails fast.
func WithQueueDepth(n int) Option {
	return func(dp *Dispatcher) {
		if n > 0 {
			dp.depth = n
		}
	}
}

// Dispatcher executes submitted work on a fixed pool of worker goroutines.
type Dispatcher struct {
	mu      sync.Mutex
	tasks   chan task
	wg      sync.WaitGroup
	closed  bool
	timeout time.Duration
	depth   int
}

// New creates a dispatcher with the given number of workers. A single
// worker serializes every call, which is the required configuration for
// engines that forbid concurrent access.
func New(workers int, opts ...Option) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{depth: 256}
	for _, opt := range opts {
		opt(d)
	}
	d.tasks = make(chan task, d.depth)
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.tasks {
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
		timer := time.AfterFunc(d.timeout, func() {
			t.fut.complete(nil, errors.Timeout(errors.PhaseDispatch, t.op))
		})
		defer timer.Stop()
	}

	defer func() {
		if r := recover(); r != nil {
			t.fut.complete(nil, errors.New(errors.PhaseDispatch, errors.KindEngineFailure).
				Op(t.op).
				Detail("panic in work: %v", r).
				Build())
		}
	}()

	value, err := t.work(ctx)
	t.fut.complete(value, err)
}

// Submit enqueues work for execution and returns its future. op names the
// operation in errors. Submit never blocks: if the dispatcher is closed or
// the queue is full, the returned future is already failed.
func (d *Dispatcher) Submit(op string, work Work) *Future {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return failedFuture(errors.Closed(op))
	}

	t := task{op: op, work: work, fut: newFuture()}
	select {
	case d.tasks <- t:
		d.mu.Unlock()
		return t.fut
	default:
		d.mu.Unlock()
		return failedFuture(errors.New(errors.PhaseDispatch, errors.KindBusy).
			Op(op).
			Detail("queue full (%d pending)", d.depth).
			Build())
	}
}

// Close stops accepting submissions and waits for queued and in-flight work
// to finish. Running work is never interrupted.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()
	d.wg.Wait()
}
