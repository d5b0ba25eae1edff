package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pacerlabs/pacer/dispatch"
	"github.com/pacerlabs/pacer/engine"
	"github.com/pacerlabs/pacer/errors"
)

const defaultPollInterval = 500 * time.Millisecond

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger installs an operator-facing logger. Defaults to a no-op
// logger; the App/Monitor log streams are independent of it.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// WithPollInterval sets the memory watch polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// WithWorkers sets the dispatcher worker count. One worker serializes every
// engine call; use it when the engine forbids concurrent access.
func WithWorkers(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithCallTimeout bounds each engine call. Zero (the default) imposes no
// timeout; a hung engine then holds its pending operation open.
func WithCallTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.callTimeout = d }
}

// pendingOp tags the single control operation allowed in flight.
type pendingOp struct {
	seq uint64
	op  controlOp
}

// Bridge is the asynchronous orchestration core between a UI and the
// blocking engine. All of its state (simulation state, pending-operation
// marker, watch registry, log streams) is confined to one run-loop
// goroutine; engine calls execute on the dispatcher's workers and their
// results are marshaled back onto the loop before being applied.
//
// Every exported method is safe for concurrent use and returns without
// blocking on engine I/O.
type Bridge struct {
	eng  engine.Engine
	disp *dispatch.Dispatcher
	log  *zap.Logger

	pollInterval time.Duration
	callTimeout  time.Duration
	workers      int

	cmds    chan func()
	closing chan struct{}
	done    chan struct{}
	closed  sync.Once

	// Everything below is confined to the run loop.
	state       State
	stateErr    error
	pending     *pendingOp
	seq         uint64
	watches     *registry
	monitorQ    []string
	monitorBusy bool
	appLog      []LogEntry
	monitorLog  []LogEntry

	events *broker
}

// New creates a bridge over eng and starts its run loop. The engine
// instance must not be used by anyone else once handed to the bridge.
func New(eng engine.Engine, opts ...Option) (*Bridge, error) {
	if eng == nil {
		return nil, errors.InvalidInput("engine must not be nil")
	}
	b := &Bridge{
		eng:          eng,
		log:          zap.NewNop(),
		pollInterval: defaultPollInterval,
		workers:      4,
		cmds:         make(chan func(), 64),
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
		watches:      newRegistry(),
		events:       newBroker(),
	}
	for _, opt := range opts {
		opt(b)
	}

	var dispOpts []dispatch.Option
	if b.callTimeout > 0 {
		dispOpts = append(dispOpts, dispatch.WithTimeout(b.callTimeout))
	}
	b.disp = dispatch.New(b.workers, dispOpts...)

	go b.run()

	// Engine log lines arrive on arbitrary goroutines; marshal them onto
	// the loop like every other asynchronous result.
	if ls, ok := eng.(engine.LogStreamer); ok {
		ls.SetLogSink(func(line string) {
			b.post(func() { b.append(SourceMonitor, line) })
		})
	}
	return b, nil
}

// Subscribe registers an event channel with the given buffer. A subscriber
// that falls behind its buffer loses events; use the snapshot accessors to
// re-read current state. The channel is closed by Close or Unsubscribe.
func (b *Bridge) Subscribe(buffer int) <-chan Event {
	return b.events.subscribe(buffer)
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (b *Bridge) Unsubscribe(ch <-chan Event) {
	b.events.unsubscribeRecv(ch)
}

// run is the event loop. It owns all bridge state.
func (b *Bridge) run() {
	defer close(b.done)
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-b.cmds:
			fn()
		case <-ticker.C:
			b.pollWatches()
		case <-b.closing:
			old := b.state
			b.state = StateStopped
			b.events.emit(StateChanged{Old: old, New: StateStopped})
			return
		}
	}
}

// post marshals fn onto the run loop. It reports false once the bridge is
// shut down, in which case fn is discarded.
func (b *Bridge) post(fn func()) bool {
	select {
	case b.cmds <- fn:
		return true
	case <-b.done:
		return false
	}
}

// call posts fn and waits for its synchronous reply. fn runs on the loop
// and must not block.
func (b *Bridge) call(op string, fn func() error) error {
	reply := make(chan error, 1)
	if !b.post(func() { reply <- fn() }) {
		return errors.Closed(op)
	}
	select {
	case err := <-reply:
		return err
	case <-b.done:
		return errors.Closed(op)
	}
}

// Close shuts the bridge down: the polling loop stops, in-flight engine
// calls run to completion on the dispatcher, and their results are
// discarded. Subsequent requests fail with a closed error. Close is
// idempotent and blocks until teardown finishes.
func (b *Bridge) Close() {
	b.closed.Do(func() {
		close(b.closing)
		<-b.done
		b.disp.Close()
		b.events.close()
		b.log.Info("bridge closed")
	})
}

// State returns the current simulation state.
func (b *Bridge) State() State {
	var s State
	err := b.call("state", func() error {
		s = b.state
		return nil
	})
	if err != nil {
		return StateStopped
	}
	return s
}

// LastError returns the engine failure that drove the bridge to
// StateError, or nil.
func (b *Bridge) LastError() error {
	var e error
	if err := b.call("state", func() error { e = b.stateErr; return nil }); err != nil {
		return err
	}
	return e
}

// Watches returns the ordered watch list.
func (b *Bridge) Watches() []WatchSnapshot {
	var out []WatchSnapshot
	if err := b.call("watches", func() error {
		out = b.watches.snapshots()
		return nil
	}); err != nil {
		return nil
	}
	return out
}

// AppLog returns a copy of the application log stream.
func (b *Bridge) AppLog() []LogEntry {
	return b.logCopy(SourceApp)
}

// MonitorLog returns a copy of the monitor log stream.
func (b *Bridge) MonitorLog() []LogEntry {
	return b.logCopy(SourceMonitor)
}

func (b *Bridge) logCopy(src LogSource) []LogEntry {
	var out []LogEntry
	if err := b.call("log", func() error {
		from := b.appLog
		if src == SourceMonitor {
			from = b.monitorLog
		}
		out = make([]LogEntry, len(from))
		copy(out, from)
		return nil
	}); err != nil {
		return nil
	}
	return out
}

// RequestLoadScript asks the engine to load a script. The path is opaque
// and forwarded verbatim; only an empty path is rejected here.
func (b *Bridge) RequestLoadScript(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.InvalidInput("script path must not be empty")
	}
	return b.control(opLoadScript, func(ctx context.Context) error {
		return b.eng.LoadScript(ctx, path)
	})
}

// RequestStart starts (or resumes) the simulation.
func (b *Bridge) RequestStart() error {
	return b.control(opStart, b.eng.Start)
}

// RequestPause pauses the simulation.
func (b *Bridge) RequestPause() error {
	return b.control(opPause, b.eng.Pause)
}

// RequestReset resets the simulation. Reset is legal from every non-idle
// state, including StateError, where it is the only recovery path.
func (b *Bridge) RequestReset() error {
	return b.control(opReset, b.eng.Reset)
}

// control validates, marks pending, and submits one control operation.
// Acceptance (guard check, pending marker, dispatcher submission) happens
// atomically on the run loop, so two control operations can never be in
// flight together.
func (b *Bridge) control(op controlOp, work func(context.Context) error) error {
	return b.call(string(op), func() error {
		if b.pending != nil {
			b.log.Debug("control rejected: busy",
				zap.String("op", string(op)),
				zap.String("pending", string(b.pending.op)))
			return errors.Busy(string(op), string(b.pending.op))
		}
		next, ok := successState(b.state, op)
		if !ok {
			return errors.InvalidTransition(string(op), b.state.String())
		}

		b.seq++
		b.pending = &pendingOp{seq: b.seq, op: op}
		b.log.Info("control accepted",
			zap.String("op", string(op)),
			zap.Uint64("seq", b.seq),
			zap.Stringer("state", b.state))

		fut := b.disp.Submit(string(op), func(ctx context.Context) (any, error) {
			return nil, work(ctx)
		})
		b.marshal(fut, func(_ any, err error) {
			b.finishControl(op, next, err)
		})
		return nil
	})
}

// marshal hands a future's result back to the run loop. Results arriving
// after shutdown are discarded.
func (b *Bridge) marshal(fut *dispatch.Future, apply func(any, error)) {
	go func() {
		<-fut.Done()
		v, err := fut.Result()
		b.post(func() { apply(v, err) })
	}()
}

// finishControl applies a completed control operation: state transition,
// pending marker cleared, notification emitted. Runs on the loop.
func (b *Bridge) finishControl(op controlOp, next State, err error) {
	old := b.state
	b.pending = nil

	if err != nil {
		b.state = StateError
		b.stateErr = err
		b.append(SourceApp, fmt.Sprintf("%s failed: %v", op, err))
		b.log.Warn("control failed",
			zap.String("op", string(op)),
			zap.Stringer("from", old),
			zap.Error(err))
		b.events.emit(StateChanged{Old: old, New: StateError, Err: err})
		return
	}

	b.state = next
	b.stateErr = nil
	b.append(SourceApp, fmt.Sprintf("%s ok: %s", op, next))
	b.log.Info("control completed",
		zap.String("op", string(op)),
		zap.Stringer("from", old),
		zap.Stringer("to", next))
	b.events.emit(StateChanged{Old: old, New: next})
}

// RequestMonitorCommand queues a monitor command. Commands are independent
// of the control state machine but require a loaded session (any state but
// Idle). They execute strictly one at a time, in submission order; output
// and failures are appended to the monitor log.
func (b *Bridge) RequestMonitorCommand(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return errors.InvalidInput("monitor command must not be empty")
	}
	return b.call("monitor_command", func() error {
		if b.state == StateIdle || b.state == StateStopped {
			return errors.New(errors.PhaseMonitor, errors.KindInvalidTransition).
				Op("monitor_command").
				Detail("no session loaded (state %s)", b.state).
				Build()
		}
		b.monitorQ = append(b.monitorQ, command)
		b.nextMonitorCommand()
		return nil
	})
}

// nextMonitorCommand starts the next queued monitor command if none is in
// flight. Runs on the loop.
func (b *Bridge) nextMonitorCommand() {
	if b.monitorBusy || len(b.monitorQ) == 0 {
		return
	}
	command := b.monitorQ[0]
	b.monitorQ = b.monitorQ[1:]
	b.monitorBusy = true

	b.append(SourceMonitor, "> "+command)
	fut := b.disp.Submit("monitor_command", func(ctx context.Context) (any, error) {
		return b.eng.MonitorCommand(ctx, command)
	})
	b.marshal(fut, func(v any, err error) {
		b.monitorBusy = false
		if err != nil {
			b.append(SourceMonitor, fmt.Sprintf("error: %v", err))
		} else if out, _ := v.(string); out != "" {
			b.append(SourceMonitor, out)
		}
		b.nextMonitorCommand()
	})
}

// AddWatch registers a memory watch. address must be a 0x-prefixed hex
// string; name must be unique. Validation happens before any engine call.
func (b *Bridge) AddWatch(address, name string, typ engine.DataType) error {
	addr, err := engine.ParseAddress(address)
	if err != nil {
		return err
	}
	return b.call("add_watch", func() error {
		if _, err := b.watches.add(addr, name, typ); err != nil {
			return err
		}
		b.log.Info("watch added",
			zap.String("name", name),
			zap.Uint64("address", addr),
			zap.Stringer("type", typ))
		b.events.emit(WatchesChanged{Watches: b.watches.snapshots()})
		return nil
	})
}

// RemoveWatch unregisters a watch by name.
func (b *Bridge) RemoveWatch(name string) error {
	return b.call("remove_watch", func() error {
		if err := b.watches.remove(name); err != nil {
			return err
		}
		b.log.Info("watch removed", zap.String("name", name))
		b.events.emit(WatchesChanged{Watches: b.watches.snapshots()})
		return nil
	})
}

// pollWatches runs one poll cycle. Polling is active only while the
// simulation is Running; other states suspend it without touching the
// registry. A watch whose previous read has not completed is skipped this
// cycle. Runs on the loop.
func (b *Bridge) pollWatches() {
	if b.state != StateRunning {
		return
	}
	for _, w := range b.watches.ordered {
		if w.inflight {
			continue
		}
		w.inflight = true
		name, addr, typ := w.name, w.address, w.typ
		fut := b.disp.Submit("read_memory", func(ctx context.Context) (any, error) {
			return b.eng.ReadMemory(ctx, addr, typ)
		})
		b.marshal(fut, func(v any, err error) {
			b.applyRead(name, v, err)
		})
	}
}

// applyRead records a completed watch read. Failed reads keep the previous
// value visible and set the error; a later success clears it. Runs on the
// loop.
func (b *Bridge) applyRead(name string, v any, err error) {
	w := b.watches.get(name)
	if w == nil {
		// Removed while the read was in flight.
		return
	}
	w.inflight = false
	if err != nil {
		w.lastErr = err.Error()
	} else if val, ok := v.(engine.Value); ok {
		w.value = &val
		w.lastErr = ""
	}
	b.events.emit(WatchUpdated{Watch: w.snapshot()})
}

// append adds an entry to a log stream and notifies subscribers. Runs on
// the loop.
func (b *Bridge) append(src LogSource, text string) {
	entry := LogEntry{Time: time.Now(), Source: src, Text: text}
	if src == SourceApp {
		b.appLog = append(b.appLog, entry)
	} else {
		b.monitorLog = append(b.monitorLog, entry)
	}
	b.events.emit(LogAppended{Entry: entry})
}
