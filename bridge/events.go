package bridge

import "sync"

// Event is a notification pushed to subscribers. Concrete types:
// StateChanged, LogAppended, WatchUpdated, WatchesChanged.
type Event interface {
	event()
}

// StateChanged reports a simulation state transition. Err is the engine
// failure that forced the transition, nil for a successful one.
type StateChanged struct {
	Old State
	New State
	Err error
}

// LogAppended reports a new entry on one of the two log streams.
type LogAppended struct {
	Entry LogEntry
}

// WatchUpdated reports a completed poll read for a single watch.
type WatchUpdated struct {
	Watch WatchSnapshot
}

// WatchesChanged reports that the set of registered watches changed. It
// carries the full ordered list.
type WatchesChanged struct {
	Watches []WatchSnapshot
}

func (StateChanged) event()   {}
func (LogAppended) event()    {}
func (WatchUpdated) event()   {}
func (WatchesChanged) event() {}

// broker fans events out to subscriber channels. Emission never blocks: a
// subscriber that falls behind its buffer loses events, so the UI must
// treat the stream as change notifications and re-read snapshots, not as a
// complete history.
type broker struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	closed bool
}

func newBroker() *broker {
	return &broker{subs: make(map[chan Event]struct{})}
}

func (b *broker) subscribe(buffer int) chan Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

func (b *broker) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// unsubscribeRecv finds the stored send-capable channel matching a
// receive-only view handed out by Subscribe.
func (b *broker) unsubscribeRecv(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if (<-chan Event)(sub) == ch {
			delete(b.subs, sub)
			close(sub)
			return
		}
	}
}

func (b *broker) emit(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = make(map[chan Event]struct{})
}
