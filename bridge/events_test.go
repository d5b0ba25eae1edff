package bridge

import "testing"

func TestBroker_FanOut(t *testing.T) {
	br := newBroker()
	a := br.subscribe(4)
	b := br.subscribe(4)

	br.emit(StateChanged{Old: StateIdle, New: StateLoaded})

	for _, ch := range []chan Event{a, b} {
		select {
		case ev := <-ch:
			sc, ok := ev.(StateChanged)
			if !ok || sc.New != StateLoaded {
				t.Errorf("got %#v", ev)
			}
		default:
			t.Error("subscriber did not receive event")
		}
	}
}

func TestBroker_SlowSubscriberDropsNotBlocks(t *testing.T) {
	br := newBroker()
	ch := br.subscribe(1)

	br.emit(LogAppended{Entry: LogEntry{Text: "one"}})
	// Buffer full: this must not block, the event is dropped.
	br.emit(LogAppended{Entry: LogEntry{Text: "two"}})

	ev := <-ch
	if ev.(LogAppended).Entry.Text != "one" {
		t.Errorf("got %#v, want first event", ev)
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected second event %#v", ev)
	default:
	}
}

func TestBroker_UnsubscribeCloses(t *testing.T) {
	br := newBroker()
	ch := br.subscribe(1)
	br.unsubscribeRecv(ch)

	if _, ok := <-ch; ok {
		t.Error("channel not closed by unsubscribe")
	}
	// Emitting after unsubscribe must not panic.
	br.emit(StateChanged{})
}

func TestBroker_CloseClosesAll(t *testing.T) {
	br := newBroker()
	a := br.subscribe(1)
	b := br.subscribe(1)
	br.close()

	for _, ch := range []chan Event{a, b} {
		if _, ok := <-ch; ok {
			t.Error("channel not closed")
		}
	}

	// Subscribing after close yields an already-closed channel.
	c := br.subscribe(1)
	if _, ok := <-c; ok {
		t.Error("post-close subscription not closed")
	}
}
