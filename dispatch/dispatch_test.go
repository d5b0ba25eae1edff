package dispatch

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/pacerlabs/pacer/errors"
)

func TestSubmit_DeliversValue(t *testing.T) {
	d := New(2)
	defer d.Close()

	fut := d.Submit("add", func(ctx context.Context) (any, error) {
		return 42, nil
	})
	v, err := fut.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if v.(int) != 42 {
		t.Errorf("value = %v, want 42", v)
	}
}

func TestSubmit_DeliversError(t *testing.T) {
	d := New(1)
	defer d.Close()

	boom := stderrors.New("boom")
	fut := d.Submit("fail", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	if _, err := fut.Wait(context.Background()); !stderrors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestSubmit_CapturesPanic(t *testing.T) {
	d := New(1)
	defer d.Close()

	fut := d.Submit("explode", func(ctx context.Context) (any, error) {
		panic("kaboom")
	})
	_, err := fut.Wait(context.Background())
	if err == nil {
		t.Fatal("expected error from panicking work")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindEngineFailure}) {
		t.Errorf("wrong error category: %v", err)
	}

	// The worker survives the panic.
	fut = d.Submit("after", func(ctx context.Context) (any, error) { return "ok", nil })
	if v, err := fut.Wait(context.Background()); err != nil || v.(string) != "ok" {
		t.Errorf("worker dead after panic: %v %v", v, err)
	}
}

func TestSubmit_NoOrderingAcrossWorkers(t *testing.T) {
	d := New(2)
	defer d.Close()

	gate := make(chan struct{})
	slow := d.Submit("slow", func(ctx context.Context) (any, error) {
		<-gate
		return "slow", nil
	})
	fast := d.Submit("fast", func(ctx context.Context) (any, error) {
		return "fast", nil
	})

	// The second submission completes while the first is still blocked.
	if _, err := fast.Wait(context.Background()); err != nil {
		t.Fatalf("fast: %v", err)
	}
	select {
	case <-slow.Done():
		t.Fatal("slow completed before gate opened")
	default:
	}
	close(gate)
	if _, err := slow.Wait(context.Background()); err != nil {
		t.Fatalf("slow: %v", err)
	}
}

func TestTimeout_CompletesEarlyAndDiscardsResult(t *testing.T) {
	d := New(1, WithTimeout(20*time.Millisecond))
	defer d.Close()

	release := make(chan struct{})
	fut := d.Submit("hung", func(ctx context.Context) (any, error) {
		<-release
		return "late", nil
	})

	_, err := fut.Wait(context.Background())
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindTimeout}) {
		t.Fatalf("err = %v, want dispatch timeout", err)
	}

	// Let the hung work finish; its late result must not override the
	// timeout outcome.
	close(release)
	time.Sleep(10 * time.Millisecond)
	if v, err := fut.Result(); v != nil || !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindTimeout}) {
		t.Errorf("late result leaked through: %v %v", v, err)
	}
}

func TestSubmit_AfterCloseFailsFast(t *testing.T) {
	d := New(1)
	d.Close()

	fut := d.Submit("late", func(ctx context.Context) (any, error) { return nil, nil })
	_, err := fut.Wait(context.Background())
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseShutdown, Kind: errors.KindClosed}) {
		t.Errorf("err = %v, want closed", err)
	}
}

func TestClose_WaitsForInFlight(t *testing.T) {
	d := New(2)

	var mu sync.Mutex
	finished := 0
	for i := 0; i < 5; i++ {
		d.Submit("work", func(ctx context.Context) (any, error) {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			finished++
			mu.Unlock()
			return nil, nil
		})
	}
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if finished != 5 {
		t.Errorf("finished = %d, want 5 (Close must drain the queue)", finished)
	}
}

func TestSubmit_QueueFullFailsFast(t *testing.T) {
	d := New(1, WithQueueDepth(1))
	defer d.Close()

	gate := make(chan struct{})
	defer close(gate)

	block := func(ctx context.Context) (any, error) {
		<-gate
		return nil, nil
	}
	first := d.Submit("a", block)

	// Wait for the worker to pick up the first task so the single queue
	// slot is free, fill it, then overflow.
	deadline := time.After(time.Second)
	for {
		d.mu.Lock()
		pending := len(d.tasks)
		d.mu.Unlock()
		if pending == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("worker never picked up first task")
		case <-time.After(time.Millisecond):
		}
	}
	d.Submit("b", block)
	third := d.Submit("c", block)

	_, err := third.Wait(context.Background())
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindBusy}) {
		t.Errorf("err = %v, want dispatch busy", err)
	}
	_ = first
}
