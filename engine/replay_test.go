package engine

import (
	"context"
	"testing"
)

const testSession = `
name: demo
scripts:
  - boot.resc
memory:
  "0x80001000": ["0x1000A4", "unmapped", "0x1000A8"]
monitor:
  help: "Available commands: help, sysbus"
log:
  - "cpu0: starting"
  - "uart0: attached"
`

func newTestReplay(t *testing.T) *Replay {
	t.Helper()
	s, err := ParseSession([]byte(testSession))
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}
	return NewReplay(s)
}

func TestParseSession_RejectsBadFixture(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", ":\n  - ["},
		{"bad address", "memory:\n  \"80001000\": [\"0x1\"]"},
		{"bad value", "memory:\n  \"0x10\": [\"zap\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSession([]byte(tt.data)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestReplay_ScriptGating(t *testing.T) {
	ctx := context.Background()
	r := newTestReplay(t)

	if err := r.LoadScript(ctx, "other.resc"); err == nil {
		t.Fatal("expected error for script outside session")
	}
	if err := r.LoadScript(ctx, "boot.resc"); err != nil {
		t.Fatalf("load recorded script: %v", err)
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !r.IsRunning() {
		t.Fatal("not running after start")
	}
}

func TestReplay_StartRequiresLoad(t *testing.T) {
	r := newTestReplay(t)
	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected error starting without a loaded script")
	}
}

func TestReplay_MemorySequence(t *testing.T) {
	ctx := context.Background()
	r := newTestReplay(t)
	if err := r.LoadScript(ctx, "boot.resc"); err != nil {
		t.Fatalf("load: %v", err)
	}

	v, err := r.ReadMemory(ctx, 0x80001000, Uint32)
	if err != nil {
		t.Fatalf("read 1: %v", err)
	}
	if v.Uint() != 0x1000A4 {
		t.Errorf("read 1 = %s, want 0x1000A4", v)
	}

	if _, err := r.ReadMemory(ctx, 0x80001000, Uint32); err == nil {
		t.Fatal("read 2: expected unmapped error")
	}

	// Last entry repeats once the sequence is exhausted.
	for i := 0; i < 3; i++ {
		v, err = r.ReadMemory(ctx, 0x80001000, Uint32)
		if err != nil {
			t.Fatalf("read %d: %v", i+3, err)
		}
		if v.Uint() != 0x1000A8 {
			t.Errorf("read %d = %s, want 0x1000A8", i+3, v)
		}
	}

	if _, err := r.ReadMemory(ctx, 0x9000, Uint32); err == nil {
		t.Fatal("expected unmapped error for unrecorded address")
	}
}

func TestReplay_Monitor(t *testing.T) {
	ctx := context.Background()
	r := newTestReplay(t)

	out, err := r.MonitorCommand(ctx, "help")
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if out != "Available commands: help, sysbus" {
		t.Errorf("output = %q", out)
	}
	if _, err := r.MonitorCommand(ctx, "quit"); err == nil {
		t.Fatal("expected error for unrecorded command")
	}
}

func TestReplay_LogStreamedOnFirstStart(t *testing.T) {
	ctx := context.Background()
	r := newTestReplay(t)

	var lines []string
	r.SetLogSink(func(line string) { lines = append(lines, line) })

	if err := r.LoadScript(ctx, "boot.resc"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(lines) != 2 || lines[0] != "cpu0: starting" {
		t.Fatalf("log lines = %v", lines)
	}
}

func TestReplay_ResetRewindsSequences(t *testing.T) {
	ctx := context.Background()
	r := newTestReplay(t)
	if err := r.LoadScript(ctx, "boot.resc"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := r.ReadMemory(ctx, 0x80001000, Uint32); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := r.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := r.LoadScript(ctx, "boot.resc"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	v, err := r.ReadMemory(ctx, 0x80001000, Uint32)
	if err != nil {
		t.Fatalf("read after reset: %v", err)
	}
	if v.Uint() != 0x1000A4 {
		t.Errorf("sequence did not rewind: %s", v)
	}
}
