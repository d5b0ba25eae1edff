package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pacerlabs/pacer/errors"
)

// Mock is an in-process engine stand-in. It mimics the timing profile of a
// real backend (short blocking sleeps per operation) and serves canned
// memory and monitor responses. Safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	running bool
	loaded  string

	memory   map[uint64]uint64
	memFail  map[uint64]string
	commands map[string]string
	sink     func(string)

	controlLatency time.Duration
	readLatency    time.Duration
}

// NewMock creates a mock engine with the original backend's timing profile.
func NewMock() *Mock {
	return &Mock{
		memory:         make(map[uint64]uint64),
		memFail:        make(map[uint64]string),
		commands:       make(map[string]string),
		controlLatency: 200 * time.Millisecond,
		readLatency:    10 * time.Millisecond,
	}
}

// WithLatency overrides the simulated control and read latencies.
// Tests pass zero to make the mock immediate.
func (m *Mock) WithLatency(control, read time.Duration) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controlLatency = control
	m.readLatency = read
	return m
}

// SetMemory installs the raw bits served for reads at addr and clears any
// failure previously injected there.
func (m *Mock) SetMemory(addr, bits uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memory[addr] = bits
	delete(m.memFail, addr)
}

// FailAddress makes reads at addr fail with an unmapped-style error.
func (m *Mock) FailAddress(addr uint64, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memFail[addr] = detail
}

// SetCommandOutput installs the monitor output for command.
func (m *Mock) SetCommandOutput(command, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[command] = output
}

// SetLogSink implements LogStreamer.
func (m *Mock) SetLogSink(sink func(string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

func (m *Mock) emit(line string) {
	m.mu.Lock()
	sink := m.sink
	m.mu.Unlock()
	if sink != nil {
		sink(line)
	}
}

func (m *Mock) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// LoadScript implements Engine. An empty path is rejected the way the real
// backend rejects an unreadable script.
func (m *Mock) LoadScript(ctx context.Context, path string) error {
	Logger().Info("loading script", zap.String("path", path))
	m.sleep(ctx, m.controlLatency)
	if strings.TrimSpace(path) == "" {
		return errors.New(errors.PhaseControl, errors.KindEngineFailure).
			Op("load_script").
			Detail("invalid path").
			Build()
	}
	m.mu.Lock()
	m.loaded = path
	m.running = false
	m.mu.Unlock()
	m.emit("script loaded: " + path)
	return nil
}

// Start implements Engine.
func (m *Mock) Start(ctx context.Context) error {
	Logger().Info("starting simulation")
	m.sleep(ctx, m.controlLatency)
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()
	m.emit("simulation started")
	return nil
}

// Pause implements Engine.
func (m *Mock) Pause(ctx context.Context) error {
	Logger().Info("pausing simulation")
	m.sleep(ctx, m.controlLatency/2)
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	m.emit("simulation paused")
	return nil
}

// Reset implements Engine.
func (m *Mock) Reset(ctx context.Context) error {
	Logger().Info("resetting simulation")
	m.sleep(ctx, m.controlLatency)
	m.mu.Lock()
	m.running = false
	m.loaded = ""
	m.mu.Unlock()
	m.emit("simulation reset")
	return nil
}

// ReadMemory implements Engine. Addresses without installed bits read as
// 0xDEADBEEF, matching the original mock backend.
func (m *Mock) ReadMemory(ctx context.Context, addr uint64, typ DataType) (Value, error) {
	m.sleep(ctx, m.readLatency)
	m.mu.Lock()
	detail, failed := m.memFail[addr]
	bits, ok := m.memory[addr]
	m.mu.Unlock()
	if failed {
		return Value{}, errors.New(errors.PhaseRead, errors.KindUnmapped).
			Detail("%s", detail).
			Build()
	}
	if !ok {
		bits = 0xDEADBEEF
	}
	return NewValue(typ, bits), nil
}

// MonitorCommand implements Engine.
func (m *Mock) MonitorCommand(ctx context.Context, command string) (string, error) {
	m.sleep(ctx, m.readLatency)
	command = strings.TrimSpace(command)
	if command == "" {
		return "", errors.New(errors.PhaseMonitor, errors.KindEngineFailure).
			Op("monitor_command").
			Detail("empty command").
			Build()
	}
	m.mu.Lock()
	out, ok := m.commands[command]
	m.mu.Unlock()
	if !ok {
		return "unknown command: " + command, nil
	}
	return out, nil
}

// IsRunning implements Engine.
func (m *Mock) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
