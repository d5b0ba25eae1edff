package engine

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pacerlabs/pacer/errors"
)

// Session is a recorded engine session loaded from a YAML fixture. It is the
// data behind the Replay backend.
type Session struct {
	// Name identifies the session in logs.
	Name string `yaml:"name"`
	// Scripts lists the script paths the session accepts. Empty means any
	// non-empty path loads.
	Scripts []string `yaml:"scripts"`
	// Memory maps a 0x-prefixed address to the sequence of read results.
	// Each entry is either a 0x-prefixed value or the word "unmapped"; the
	// last entry repeats once the sequence is exhausted.
	Memory map[string][]string `yaml:"memory"`
	// Monitor maps a command to its recorded output.
	Monitor map[string]string `yaml:"monitor"`
	// Log lists lines streamed to the log sink when the session starts.
	Log []string `yaml:"log"`
}

// ParseSession decodes a YAML session fixture.
func ParseSession(data []byte) (*Session, error) {
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "parse session fixture")
	}
	for addr, seq := range s.Memory {
		if _, err := ParseAddress(addr); err != nil {
			return nil, err
		}
		for _, entry := range seq {
			if entry == "unmapped" {
				continue
			}
			if _, err := parseBits(entry); err != nil {
				return nil, err
			}
		}
	}
	return &s, nil
}

// LoadSession reads and decodes a YAML session fixture from disk.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "read session fixture")
	}
	return ParseSession(data)
}

func parseBits(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ParseAddress(s)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.InvalidInput("memory entry " + strconv.Quote(s))
	}
	return v, nil
}

// Replay serves a recorded Session deterministically. It is the second
// interchangeable backend: same contract as Mock, but every response is
// driven by fixture data, which makes it suitable for scripted demos and
// integration tests. Safe for concurrent use.
type Replay struct {
	mu      sync.Mutex
	session *Session
	cursor  map[uint64]int
	running bool
	loaded  bool
	sink    func(string)
}

// NewReplay creates a replay engine over session.
func NewReplay(session *Session) *Replay {
	return &Replay{
		session: session,
		cursor:  make(map[uint64]int),
	}
}

// SetLogSink implements LogStreamer.
func (r *Replay) SetLogSink(sink func(string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink = sink
}

// LoadScript implements Engine.
func (r *Replay) LoadScript(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New(errors.PhaseControl, errors.KindEngineFailure).
			Op("load_script").
			Detail("invalid path").
			Build()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.session.Scripts) > 0 {
		ok := false
		for _, s := range r.session.Scripts {
			if s == path {
				ok = true
				break
			}
		}
		if !ok {
			return errors.New(errors.PhaseControl, errors.KindEngineFailure).
				Op("load_script").
				Detail("script %q not in session %q", path, r.session.Name).
				Build()
		}
	}
	r.loaded = true
	r.running = false
	return nil
}

// Start implements Engine. Recorded log lines are streamed on the first
// start of the session.
func (r *Replay) Start(ctx context.Context) error {
	r.mu.Lock()
	if !r.loaded {
		r.mu.Unlock()
		return errors.New(errors.PhaseControl, errors.KindEngineFailure).
			Op("start").
			Detail("no script loaded").
			Build()
	}
	firstStart := !r.running && len(r.cursor) == 0
	r.running = true
	sink := r.sink
	lines := r.session.Log
	r.mu.Unlock()

	if firstStart && sink != nil {
		for _, line := range lines {
			sink(line)
		}
	}
	return nil
}

// Pause implements Engine.
func (r *Replay) Pause(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	return nil
}

// Reset implements Engine.
func (r *Replay) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.loaded = false
	r.cursor = make(map[uint64]int)
	return nil
}

// ReadMemory implements Engine, advancing the recorded sequence for addr.
func (r *Replay) ReadMemory(ctx context.Context, addr uint64, typ DataType) (Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var seq []string
	for key, entries := range r.session.Memory {
		a, err := ParseAddress(key)
		if err == nil && a == addr {
			seq = entries
			break
		}
	}
	if len(seq) == 0 {
		return Value{}, errors.Unmapped(addr)
	}

	i := r.cursor[addr]
	if i >= len(seq) {
		i = len(seq) - 1
	} else {
		r.cursor[addr] = i + 1
	}

	entry := seq[i]
	if entry == "unmapped" {
		return Value{}, errors.Unmapped(addr)
	}
	bits, err := parseBits(entry)
	if err != nil {
		return Value{}, err
	}
	return NewValue(typ, bits), nil
}

// MonitorCommand implements Engine.
func (r *Replay) MonitorCommand(ctx context.Context, command string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.session.Monitor[strings.TrimSpace(command)]
	if !ok {
		return "", errors.New(errors.PhaseMonitor, errors.KindEngineFailure).
			Op("monitor_command").
			Detail("command %q not recorded in session %q", command, r.session.Name).
			Build()
	}
	return out, nil
}

// IsRunning implements Engine.
func (r *Replay) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
