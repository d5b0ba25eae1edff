package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/pacerlabs/pacer/errors"
)

// Engine is the synchronous capability contract of the simulation backend.
//
// Every method may block for an unbounded duration. Implementations must
// report failure via a non-nil error; a nil error means the operation fully
// took effect. Implementations are not required to tolerate concurrent
// calls; deployments with a serial-only backend run the dispatcher with a
// single worker instead.
type Engine interface {
	// LoadScript loads a machine script. The path is forwarded verbatim;
	// the engine owns its interpretation.
	LoadScript(ctx context.Context, path string) error

	// Start resumes execution of the loaded machine.
	Start(ctx context.Context) error

	// Pause halts execution, preserving machine state.
	Pause(ctx context.Context) error

	// Reset clears the emulation back to a blank state.
	Reset(ctx context.Context) error

	// ReadMemory reads a typed value at addr. The returned Value matches
	// the requested width and signedness, or an error is returned if the
	// address is unmapped.
	ReadMemory(ctx context.Context, addr uint64, typ DataType) (Value, error)

	// MonitorCommand executes a monitor command and returns its textual
	// output.
	MonitorCommand(ctx context.Context, command string) (string, error)

	// IsRunning reports whether the machine is currently executing.
	IsRunning() bool
}

// LogStreamer is implemented by backends that emit asynchronous log lines.
// The sink may be invoked from any goroutine.
type LogStreamer interface {
	SetLogSink(sink func(line string))
}

// ParseAddress parses a 0x-prefixed hexadecimal address string. Malformed
// input is rejected here so it never reaches an engine call.
func ParseAddress(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "0x")
	if !ok {
		rest, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || rest == "" {
		return 0, errors.InvalidAddress(s)
	}
	addr, err := strconv.ParseUint(rest, 16, 64)
	if err != nil {
		return 0, errors.InvalidAddress(s)
	}
	return addr, nil
}
