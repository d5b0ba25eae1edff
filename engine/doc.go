// Package engine defines the capability contract of the external hardware
// simulation engine and provides its substitute backends.
//
// # The Contract
//
// Engine is the sole gateway to the simulated hardware. Every method may
// block for an unbounded (typically sub-second to multi-second) duration and
// may fail; failures are always signaled through an error, never a sentinel
// value. Callers that need responsiveness must not invoke an Engine on their
// hot path; that is what the dispatch and bridge packages are for.
//
// # Backends
//
// Two interchangeable implementations ship with the module:
//
//	Mock   - in-process stand-in with configurable latencies and canned
//	         memory/monitor responses; the default backend
//	Replay - deterministic playback of a recorded session loaded from a
//	         YAML fixture
//
// The backend is selected once at startup; nothing downstream branches on
// which one is active.
//
// # Typed Memory Values
//
// ReadMemory returns a Value carrying the requested DataType and the raw
// bits at the address. DataType fixes the byte width and interpretation
// (signedness or floating point) of the read:
//
//	v, err := eng.ReadMemory(ctx, 0x80001000, engine.Uint32)
//	fmt.Println(v) // 0x1000A4
//
// # Log Streaming
//
// Backends that emit asynchronous log lines implement LogStreamer. The sink
// may be called from any goroutine; consumers are responsible for marshaling
// lines onto their own loop.
package engine
