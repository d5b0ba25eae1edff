// Package pacer is a shell for driving an external hardware simulation engine:
// loading machine scripts, starting/pausing/resetting execution, issuing
// monitor commands, and watching memory addresses.
//
// # Architecture Overview
//
// The engine only exposes a synchronous, potentially slow API. Everything in
// this module exists to keep a single-threaded UI responsive in front of it:
//
//	pacer/
//	├── engine/    Engine capability contract, typed memory values,
//	│              mock and replay backends
//	├── dispatch/  Bounded worker pool running blocking engine calls,
//	│              delivering results as futures
//	├── bridge/    The orchestration core: simulation state machine,
//	│              memory watch registry, polling loop, log streams.
//	│              All state lives on one run-loop goroutine; worker
//	│              results are marshaled back before they are applied.
//	├── config/    YAML file + environment configuration
//	├── errors/    Structured error types (phase × kind)
//	└── cmd/pacer/ Interactive TUI and headless runner
//
// # Quick Start
//
//	eng := engine.NewMock()
//	br, err := bridge.New(eng)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer br.Close()
//
//	events := br.Subscribe(16)
//	br.RequestLoadScript("boot.resc")
//	br.RequestStart()
//	br.AddWatch("0x80001000", "pc", engine.Uint32)
//
//	for ev := range events {
//	    // state changes, log lines, watch value updates
//	}
//
// Every Request* method returns immediately; acceptance is validated
// synchronously (busy, invalid transition, malformed input) and the engine
// call itself completes asynchronously, reported through the event stream.
//
// # Thread Safety
//
// Bridge is safe for concurrent use; all of its internal state is confined
// to its run loop. Engine implementations must tolerate concurrent calls, or
// the dispatcher must be configured with a single worker (config
// `workers: 1`) so every call is naturally serialized.
package pacer
