// Package bridge is the asynchronous orchestration core between a
// single-threaded UI and the blocking simulation engine.
//
// # Concurrency Model
//
// The bridge runs one event-loop goroutine that owns every piece of mutable
// state: the simulation state machine, the pending-control marker, the
// memory watch registry, and the two log streams. Blocking engine calls run
// on the dispatch package's worker pool; their results are marshaled back
// onto the loop before they touch any state. No locks guard bridge state;
// confinement replaces them.
//
// From the caller's perspective every operation is non-blocking: Request*
// methods validate synchronously (malformed input, busy, illegal
// transition) and return, and the engine call's outcome arrives later
// through the event stream.
//
// # State Machine
//
//	Idle ──load_script──▶ Loaded ──start──▶ Running ──pause──▶ Paused
//	                        │                  │                 │
//	                        └──────── reset ───┴──── start ──────┘
//
// A failed control call drives any state to Error; reset is the only way
// out of Error and always lands in Idle. At most one control operation is
// in flight at a time: a second request while one is pending is rejected
// with a busy error without touching the engine.
//
// # Monitor Commands
//
// Monitor commands bypass the control state machine (any state but Idle and
// Stopped) and are serialized by the bridge: one in flight, the rest
// queued, output appended to the monitor log in submission order.
//
// # Watch Polling
//
// Watches are polled on a fixed interval, only while Running. Reads run
// concurrently and independently; a watch whose previous read is still in
// flight is skipped for the cycle, so a stuck engine cannot pile up work.
// A failed read keeps the last value visible and records the error; the
// next successful read clears it.
//
// # Shutdown
//
// Close stops polling, lets in-flight engine calls finish on the worker
// pool, and discards their results. The state reports Stopped and every
// subsequent request fails with a closed error.
package bridge
