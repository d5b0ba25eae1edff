package bridge

import "fmt"

// State is the simulation lifecycle state. Exactly one value is current at
// any time; it is owned by the bridge run loop and mutated only there, in
// response to completed engine calls.
type State int

const (
	StateIdle State = iota
	StateLoaded
	StateRunning
	StatePaused
	StateStopped
	StateError
)

var stateNames = [...]string{
	StateIdle:    "Idle",
	StateLoaded:  "Loaded",
	StateRunning: "Running",
	StatePaused:  "Paused",
	StateStopped: "Stopped",
	StateError:   "Error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// controlOp identifies a state-machine-driving engine call. At most one
// control operation is in flight at a time.
type controlOp string

const (
	opLoadScript controlOp = "load_script"
	opStart      controlOp = "start"
	opPause      controlOp = "pause"
	opReset      controlOp = "reset"
)

// transitions maps a control operation to the states it is legal in and the
// state reached when the engine call succeeds. A failed call drives any
// state to StateError; reset from StateError is the only way back out.
var transitions = map[controlOp]map[State]State{
	opLoadScript: {
		StateIdle: StateLoaded,
	},
	opStart: {
		StateLoaded: StateRunning,
		StatePaused: StateRunning,
	},
	opPause: {
		StateRunning: StatePaused,
	},
	opReset: {
		StateLoaded:  StateIdle,
		StateRunning: StateIdle,
		StatePaused:  StateIdle,
		StateError:   StateIdle,
	},
}

// successState returns the state reached when op succeeds from cur, and
// whether op is legal from cur at all.
func successState(cur State, op controlOp) (State, bool) {
	next, ok := transitions[op][cur]
	return next, ok
}
