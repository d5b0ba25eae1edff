package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in request processing the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // input validation, before any engine call
	PhaseControl  Phase = "control"  // load/start/pause/reset
	PhaseRead     Phase = "read"     // memory watch reads
	PhaseMonitor  Phase = "monitor"  // monitor command execution
	PhaseDispatch Phase = "dispatch" // worker pool submission
	PhaseShutdown Phase = "shutdown" // bridge teardown
)

// Kind categorizes the error
type Kind string

const (
	KindBusy              Kind = "busy"               // another control operation is pending
	KindInvalidTransition Kind = "invalid_transition" // command illegal from current state
	KindInvalidAddress    Kind = "invalid_address"
	KindInvalidType       Kind = "invalid_type"
	KindInvalidInput      Kind = "invalid_input"
	KindDuplicateWatch    Kind = "duplicate_watch"
	KindNotFound          Kind = "not_found"
	KindUnmapped          Kind = "unmapped"
	KindEngineFailure     Kind = "engine_failure"
	KindTimeout           Kind = "timeout"
	KindClosed            Kind = "closed"
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Busy creates a busy error: op was rejected because another control
// operation is already in flight
func Busy(op, pending string) *Error {
	return &Error{
		Phase:  PhaseControl,
		Kind:   KindBusy,
		Op:     op,
		Detail: fmt.Sprintf("%s still pending", pending),
	}
}

// InvalidTransition creates an invalid transition error
func InvalidTransition(op, state string) *Error {
	return &Error{
		Phase:  PhaseControl,
		Kind:   KindInvalidTransition,
		Op:     op,
		Detail: fmt.Sprintf("not allowed in state %s", state),
	}
}

// InvalidAddress creates an address validation error
func InvalidAddress(input string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidAddress,
		Detail: fmt.Sprintf("address %q must be 0x-prefixed hex", input),
	}
}

// InvalidInput creates an input validation error
func InvalidInput(detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// DuplicateWatch creates a duplicate watch name error
func DuplicateWatch(name string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindDuplicateWatch,
		Detail: fmt.Sprintf("watch %q already registered", name),
	}
}

// NotFound creates a not-found error
func NotFound(what, name string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unmapped creates an unmapped address error
func Unmapped(addr uint64) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindUnmapped,
		Detail: fmt.Sprintf("address 0x%X is not mapped", addr),
	}
}

// EngineFailure wraps a failed engine call
func EngineFailure(phase Phase, op string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindEngineFailure,
		Op:    op,
		Cause: cause,
	}
}

// Timeout creates a per-call timeout error; the underlying engine call may
// still be running and its eventual result is discarded
func Timeout(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTimeout,
		Op:     op,
		Detail: "engine call exceeded configured timeout",
	}
}

// Closed creates a closed error for requests after shutdown
func Closed(op string) *Error {
	return &Error{
		Phase:  PhaseShutdown,
		Kind:   KindClosed,
		Op:     op,
		Detail: "bridge is shut down",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
