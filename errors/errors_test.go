package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseControl,
				Kind:   KindEngineFailure,
				Op:     "start",
				Detail: "engine rejected start",
			},
			contains: []string{"[control]", "engine_failure", "start", "engine rejected start"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseValidate,
				Kind:  KindInvalidAddress,
			},
			contains: []string{"[validate]", "invalid_address"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseMonitor,
				Kind:   KindEngineFailure,
				Detail: "command failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[monitor]", "engine_failure", "command failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseControl,
		Kind:  KindEngineFailure,
		Cause: cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause through Unwrap")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseControl,
		Kind:  KindBusy,
		Op:    "start",
	}

	if !err.Is(&Error{Phase: PhaseControl, Kind: KindBusy}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseMonitor, Kind: KindBusy}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseControl, Kind: KindClosed}) {
		t.Error("Is should not match different kind")
	}
	if err.Is(errors.New("plain")) {
		t.Error("Is should not match non-structured error")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseRead, KindUnmapped).
		Op("read_memory").
		Cause(cause).
		Detail("address 0x%X", uint64(0x1000)).
		Build()

	if err.Phase != PhaseRead || err.Kind != KindUnmapped {
		t.Errorf("builder lost phase/kind: %v/%v", err.Phase, err.Kind)
	}
	if err.Op != "read_memory" {
		t.Errorf("builder lost op: %q", err.Op)
	}
	if err.Detail != "address 0x1000" {
		t.Errorf("builder detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("builder lost cause")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"busy", Busy("start", "load_script"), PhaseControl, KindBusy},
		{"invalid transition", InvalidTransition("pause", "Idle"), PhaseControl, KindInvalidTransition},
		{"invalid address", InvalidAddress("80001000"), PhaseValidate, KindInvalidAddress},
		{"invalid input", InvalidInput("empty script path"), PhaseValidate, KindInvalidInput},
		{"duplicate watch", DuplicateWatch("pc"), PhaseValidate, KindDuplicateWatch},
		{"not found", NotFound("watch", "sp"), PhaseValidate, KindNotFound},
		{"unmapped", Unmapped(0xDEAD), PhaseRead, KindUnmapped},
		{"engine failure", EngineFailure(PhaseControl, "reset", errors.New("x")), PhaseControl, KindEngineFailure},
		{"timeout", Timeout(PhaseMonitor, "help"), PhaseMonitor, KindTimeout},
		{"closed", Closed("start"), PhaseShutdown, KindClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}
