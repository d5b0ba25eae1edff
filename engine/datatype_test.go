package engine

import (
	"math"
	"testing"
)

func TestDataType_Width(t *testing.T) {
	tests := []struct {
		typ   DataType
		width int
	}{
		{Uint8, 1}, {Int8, 1},
		{Uint16, 2}, {Int16, 2},
		{Uint32, 4}, {Int32, 4}, {Float32, 4},
		{Uint64, 8}, {Int64, 8}, {Float64, 8},
	}
	for _, tt := range tests {
		if got := tt.typ.Width(); got != tt.width {
			t.Errorf("%s.Width() = %d, want %d", tt.typ, got, tt.width)
		}
	}
}

func TestParseDataType(t *testing.T) {
	for typ, name := range dataTypeNames {
		got, err := ParseDataType(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		if got != DataType(typ) {
			t.Errorf("ParseDataType(%q) = %v, want %v", name, got, DataType(typ))
		}
	}
	if _, err := ParseDataType("word"); err == nil {
		t.Error("expected error for unknown type name")
	}
}

func TestValue_SignExtension(t *testing.T) {
	v := NewValue(Int8, 0xFF)
	if v.Int() != -1 {
		t.Errorf("int8 0xFF = %d, want -1", v.Int())
	}
	v = NewValue(Int16, 0x8000)
	if v.Int() != -32768 {
		t.Errorf("int16 0x8000 = %d, want -32768", v.Int())
	}
	v = NewValue(Uint16, 0x8000)
	if v.Uint() != 0x8000 {
		t.Errorf("uint16 0x8000 = %d, want 32768", v.Uint())
	}
}

func TestNewValue_MasksToWidth(t *testing.T) {
	v := NewValue(Uint8, 0x1234)
	if v.Bits != 0x34 {
		t.Errorf("uint8 bits = 0x%X, want 0x34", v.Bits)
	}
	v = NewValue(Uint64, 0xFFFFFFFFFFFFFFFF)
	if v.Bits != 0xFFFFFFFFFFFFFFFF {
		t.Errorf("uint64 bits truncated: 0x%X", v.Bits)
	}
}

func TestValue_Float(t *testing.T) {
	v := NewValue(Float32, uint64(math.Float32bits(1.5)))
	if v.Float() != 1.5 {
		t.Errorf("float32 = %g, want 1.5", v.Float())
	}
	v = NewValue(Float64, math.Float64bits(-2.25))
	if v.Float() != -2.25 {
		t.Errorf("float64 = %g, want -2.25", v.Float())
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewValue(Uint32, 0x1000A4), "0x1000A4"},
		{NewValue(Int8, 0xFF), "-0x1"},
		{NewValue(Int32, 0x10), "0x10"},
		{NewValue(Float64, math.Float64bits(0.5)), "0.5"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0x80001000", 0x80001000, false},
		{"0X10", 0x10, false},
		{" 0xdeadBEEF ", 0xDEADBEEF, false},
		{"80001000", 0, true},
		{"0x", 0, true},
		{"0xZZ", 0, true},
		{"", 0, true},
		{"0x1ffffffffffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAddress(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAddress(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAddress(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAddress(%q) = 0x%X, want 0x%X", tt.in, got, tt.want)
		}
	}
}
