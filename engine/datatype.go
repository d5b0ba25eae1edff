package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/pacerlabs/pacer/errors"
)

// DataType identifies the width and interpretation of a memory read.
type DataType int

const (
	Uint8 DataType = iota
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
)

var dataTypeNames = [...]string{
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
}

func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return fmt.Sprintf("DataType(%d)", int(t))
	}
	return dataTypeNames[t]
}

// Valid reports whether t is one of the defined data types.
func (t DataType) Valid() bool {
	return t >= Uint8 && t <= Float64
}

// Width returns the byte width of the type.
func (t DataType) Width() int {
	switch t {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Uint64, Int64, Float64:
		return 8
	default:
		return 0
	}
}

// Signed reports whether the type is a signed integer.
func (t DataType) Signed() bool {
	return t >= Int8 && t <= Int64
}

// Float reports whether the type is a floating point type.
func (t DataType) Float() bool {
	return t == Float32 || t == Float64
}

// ParseDataType parses a type name such as "uint32".
func ParseDataType(s string) (DataType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range dataTypeNames {
		if n == name {
			return DataType(t), nil
		}
	}
	return 0, errors.New(errors.PhaseValidate, errors.KindInvalidType).
		Detail("unknown data type %q", s).
		Build()
}

// Value is a typed scalar read from simulated memory. Bits holds the raw
// bit pattern truncated to the width of Type.
type Value struct {
	Type DataType
	Bits uint64
}

// NewValue masks bits to the width of typ and returns the value.
func NewValue(typ DataType, bits uint64) Value {
	if w := typ.Width(); w > 0 && w < 8 {
		bits &= (1 << (8 * uint(w))) - 1
	}
	return Value{Type: typ, Bits: bits}
}

// Uint returns the value as an unsigned integer.
func (v Value) Uint() uint64 {
	return v.Bits
}

// Int returns the value sign-extended to 64 bits.
func (v Value) Int() int64 {
	w := v.Type.Width()
	if w == 0 || w == 8 {
		return int64(v.Bits)
	}
	shift := uint(64 - 8*w)
	return int64(v.Bits<<shift) >> shift
}

// Float returns the value reinterpreted as a floating point number.
func (v Value) Float() float64 {
	switch v.Type {
	case Float32:
		return float64(math.Float32frombits(uint32(v.Bits)))
	case Float64:
		return math.Float64frombits(v.Bits)
	default:
		if v.Type.Signed() {
			return float64(v.Int())
		}
		return float64(v.Bits)
	}
}

// String renders integers as 0x-prefixed hex and floats in decimal.
func (v Value) String() string {
	switch {
	case v.Type.Float():
		return fmt.Sprintf("%g", v.Float())
	case v.Type.Signed() && v.Int() < 0:
		return fmt.Sprintf("-0x%X", -v.Int())
	default:
		return fmt.Sprintf("0x%X", v.Bits)
	}
}
