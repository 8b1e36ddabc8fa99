package wire

import (
	"strconv"
)

// ArgKind identifies which member of the Arg union is set.
type ArgKind uint8

const (
	// ArgString is a literal protocol token.
	ArgString ArgKind = 0

	// ArgInt is a signed integer argument.
	ArgInt ArgKind = 1

	// ArgFloat is a floating-point argument.
	ArgFloat ArgKind = 2

	// ArgBool is a boolean argument, serialized as "1"/"0".
	ArgBool ArgKind = 3

	// ArgSwitch is an enable/disable argument, serialized as "on"/"off".
	ArgSwitch ArgKind = 4
)

// String returns the argument kind name.
func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "STRING"
	case ArgInt:
		return "INT"
	case ArgFloat:
		return "FLOAT"
	case ArgBool:
		return "BOOL"
	case ArgSwitch:
		return "SWITCH"
	default:
		return "UNKNOWN"
	}
}

// Arg is one command argument. It is a tagged union with exactly one
// constructor per supported source type; Token is the single
// serialization rule for all of them. The zero value is the empty
// string argument.
type Arg struct {
	kind ArgKind
	str  string
	i    int64
	f    float64
	b    bool
}

// Str creates a literal token argument.
func Str(s string) Arg {
	return Arg{kind: ArgString, str: s}
}

// Int creates an integer argument.
func Int(v int64) Arg {
	return Arg{kind: ArgInt, i: v}
}

// Float creates a floating-point argument.
func Float(v float64) Arg {
	return Arg{kind: ArgFloat, f: v}
}

// Bool creates a boolean argument. True serializes to "1", false to "0".
func Bool(v bool) Arg {
	return Arg{kind: ArgBool, b: v}
}

// Switch creates an enable/disable argument. True serializes to the
// protocol token "on", false to "off" - never to a display name.
func Switch(enabled bool) Arg {
	return Arg{kind: ArgSwitch, b: enabled}
}

// Kind returns which union member is set.
func (a Arg) Kind() ArgKind {
	return a.kind
}

// Token returns the wire token for this argument.
func (a Arg) Token() string {
	switch a.kind {
	case ArgInt:
		return strconv.FormatInt(a.i, 10)
	case ArgFloat:
		return strconv.FormatFloat(a.f, 'g', -1, 64)
	case ArgBool:
		if a.b {
			return "1"
		}
		return "0"
	case ArgSwitch:
		if a.b {
			return SwitchOn
		}
		return SwitchOff
	default:
		return a.str
	}
}

// Switch tokens.
const (
	// SwitchOn is the wire token for an enabled switch.
	SwitchOn = "on"

	// SwitchOff is the wire token for a disabled switch.
	SwitchOff = "off"
)
