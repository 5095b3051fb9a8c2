package processing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parameter binds one store device to one meter register with a processing
// mode.
type Parameter struct {
	// Idx is the store device receiving the processed value.
	Idx int

	// Register is the meter register to read.
	Register uint16

	// Mode selects the processing applied before the push.
	Mode Mode

	// CompareIdx is the comparison device for the modes that need one.
	CompareIdx int
}

func (p Parameter) String() string {
	if p.Mode.RequiresCompare() {
		return fmt.Sprintf("%d:0x%04X:%d:%d", p.Idx, p.Register, int(p.Mode), p.CompareIdx)
	}
	return fmt.Sprintf("%d:0x%04X:%d", p.Idx, p.Register, int(p.Mode))
}

// ParseParameter parses the "idx:register:mode[:compareIdx]" form. Numbers
// accept base prefixes, so registers can be written as 0x003C or 60.
func ParseParameter(s string) (Parameter, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return Parameter{}, fmt.Errorf(
			"invalid parameter %q: want idx:register:mode or idx:register:mode:compareIdx", s)
	}

	idx, err := strconv.ParseInt(parts[0], 0, 32)
	if err != nil {
		return Parameter{}, fmt.Errorf("invalid parameter %q: idx %q is not a number", s, parts[0])
	}
	register, err := strconv.ParseUint(parts[1], 0, 16)
	if err != nil {
		return Parameter{}, fmt.Errorf("invalid parameter %q: register %q is not a 16-bit number", s, parts[1])
	}
	mode, err := parseMode(parts[2])
	if err != nil {
		return Parameter{}, fmt.Errorf("invalid parameter %q: %v", s, err)
	}

	param := Parameter{
		Idx:      int(idx),
		Register: uint16(register),
		Mode:     mode,
	}

	if len(parts) == 4 {
		compare, err := strconv.ParseInt(parts[3], 0, 32)
		if err != nil {
			return Parameter{}, fmt.Errorf("invalid parameter %q: compareIdx %q is not a number", s, parts[3])
		}
		param.CompareIdx = int(compare)
	} else if mode.RequiresCompare() {
		return Parameter{}, fmt.Errorf("invalid parameter %q: mode %s requires a comparison device idx", s, mode)
	}

	return param, nil
}

// ParseParameters parses a list of parameter strings, failing on the first
// invalid entry.
func ParseParameters(args []string) ([]Parameter, error) {
	params := make([]Parameter, 0, len(args))
	for _, arg := range args {
		param, err := ParseParameter(arg)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}

// Registers returns the distinct registers the parameters reference, sorted.
// A processing cycle reads each register once and fans the value out to
// every parameter bound to it.
func Registers(params []Parameter) []uint16 {
	seen := make(map[uint16]bool, len(params))
	var out []uint16
	for _, param := range params {
		if !seen[param.Register] {
			seen[param.Register] = true
			out = append(out, param.Register)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ForRegister filters the parameters bound to a register, preserving order.
func ForRegister(params []Parameter, register uint16) []Parameter {
	var out []Parameter
	for _, param := range params {
		if param.Register == register {
			out = append(out, param)
		}
	}
	return out
}
