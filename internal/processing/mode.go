package processing

import (
	"fmt"
	"strconv"
)

// Mode selects how a meter reading combines with store values before the
// push. The numeric values are part of the parameter wire format.
type Mode int

const (
	// ModeOverwrite pushes the reading as-is.
	ModeOverwrite Mode = 0

	// ModeSubtract pushes the reading minus the comparison device's value.
	ModeSubtract Mode = 1

	// ModeAdd pushes the target device's stored value plus the delta
	// between the reading and the comparison device's value.
	ModeAdd Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeOverwrite:
		return "overwrite"
	case ModeSubtract:
		return "subtract"
	case ModeAdd:
		return "add"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// RequiresCompare reports whether the mode reads a comparison device.
func (m Mode) RequiresCompare() bool {
	return m == ModeSubtract || m == ModeAdd
}

func parseMode(s string) (Mode, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("mode %q is not a number", s)
	}
	mode := Mode(n)
	switch mode {
	case ModeOverwrite, ModeSubtract, ModeAdd:
		return mode, nil
	}
	return 0, fmt.Errorf("unknown mode %d (0=overwrite, 1=subtract, 2=add)", n)
}
