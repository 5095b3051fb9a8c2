package meter

import (
	"fmt"
	"time"
)

// Reading is one decoded register value.
type Reading struct {
	// Register is the register number the value came from.
	Register uint16

	// Name is the documented register name, empty for registers outside
	// the known table.
	Name string

	// Value is the decoded value with the exponent applied.
	Value float64

	// Unit is the printable unit, empty when the meter reported an unknown
	// unit code. UnitCode always carries the raw code.
	Unit     string
	UnitCode byte

	// At is when the response frame was decoded.
	At time.Time
}

func (r Reading) String() string {
	name := r.Name
	if name == "" {
		name = fmt.Sprintf("register 0x%04X", r.Register)
	}
	if r.Unit == "" {
		return fmt.Sprintf("%s: %v", name, r.Value)
	}
	return fmt.Sprintf("%s: %v %s", name, r.Value, r.Unit)
}
