package meter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Register numbers of the Multical 402, the commonly polled ones named for
// direct use. The _M/_Y suffixed entries are the meter's monthly and yearly
// logger extremes.
const (
	RegHeatEnergy uint16 = 0x003C // Heat Energy (E1)
	RegPower      uint16 = 0x0050
	RegTemp1      uint16 = 0x0056
	RegTemp2      uint16 = 0x0057
	RegTempDiff   uint16 = 0x0059
	RegFlow       uint16 = 0x004A
	RegVolume     uint16 = 0x0044
)

// registerNames maps every register the Multical 402 exposes over the optical
// interface to its documented name. Immutable after init.
var registerNames = map[uint16]string{
	RegHeatEnergy: "Heat Energy (E1)",
	RegPower:      "Power",
	RegTemp1:      "Temp1",
	RegTemp2:      "Temp2",
	RegTempDiff:   "Tempdiff",
	RegFlow:       "Flow",
	RegVolume:     "Volume",
	0x008D:        "MinFlow_M",
	0x008B:        "MaxFlow_M",
	0x008C:        "MinFlowDate_M",
	0x008A:        "MaxFlowDate_M",
	0x0091:        "MinPower_M",
	0x008F:        "MaxPower_M",
	0x0095:        "AvgTemp1_M",
	0x0096:        "AvgTemp2_M",
	0x0090:        "MinPowerDate_M",
	0x008E:        "MaxPowerDate_M",
	0x007E:        "MinFlow_Y",
	0x007C:        "MaxFlow_Y",
	0x007D:        "MinFlowDate_Y",
	0x007B:        "MaxFlowDate_Y",
	0x0082:        "MinPower_Y",
	0x0080:        "MaxPower_Y",
	0x0092:        "AvgTemp1_Y",
	0x0093:        "AvgTemp2_Y",
	0x0081:        "MinPowerDate_Y",
	0x007F:        "MaxPowerDate_Y",
	0x0061:        "Temp1xm3",
	0x006E:        "Temp2xm3",
	0x0071:        "Infoevent",
	0x03EC:        "HourCounter",
}

// Register pairs a register number with its documented name.
type Register struct {
	ID   uint16
	Name string
}

// RegisterName returns the documented name for a register number. The second
// return value is false for registers not in the table; such registers can
// still be read, they are just nameless.
func RegisterName(id uint16) (string, bool) {
	name, ok := registerNames[id]
	return name, ok
}

// Registers returns the full register table sorted by register number.
func Registers() []Register {
	out := make([]Register, 0, len(registerNames))
	for id, name := range registerNames {
		out = append(out, Register{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ParseRegister resolves a register given as a name from the known table
// (case-insensitive) or as a number in any base strconv understands, so
// "Heat Energy (E1)", 60 and 0x3C all name the same register.
func ParseRegister(s string) (uint16, error) {
	for id, name := range registerNames {
		if strings.EqualFold(name, s) {
			return id, nil
		}
	}
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown register %q: not a known name and not a number", s)
	}
	return uint16(n), nil
}
