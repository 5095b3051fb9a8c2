package meter

// unitTable maps the unit code from a response to its display string, as
// printed on the meter itself. Codes 0 and 51 are genuinely dimensionless.
var unitTable = [...]string{
	0:  "",
	1:  "Wh",
	2:  "kWh",
	3:  "MWh",
	4:  "GWh",
	5:  "j",
	6:  "kj",
	7:  "Mj",
	8:  "Gj",
	9:  "Cal",
	10: "kCal",
	11: "Mcal",
	12: "Gcal",
	13: "varh",
	14: "kvarh",
	15: "Mvarh",
	16: "Gvarh",
	17: "VAh",
	18: "kVAh",
	19: "MVAh",
	20: "GVAh",
	21: "kW",
	22: "kW",
	23: "MW",
	24: "GW",
	25: "kvar",
	26: "kvar",
	27: "Mvar",
	28: "Gvar",
	29: "VA",
	30: "kVA",
	31: "MVA",
	32: "GVA",
	33: "V",
	34: "A",
	35: "kV",
	36: "kA",
	37: "C",
	38: "K",
	39: "l",
	40: "m3",
	41: "l/h",
	42: "m3/h",
	43: "m3xC",
	44: "ton",
	45: "ton/h",
	46: "h",
	47: "hh:mm:ss",
	48: "yy:mm:dd",
	49: "yyyy:mm:dd",
	50: "mm:dd",
	51: "",
	52: "bar",
	53: "RTC",
	54: "ASCII",
	55: "m3 x 10",
	56: "ton x 10",
	57: "GJ x 10",
	58: "minutes",
	59: "Bitfield",
	60: "s",
	61: "ms",
	62: "days",
	63: "RTC-Q",
	64: "Datetime",
}

// UnitString returns the display string for a unit code. The second return
// value is false for codes outside the table; readings with unknown units
// are still valid, they just carry an empty unit.
func UnitString(code byte) (string, bool) {
	if int(code) >= len(unitTable) {
		return "", false
	}
	return unitTable[code], true
}
