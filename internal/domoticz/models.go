package domoticz

import (
	"fmt"
	"strconv"
	"strings"
)

// Device is one entry from the Domoticz device list. Domoticz serialises the
// index as a string and mixes key casing; the JSON tags follow its output
// verbatim.
type Device struct {
	Idx        string `json:"idx"`
	Name       string `json:"Name"`
	Type       string `json:"Type"`
	SubType    string `json:"SubType"`
	Data       string `json:"Data"`
	LastUpdate string `json:"LastUpdate"`
}

// NumericData extracts the numeric part of the Data field. Domoticz renders
// sensor data as "value" or "value unit", e.g. "1234.5 kWh".
func (d Device) NumericData() (float64, error) {
	fields := strings.Fields(d.Data)
	if len(fields) == 0 {
		return 0, fmt.Errorf("device %s has empty data", d.Idx)
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("device %s data %q is not numeric: %w", d.Idx, d.Data, err)
	}
	return value, nil
}

// devicesResponse is the envelope of a type=devices query.
type devicesResponse struct {
	Status string   `json:"status"`
	Title  string   `json:"title"`
	Result []Device `json:"result"`
}

// statusResponse is the envelope of command queries that return no result
// payload, and of the getversion health check.
type statusResponse struct {
	Status  string `json:"status"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

// statusOK is the only status value Domoticz uses for success.
const statusOK = "OK"
