package meter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/muurk/multical/internal/protocol"
)

// fakeTransport serves scripted wire bytes and records everything written.
type fakeTransport struct {
	wire    []byte
	pos     int
	writes  [][]byte
	flushes int
	closed  bool

	readErr  error // returned once wire is exhausted, defaults to timeout
	writeErr error
	flushErr error
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeTransport) ReadByte() (byte, error) {
	if f.pos >= len(f.wire) {
		if f.readErr != nil {
			return 0, f.readErr
		}
		return 0, protocol.ErrTimeout
	}
	b := f.wire[f.pos]
	f.pos++
	return b, nil
}

func (f *fakeTransport) Flush() error {
	f.flushes++
	return f.flushErr
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// responseFrame builds the wire bytes of a well-formed GetRegister response.
func responseFrame(register uint16, unitCode, exponent byte, mantissa []byte) []byte {
	payload := []byte{appID, cmdGetReg, byte(register >> 8), byte(register), unitCode, byte(len(mantissa)), exponent}
	payload = append(payload, mantissa...)
	return protocol.NewCodec(nil).Encode(protocol.RespStart, payload)
}

func rawResponseFrame(payload []byte) []byte {
	return protocol.NewCodec(nil).Encode(protocol.RespStart, payload)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReadVariable(t *testing.T) {
	tests := []struct {
		name      string
		register  uint16
		unitCode  byte
		exponent  byte
		mantissa  []byte
		wantValue float64
		wantUnit  string
		wantName  string
	}{
		{
			name:      "heat energy in gigajoules",
			register:  RegHeatEnergy,
			unitCode:  8,
			exponent:  0x00,
			mantissa:  []byte{0x00, 0x00, 0x01},
			wantValue: 1,
			wantUnit:  "Gj",
			wantName:  "Heat Energy (E1)",
		},
		{
			name:      "positive exponent scales up",
			register:  RegPower,
			unitCode:  21,
			exponent:  0x02,
			mantissa:  []byte{0x04, 0xD2},
			wantValue: 123400,
			wantUnit:  "kW",
			wantName:  "Power",
		},
		{
			name:      "exponent sign bit scales down",
			register:  RegTemp1,
			unitCode:  37,
			exponent:  0x42,
			mantissa:  []byte{0x04, 0xD2},
			wantValue: 12.34,
			wantUnit:  "C",
			wantName:  "Temp1",
		},
		{
			name:      "value sign bit negates",
			register:  RegTempDiff,
			unitCode:  38,
			exponent:  0x82,
			mantissa:  []byte{0x04, 0xD2},
			wantValue: -123400,
			wantUnit:  "K",
			wantName:  "Tempdiff",
		},
		{
			name:      "both sign bits",
			register:  RegTempDiff,
			unitCode:  38,
			exponent:  0xC2,
			mantissa:  []byte{0x04, 0xD2},
			wantValue: -12.34,
			wantUnit:  "K",
			wantName:  "Tempdiff",
		},
		{
			name:      "flow in litres per hour",
			register:  RegFlow,
			unitCode:  41,
			exponent:  0x00,
			mantissa:  []byte{0x01, 0x00},
			wantValue: 256,
			wantUnit:  "l/h",
			wantName:  "Flow",
		},
		{
			name:      "empty mantissa decodes to zero",
			register:  RegVolume,
			unitCode:  40,
			exponent:  0x00,
			mantissa:  nil,
			wantValue: 0,
			wantUnit:  "m3",
			wantName:  "Volume",
		},
		{
			name:      "unknown unit code kept raw",
			register:  RegPower,
			unitCode:  200,
			exponent:  0x00,
			mantissa:  []byte{0x05},
			wantValue: 5,
			wantUnit:  "",
			wantName:  "Power",
		},
		{
			name:      "unnamed register still reads",
			register:  0x0042,
			unitCode:  2,
			exponent:  0x00,
			mantissa:  []byte{0x07},
			wantValue: 7,
			wantUnit:  "kWh",
			wantName:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{wire: responseFrame(tt.register, tt.unitCode, tt.exponent, tt.mantissa)}
			rd := NewReader(ft, nil)

			reading, err := rd.ReadVariable(tt.register)
			if err != nil {
				t.Fatalf("ReadVariable(0x%04X) error: %v", tt.register, err)
			}
			if !almostEqual(reading.Value, tt.wantValue) {
				t.Errorf("Value = %v, want %v", reading.Value, tt.wantValue)
			}
			if reading.Unit != tt.wantUnit {
				t.Errorf("Unit = %q, want %q", reading.Unit, tt.wantUnit)
			}
			if reading.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", reading.Name, tt.wantName)
			}
			if reading.Register != tt.register {
				t.Errorf("Register = 0x%04X, want 0x%04X", reading.Register, tt.register)
			}
			if reading.UnitCode != tt.unitCode {
				t.Errorf("UnitCode = %d, want %d", reading.UnitCode, tt.unitCode)
			}
			if reading.At.IsZero() {
				t.Error("At is zero, want decode timestamp")
			}
		})
	}
}

func TestReadVariableErrors(t *testing.T) {
	corrupted := responseFrame(RegHeatEnergy, 8, 0x00, []byte{0x00, 0x00, 0x01})
	corrupted[1] ^= 0x01

	tests := []struct {
		name      string
		transport *fakeTransport
		wantErr   error
	}{
		{
			name:      "no response times out",
			transport: &fakeTransport{},
			wantErr:   protocol.ErrTimeout,
		},
		{
			name:      "corrupted frame fails the checksum",
			transport: &fakeTransport{wire: corrupted},
			wantErr:   protocol.ErrChecksum,
		},
		{
			name:      "response for a different register",
			transport: &fakeTransport{wire: responseFrame(RegPower, 8, 0x00, []byte{0x01})},
			wantErr:   ErrMalformed,
		},
		{
			name:      "response shorter than the fixed header",
			transport: &fakeTransport{wire: rawResponseFrame([]byte{appID, cmdGetReg, 0x00})},
			wantErr:   ErrMalformed,
		},
		{
			name: "wrong command byte",
			transport: &fakeTransport{
				wire: rawResponseFrame([]byte{appID, 0x11, 0x00, 0x3C, 0x08, 0x01, 0x00, 0x01}),
			},
			wantErr: ErrMalformed,
		},
		{
			name: "mantissa length exceeds response",
			transport: &fakeTransport{
				wire: rawResponseFrame([]byte{appID, cmdGetReg, 0x00, 0x3C, 0x08, 0x05, 0x00, 0x01, 0x02}),
			},
			wantErr: ErrMalformed,
		},
		{
			name:      "flush failure surfaces",
			transport: &fakeTransport{flushErr: errors.New("device gone")},
			wantErr:   nil,
		},
		{
			name:      "write failure surfaces",
			transport: &fakeTransport{writeErr: errors.New("device gone")},
			wantErr:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := NewReader(tt.transport, nil)
			_, err := rd.ReadVariable(RegHeatEnergy)
			if err == nil {
				t.Fatal("ReadVariable succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v in chain", err, tt.wantErr)
			}
		})
	}
}

func TestReadVariableRequestShape(t *testing.T) {
	ft := &fakeTransport{wire: responseFrame(RegHeatEnergy, 8, 0x00, []byte{0x01})}
	rd := NewReader(ft, nil)

	if _, err := rd.ReadVariable(RegHeatEnergy); err != nil {
		t.Fatalf("ReadVariable error: %v", err)
	}
	if ft.flushes != 1 {
		t.Errorf("flushes = %d, want 1 before the request", ft.flushes)
	}
	if len(ft.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(ft.writes))
	}

	want := protocol.NewCodec(nil).Encode(protocol.ReqStart,
		[]byte{appID, cmdGetReg, reqRegCount, 0x00, 0x3C})
	if !bytes.Equal(ft.writes[0], want) {
		t.Errorf("request = % X, want % X", ft.writes[0], want)
	}
}

func TestReaderClose(t *testing.T) {
	ft := &fakeTransport{}
	rd := NewReader(ft, nil)
	if err := rd.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !ft.closed {
		t.Error("transport not closed")
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no error", nil, "ok"},
		{"wrapped timeout", fmt.Errorf("reading frame: %w", protocol.ErrTimeout), "timeout"},
		{"wrapped checksum", fmt.Errorf("frame checksum: %w", protocol.ErrChecksum), "crc"},
		{"wrapped malformed", fmt.Errorf("response too short: %w", ErrMalformed), "malformed"},
		{"wrapped unavailable", fmt.Errorf("%w: /dev/ttyUSB0", ErrUnavailable), "unavailable"},
		{"unclassified", errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestReadingString(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		want    string
	}{
		{
			name:    "named with unit",
			reading: Reading{Register: RegTemp1, Name: "Temp1", Value: 58.61, Unit: "C"},
			want:    "Temp1: 58.61 C",
		},
		{
			name:    "unknown unit omitted",
			reading: Reading{Register: RegPower, Name: "Power", Value: 5},
			want:    "Power: 5",
		},
		{
			name:    "unnamed register",
			reading: Reading{Register: 0x0042, Value: 7, Unit: "kWh"},
			want:    "register 0x0042: 7 kWh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reading.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
