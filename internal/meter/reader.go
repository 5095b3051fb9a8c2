package meter

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/multical/internal/logging"
	"github.com/muurk/multical/internal/protocol"
)

// Application-level bytes of the register read exchange.
const (
	appID       = 0x3F // destination address, fixed for the Multical 402
	cmdGetReg   = 0x10 // GetRegister command
	reqRegCount = 0x01 // registers requested per exchange
)

const respHeaderLen = 7 // appID, command, register, unit, length, exponent

// Config carries the link settings for Open.
type Config struct {
	// Device is the serial device path, e.g. /dev/ttyUSB0.
	Device string

	// ReadTimeout bounds each byte read from the meter. Zero selects
	// DefaultReadTimeout.
	ReadTimeout time.Duration

	// Trace receives a byte-level dump of every exchange. Nil disables
	// tracing.
	Trace *protocol.Trace
}

// Reader reads registers from a Multical 402. It is not safe for concurrent
// use; the meter answers one request at a time.
type Reader struct {
	transport Transport
	codec     *protocol.Codec
	device    string
	logger    *zap.Logger
}

// Open opens the serial device and returns a Reader for it. Failures to open
// the device wrap ErrUnavailable.
func Open(cfg Config) (*Reader, error) {
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	transport, err := openSerial(cfg.Device, timeout, cfg.Trace)
	if err != nil {
		return nil, err
	}
	logging.LogLinkEvent(cfg.Device, "opened")
	reader := NewReader(transport, cfg.Trace)
	reader.device = cfg.Device
	return reader, nil
}

// NewReader wraps an already open transport. Tests use this to drive the
// reader without serial hardware.
func NewReader(transport Transport, trace *protocol.Trace) *Reader {
	return &Reader{
		transport: transport,
		codec:     protocol.NewCodec(trace),
		logger:    logging.GetLogger(),
	}
}

// Close closes the underlying transport.
func (r *Reader) Close() error {
	if r.device != "" {
		logging.LogLinkEvent(r.device, "closed")
	}
	return r.transport.Close()
}

// ReadVariable requests one register and decodes the meter's answer.
//
// Timeouts wrap protocol.ErrTimeout, corrupted frames protocol.ErrChecksum
// and structurally invalid responses ErrMalformed. Reason classifies them.
func (r *Reader) ReadVariable(register uint16) (Reading, error) {
	// Drop stale bytes a previous aborted exchange may have left buffered.
	if err := r.transport.Flush(); err != nil {
		return Reading{}, err
	}

	payload := []byte{appID, cmdGetReg, reqRegCount, byte(register >> 8), byte(register)}
	frame := r.codec.Encode(protocol.ReqStart, payload)

	r.logger.Debug("Requesting register",
		zap.String("register", fmt.Sprintf("0x%04X", register)))
	logging.LogFrame("tx", frame)
	if _, err := r.transport.Write(frame); err != nil {
		return Reading{}, err
	}

	resp, err := r.codec.ReadFrame(r.transport)
	if err != nil {
		return Reading{}, err
	}
	logging.LogFrame("rx", resp)

	reading, err := DecodeResponse(register, resp)
	if err != nil {
		return Reading{}, err
	}
	logging.LogReading(reading.Register, reading.Name, reading.Value, reading.Unit)
	return reading, nil
}

// DecodeResponse decodes the application bytes of a GetRegister response.
// The layout is appID, command, register (big endian), unit code, mantissa
// length, exponent byte, mantissa bytes.
func DecodeResponse(register uint16, resp []byte) (Reading, error) {
	if len(resp) < respHeaderLen {
		return Reading{}, fmt.Errorf("response too short: %d bytes: %w", len(resp), ErrMalformed)
	}
	if resp[0] != appID || resp[1] != cmdGetReg {
		return Reading{}, fmt.Errorf("unexpected response header 0x%02X 0x%02X: %w", resp[0], resp[1], ErrMalformed)
	}
	if echoed := binary.BigEndian.Uint16(resp[2:4]); echoed != register {
		return Reading{}, fmt.Errorf("response names register 0x%04X, requested 0x%04X: %w", echoed, register, ErrMalformed)
	}

	unitCode := resp[4]
	mantissaLen := int(resp[5])
	exponent := resp[6]
	if respHeaderLen+mantissaLen > len(resp) {
		return Reading{}, fmt.Errorf("mantissa length %d exceeds %d response bytes: %w",
			mantissaLen, len(resp), ErrMalformed)
	}

	// The mantissa accumulates in a float64 so oversized registers lose
	// precision instead of wrapping.
	value := 0.0
	for _, b := range resp[respHeaderLen : respHeaderLen+mantissaLen] {
		value = value*256 + float64(b)
	}
	value *= decodeExponent(exponent)

	unit, known := UnitString(unitCode)
	if !known {
		logging.Warn("Unknown unit code in meter response",
			zap.Uint8("unit_code", unitCode),
			zap.String("register", fmt.Sprintf("0x%04X", register)))
	}
	name, _ := RegisterName(register)

	return Reading{
		Register: register,
		Name:     name,
		Value:    value,
		Unit:     unit,
		UnitCode: unitCode,
		At:       time.Now(),
	}, nil
}

// decodeExponent turns the exponent byte into a multiplier. The low six bits
// hold the magnitude, bit 6 makes the exponent negative and bit 7 negates
// the whole value.
func decodeExponent(b byte) float64 {
	exp := int(b & 0x3F)
	if b&0x40 != 0 {
		exp = -exp
	}
	factor := math.Pow10(exp)
	if b&0x80 != 0 {
		factor = -factor
	}
	return factor
}
