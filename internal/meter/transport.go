package meter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"github.com/muurk/multical/internal/protocol"
)

// Link parameters of the Multical 402 optical interface. The meter talks
// 1200 baud, 8 data bits, no parity, two stop bits.
const (
	Baud               = 1200
	DefaultReadTimeout = 5 * time.Second
)

// Transport carries raw frame bytes between the reader and the meter.
// Implementations mirror traffic to the diagnostic trace when one is set.
type Transport interface {
	io.Writer
	io.ByteReader

	// Flush discards any bytes buffered on the link in either direction.
	Flush() error
	Close() error
}

// rawPort is the slice of *serial.Port the transport uses. Tests substitute
// an in-memory implementation.
type rawPort interface {
	io.ReadWriteCloser
	Flush() error
}

type serialTransport struct {
	port  rawPort
	trace *protocol.Trace
	buf   [1]byte
}

// openSerial opens the device with the meter's fixed link parameters.
func openSerial(device string, timeout time.Duration, trace *protocol.Trace) (Transport, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        Baud,
		ReadTimeout: timeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, device, err)
	}
	return &serialTransport{port: port, trace: trace}, nil
}

func (t *serialTransport) Write(p []byte) (int, error) {
	n, err := t.port.Write(p)
	if n > 0 {
		t.trace.Tx(p[:n])
	}
	if err != nil {
		return n, fmt.Errorf("writing to serial device: %w", err)
	}
	return n, nil
}

// ReadByte returns the next byte from the port. An expired read timeout
// surfaces from the port as a zero-length read or io.EOF; both map to
// protocol.ErrTimeout so callers can classify the failure.
func (t *serialTransport) ReadByte() (byte, error) {
	n, err := t.port.Read(t.buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, protocol.ErrTimeout
		}
		return 0, fmt.Errorf("reading from serial device: %w", err)
	}
	if n == 0 {
		return 0, protocol.ErrTimeout
	}
	t.trace.Rx(t.buf[:1])
	return t.buf[0], nil
}

func (t *serialTransport) Flush() error {
	if err := t.port.Flush(); err != nil {
		return fmt.Errorf("flushing serial device: %w", err)
	}
	return nil
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
