package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/muurk/multical/internal/logging"
	"go.uber.org/zap"
)

// Sentinel errors for the two recoverable wire-level failures. Both mean
// "no valid reading this cycle"; callers match them with errors.Is and decide
// whether to retry the whole transaction.
var (
	// ErrTimeout is returned when no byte arrives within the transport's
	// read window.
	ErrTimeout = errors.New("timeout waiting for meter")

	// ErrChecksum is returned when a complete frame arrives but fails the
	// CRC check.
	ErrChecksum = errors.New("frame checksum mismatch")
)

// Codec encodes and decodes complete wire frames. The diagnostic trace is an
// instance field so that two codecs never interleave output in one sink; a
// nil trace disables tracing.
type Codec struct {
	trace *Trace
}

// NewCodec creates a codec mirroring decode events to trace (may be nil).
func NewCodec(trace *Trace) *Codec {
	return &Codec{trace: trace}
}

// Trace returns the diagnostic trace this codec writes to, or nil.
func (c *Codec) Trace() *Trace {
	return c.trace
}

// Encode builds a complete wire frame: the destination address byte (sent
// literally), the byte-stuffed payload with its 2-byte CRC appended, and the
// end marker. Meter-bound requests use ReqStart as the destination.
func (c *Codec) Encode(dest byte, payload []byte) []byte {
	body := AppendChecksum(payload)
	out := make([]byte, 0, len(body)*2+2)
	out = append(out, dest)
	out = append(out, EscapeBytes(body)...)
	out = append(out, FrameEnd)
	return out
}

// ReadFrame reads one frame from r, a byte at a time, and returns the
// verified payload with start/end markers, stuffing and CRC stripped.
//
// Bytes accumulate until the end marker. Whenever the response start byte
// appears the buffer is reset, so garbage preceding a genuine frame decodes
// identically to the frame alone. A timeout from r aborts with ErrTimeout; a
// failed CRC check yields ErrChecksum. Both also leave a synthetic event line
// in the trace.
func (c *Codec) ReadFrame(r io.ByteReader) ([]byte, error) {
	var raw []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				c.trace.Event("Rx Timeout")
			}
			return nil, fmt.Errorf("reading frame: %w", err)
		}
		if b == RespStart {
			// Line noise before a genuine start is discarded
			raw = raw[:0]
		}
		raw = append(raw, b)
		if b == FrameEnd {
			break
		}
	}

	body, anomalies := UnescapeBytes(raw[1 : len(raw)-1])
	for _, b := range anomalies {
		c.trace.Eventf("Invalid escape sequence %02x", b)
		logging.Warn("Invalid escape sequence in frame",
			zap.String("recovered", fmt.Sprintf("0x%02x", b)),
		)
	}

	if !VerifyChecksum(body) {
		c.trace.Event("CRC error")
		if len(body) < 2 {
			return nil, fmt.Errorf("frame too short to carry checksum: %d bytes: %w", len(body), ErrChecksum)
		}
		received := binary.BigEndian.Uint16(body[len(body)-2:])
		calculated := PayloadChecksum(body[:len(body)-2])
		return nil, fmt.Errorf("frame checksum: received 0x%04X, calculated 0x%04X: %w", received, calculated, ErrChecksum)
	}

	return body[:len(body)-2], nil
}
