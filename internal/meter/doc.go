// Package meter reads measurement variables from Kamstrup Multical heat
// meters over a half-duplex optical serial link.
//
// The package owns the serial transport and the request/response exchange; the
// wire framing itself (byte stuffing, CRC) lives in the protocol package.
//
// # Reading a Variable
//
//	rd, err := meter.Open(meter.Config{Device: "/dev/ttyUSB0"})
//	if err != nil {
//	    return err // the link could not be acquired, nothing will work
//	}
//	defer rd.Close()
//
//	reading, err := rd.ReadVariable(meter.RegHeatEnergy)
//	if err != nil {
//	    // timeout, checksum failure or malformed response: no reading
//	    // this cycle, the caller decides whether to retry
//	    return err
//	}
//	fmt.Println(reading) // Heat Energy (E1): 1234.5 Gj
//
// # Link Parameters
//
// The optical interface speaks 1200 baud, 8 data bits, no parity, 2 stop
// bits. Every blocking read is bounded by a per-byte timeout (default 5
// seconds); an expired window surfaces as protocol.ErrTimeout.
//
// # Value Encoding
//
// The meter reports numbers as a variable-length big-endian mantissa plus a
// single exponent byte: the low 6 bits give the decimal exponent's magnitude,
// bit 0x40 makes the exponent negative, bit 0x80 negates the whole value.
// A mantissa of 1234 with exponent byte 0x42 therefore decodes to 12.34.
//
// # Failure Modes
//
//   - protocol.ErrTimeout: no byte within the read window; recoverable
//   - protocol.ErrChecksum: frame corrupted in transit; recoverable
//   - ErrMalformed: response structure invalid or echoed register mismatched;
//     not retried automatically, the link may be desynchronized
//   - ErrUnavailable: the serial device could not be opened; fatal at
//     construction
//
// Reason buckets any of these into a short label for metrics and operator
// messages.
//
// # Concurrency
//
// A Reader owns its transport exclusively and supports one request/response
// exchange at a time. It is not safe for concurrent use; the link is
// half-duplex and stateful mid-frame.
package meter
