// Package protocol implements the Kamstrup meter wire protocol.
//
// This package handles framing, byte stuffing, and CRC integrity checking for
// the vendor binary protocol spoken by Kamstrup Multical heat meters over a
// half-duplex optical serial link. It is transport-agnostic: encoding produces
// complete wire frames, decoding pulls single bytes from any io.ByteReader.
//
// # Frame Format
//
// Requests and responses share one frame layout:
//   - Leading address byte: 0x80 for meter-bound requests, 0x40 for meter
//     responses. Sent literally, never escaped.
//   - Stuffed body: the application payload plus a trailing 16-bit CRC,
//     byte-stuffed so that no reserved byte appears literally.
//   - End marker: 0x0D terminates every frame.
//
// # Byte Stuffing
//
// Five byte values are reserved on the wire: 0x06, 0x0D, 0x1B, 0x40 and 0x80.
// Inside a frame body each occurrence is replaced by the escape marker 0x1B
// followed by the original byte XOR 0xFF. Unescaping inverts the transform.
// An escape pair whose recovered byte is not reserved indicates protocol
// drift; it is tolerated (the byte is kept, the anomaly reported) because the
// CRC check is the final arbiter of frame integrity.
//
// # Integrity Check
//
// The CRC is the bit-serial CCITT CRC-16 with polynomial 0x1021 and a zero
// seed, computed over the payload augmented with two zero placeholder bytes.
// The placeholders are then overwritten with the CRC, high byte first. A
// receiver recomputes the checksum over body-plus-CRC; a zero result proves
// the frame intact.
//
// # Usage Example - Request/Response
//
//	codec := protocol.NewCodec(trace)
//
//	// Build and send a request
//	wire := codec.Encode(protocol.ReqStart, payload)
//	if _, err := port.Write(wire); err != nil {
//	    return err
//	}
//
//	// Read the response (port implements io.ByteReader)
//	resp, err := codec.ReadFrame(port)
//	switch {
//	case errors.Is(err, protocol.ErrTimeout):
//	    // no reading this cycle, retry later
//	case errors.Is(err, protocol.ErrChecksum):
//	    // frame corrupted in transit, retry later
//	}
//
// # Resynchronization
//
// The decoder accumulates bytes until the end marker and resets its buffer
// whenever the response start byte 0x40 appears, so line noise preceding a
// genuine frame is discarded and decoding proceeds as if the noise never
// arrived.
//
// # Diagnostic Trace
//
// A Trace mirrors all transmitted and received bytes as a direction-tagged
// hex dump, with synthetic event lines for timeouts, checksum failures and
// escape anomalies. The trace is owned by the codec/transport instance that
// writes to it; a nil *Trace disables tracing with no call-site guards.
//
// # Error Handling
//
// The package distinguishes between:
//   - ErrTimeout: no byte arrived within the transport's read window
//   - ErrChecksum: a complete frame arrived but failed the CRC check
//
// Both are recoverable sentinels matched with errors.Is; the caller treats
// them as "no valid reading this cycle". Escape anomalies are logged only and
// never fail a frame on their own.
//
// # Thread Safety
//
// Stuffing and checksum functions are pure and safe for concurrent use. A
// Codec decodes one frame at a time and must not be shared by concurrent
// readers; the underlying link is half-duplex and stateful mid-frame.
package protocol
