package protocol

// Reserved byte values that must never appear literally inside a frame body.
// Escaped occurrences are the marker followed by the byte XOR 0xFF.
const (
	ReqStart   = 0x80 // first byte of a meter-bound request
	RespStart  = 0x40 // first byte of a meter response
	FrameEnd   = 0x0D // terminates frames in both directions
	EscapeMark = 0x1B // introduces an escaped byte
	ackByte    = 0x06 // reserved by the meter, never seen in payloads
)

// reserved reports whether b belongs to the escape byte-set.
func reserved(b byte) bool {
	switch b {
	case ackByte, FrameEnd, EscapeMark, RespStart, ReqStart:
		return true
	}
	return false
}

// EscapeBytes byte-stuffs a frame body: every reserved byte is replaced with
// the two-byte sequence (EscapeMark, byte XOR 0xFF), all others pass through
// unchanged.
func EscapeBytes(body []byte) []byte {
	out := make([]byte, 0, len(body)+4)
	for _, b := range body {
		if reserved(b) {
			out = append(out, EscapeMark, b^0xFF)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// UnescapeBytes inverts EscapeBytes. The second return value lists recovered
// bytes that are not members of the escape set: these indicate protocol drift
// but are kept in the output, leaving the CRC check to decide whether the
// frame survives. A trailing escape marker with no follower is kept literally
// for the same reason.
func UnescapeBytes(body []byte) ([]byte, []byte) {
	out := make([]byte, 0, len(body))
	var anomalies []byte
	for i := 0; i < len(body); i++ {
		b := body[i]
		if b != EscapeMark {
			out = append(out, b)
			continue
		}
		if i+1 >= len(body) {
			out = append(out, b)
			anomalies = append(anomalies, b)
			break
		}
		i++
		recovered := body[i] ^ 0xFF
		if !reserved(recovered) {
			anomalies = append(anomalies, recovered)
		}
		out = append(out, recovered)
	}
	return out, anomalies
}
