package meter

import (
	"errors"

	"github.com/muurk/multical/internal/protocol"
)

var (
	// ErrUnavailable is returned when the serial device cannot be opened.
	// Nothing can be read over the link; there is no point retrying the
	// transaction without operator intervention.
	ErrUnavailable = errors.New("serial device unavailable")

	// ErrMalformed is returned when a frame passed the integrity check but
	// its contents do not form a valid response: too short, wrong response
	// type, a mismatched register echo, or an impossible mantissa length.
	// It is never retried automatically; an echo mismatch in particular
	// means request and response streams have drifted apart.
	ErrMalformed = errors.New("malformed meter response")
)

// Reason buckets an error from ReadVariable into a short stable label,
// suitable for metric dimensions and operator-facing summaries.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, protocol.ErrTimeout):
		return "timeout"
	case errors.Is(err, protocol.ErrChecksum):
		return "crc"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}
