package protocol

import "encoding/binary"

// Poly is the CCITT CRC-16 polynomial used by Kamstrup meters.
const Poly = 0x1021

// Checksum computes the bit-serial CCITT CRC-16 over data with a zero seed.
// Bits are fed most-significant first; whenever the 17th register bit is set
// after a shift the register is masked back to 16 bits and XORed with the
// polynomial.
func Checksum(data []byte) uint16 {
	var register uint32
	for _, b := range data {
		for mask := byte(0x80); mask > 0; mask >>= 1 {
			register <<= 1
			if b&mask != 0 {
				register |= 1
			}
			if register&0x10000 != 0 {
				register &= 0xFFFF
				register ^= Poly
			}
		}
	}
	return uint16(register)
}

// PayloadChecksum computes the checksum that travels on the wire for body:
// the CRC over body augmented with two zero placeholder bytes. The
// augmentation makes the receiver-side check come out zero when the CRC
// itself is appended.
func PayloadChecksum(body []byte) uint16 {
	augmented := make([]byte, len(body)+2)
	copy(augmented, body)
	return Checksum(augmented)
}

// AppendChecksum returns body with its wire checksum appended, high byte
// first. The result verifies to zero under Checksum.
func AppendChecksum(body []byte) []byte {
	out := make([]byte, len(body)+2)
	copy(out, body)
	binary.BigEndian.PutUint16(out[len(body):], PayloadChecksum(body))
	return out
}

// VerifyChecksum reports whether body (payload plus trailing 2-byte CRC)
// passes the integrity check: the checksum over the whole must be zero.
func VerifyChecksum(body []byte) bool {
	return len(body) >= 2 && Checksum(body) == 0
}
