// Package vlq implements the big-endian base-128 variable-length quantity
// used for frame payload lengths.
//
// Each byte carries seven value bits. Every byte except the last, least
// significant one has its high bit set.
package vlq

import "errors"

// MaxBytes bounds the length field. Five bytes hold values below 2^35.
const MaxBytes = 5

var (
	ErrUnterminated = errors.New("vlq: unterminated length field")
	ErrOverflow     = errors.New("vlq: length field too long")
)

// Append appends the minimal encoding of n to dst.
func Append(dst []byte, n uint64) []byte {
	var buf [10]byte
	i := len(buf) - 1
	buf[i] = byte(n & 0x7F)
	for n > 0x7F {
		n >>= 7
		i--
		buf[i] = byte(n&0x7F) | 0x80
	}
	return append(dst, buf[i:]...)
}

// Encode returns the minimal encoding of n. Zero encodes as a single 0x00.
func Encode(n uint64) []byte {
	return Append(nil, n)
}

// Decode folds b into an integer. b must hold exactly one encoded value,
// as sliced with FieldLen.
func Decode(b []byte) uint64 {
	var n uint64
	for _, c := range b {
		n = n<<7 | uint64(c&0x7F)
	}
	return n
}

// FieldLen returns the number of bytes of the value starting at b[0],
// through the first byte whose high bit is clear.
func FieldLen(b []byte) (int, error) {
	for i, c := range b {
		if i >= MaxBytes {
			return 0, ErrOverflow
		}
		if c&0x80 == 0 {
			return i + 1, nil
		}
	}
	return 0, ErrUnterminated
}
