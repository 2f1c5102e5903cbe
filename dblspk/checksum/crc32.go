// Package checksum computes the CRC-32 carried in every frame header.
package checksum

import (
	"encoding/binary"
	"hash/crc32"
)

// Size is the length of the checksum field.
const Size = 4

// table is the reflected 0xEDB88320 table, built once and never written.
var table = crc32.MakeTable(crc32.IEEE)

// Checksum is a CRC-32 value together with its big-endian wire form.
type Checksum struct {
	CRC   uint32
	Bytes [Size]byte
}

// Sum computes the CRC-32 of b.
func Sum(b []byte) Checksum {
	c := Checksum{CRC: crc32.Checksum(b, table)}
	binary.BigEndian.PutUint32(c.Bytes[:], c.CRC)
	return c
}

// Matches reports whether wire equals the big-endian form of c.
func (c Checksum) Matches(wire []byte) bool {
	if len(wire) != Size {
		return false
	}
	for i := range c.Bytes {
		if c.Bytes[i] != wire[i] {
			return false
		}
	}
	return true
}
